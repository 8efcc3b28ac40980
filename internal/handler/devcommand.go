package handler

import (
	"strconv"
	"strings"

	"github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
)

// HandleDevCommand implements the privileged testing commands of §4.11.
// Payload: characterId|command|param1|param2.
func HandleDevCommand(deps *Deps, sess *net.Session, payload []byte) {
	fr := packet.NewFieldReader(payload)
	characterID := fr.Uint64()
	command := fr.String()
	param1 := fr.String()
	_ = fr.String() // param2, reserved for future commands
	if err := fr.Err(); err != nil {
		sess.Send(packet.TypeDevCommandResponse, devCommandReply(false, "malformed dev command"))
		return
	}

	if !deps.Conns.Owns(sess.ID, characterID) {
		sess.Send(packet.TypeDevCommandResponse, devCommandReply(false, "not your character"))
		return
	}
	player := deps.World.GetPlayer(characterID)
	if player == nil || !player.Initialized {
		sess.Send(packet.TypeDevCommandResponse, devCommandReply(false, "character not in zone"))
		return
	}

	switch strings.ToLower(command) {
	case "suicide":
		player.HP = 0
		KillPlayer(deps, player)
		sess.Send(packet.TypeDevCommandResponse, devCommandReply(true, "you have died"))

	case "givexp":
		amount, err := strconv.ParseInt(param1, 10, 64)
		if err != nil {
			sess.Send(packet.TypeDevCommandResponse, devCommandReply(false, "givexp requires an integer amount"))
			return
		}
		AddXP(player, amount, deps.XPTable, deps.Rules)
		saveCombatStats(deps, player)
		sess.Send(packet.TypeDevCommandResponse, devCommandReply(true, "xp granted"))

	case "setlevel":
		n, err := strconv.ParseInt(param1, 10, 32)
		if err != nil {
			sess.Send(packet.TypeDevCommandResponse, devCommandReply(false, "setlevel requires an integer level"))
			return
		}
		if n < 1 {
			n = 1
		}
		if max := int64(deps.XPTable.MaxLevel()); n > max {
			n = max
		}
		player.Level = int32(n)
		player.XP = deps.XPTable.TotalXP(player.Level)
		player.CombatStatsDirty = true
		saveCombatStats(deps, player)
		sess.Send(packet.TypeDevCommandResponse, devCommandReply(true, "level set"))

	case "respawn":
		if !player.Dead {
			sess.Send(packet.TypeDevCommandResponse, devCommandReply(false, "player is not dead"))
			return
		}
		character := deps.CharRepo.LoadByID(characterID)
		if character == nil {
			sess.Send(packet.TypeDevCommandResponse, devCommandReply(false, "character record missing"))
			return
		}
		RespawnPlayer(deps, player, character)
		sess.Send(packet.TypeDevCommandResponse, devCommandReply(true, "respawned"))

	case "damage_self":
		n, err := strconv.ParseInt(param1, 10, 32)
		if err != nil {
			sess.Send(packet.TypeDevCommandResponse, devCommandReply(false, "damage_self requires an integer amount"))
			return
		}
		player.HP -= int32(n)
		if player.HP < 0 {
			player.HP = 0
		}
		player.CombatStatsDirty = true
		if player.HP == 0 {
			KillPlayer(deps, player)
		} else {
			saveCombatStats(deps, player)
		}
		sess.Send(packet.TypeDevCommandResponse, devCommandReply(true, "damage applied"))

	default:
		sess.Send(packet.TypeDevCommandResponse, devCommandReply(false, "unknown command"))
	}
}

func devCommandReply(success bool, message string) []byte {
	return packet.NewFieldWriter().Bool(success).String(message).Bytes()
}
