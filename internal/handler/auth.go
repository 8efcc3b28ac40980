package handler

import (
	"fmt"

	"github.com/reqserver/zoneserver/internal/component"
	"github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
	"github.com/reqserver/zoneserver/internal/world"
	"go.uber.org/zap"
)

// HandleZoneAuthRequest implements the session handshake (§4.1): validates
// a handoff token, binds the connection to a character, and performs
// first-entry spawn placement. Payload: handoffToken|characterId.
func HandleZoneAuthRequest(deps *Deps, sess *net.Session, payload []byte) {
	fr := packet.NewFieldReader(payload)
	handoffToken := fr.Uint64()
	characterID := fr.Uint64()
	if err := fr.Err(); err != nil || len(fr.Remaining()) != 0 {
		sess.Send(packet.TypeZoneAuthResponse, errReply(ErrParseError, "expected handoffToken|characterId"))
		return
	}

	if handoffToken == 0 {
		sess.Send(packet.TypeZoneAuthResponse, errReply(ErrInvalidHandoff, "handoff token is zero"))
		return
	}

	// Deferred cross-check (§4.1 step 3, §9 open question): the Session
	// Service is consulted for its side effects only — a miss here does not
	// fail the handshake, since cross-zone expiry/single-use semantics are
	// explicitly out of scope.
	if rec, ok := deps.Sessions.Validate(handoffToken); ok {
		deps.Sessions.BindToWorld(handoffToken, deps.Config.Server.WorldID)
		if rec.CharacterID != 0 && rec.CharacterID != characterID {
			deps.Log.Warn("handoff token character mismatch, proceeding with requested id",
				zap.Uint64("token_character", rec.CharacterID),
				zap.Uint64("requested_character", characterID),
			)
		}
	}

	character := deps.CharRepo.LoadByID(characterID)
	if character == nil {
		sess.Send(packet.TypeZoneAuthResponse, errReply(ErrCharacterNotFound, "no such character"))
		return
	}

	// Reconnect: an existing entry for this character is removed first so
	// the new handshake replaces it atomically (§4.1 step 5, §8 idempotence
	// property).
	if deps.World.GetPlayer(characterID) != nil {
		RemovePlayer(deps, characterID)
	}

	player := world.NewPlayer(characterID, character.AccountID, character.Name)
	player.SessionID = sess.ID
	placeSpawn(deps, character, player)

	player.Level = character.Level
	player.XP = character.XP
	player.MaxHP = character.MaxHP
	player.HP = character.HP
	if player.MaxHP <= 0 {
		player.MaxHP = 1
	}
	if player.HP <= 0 {
		player.HP = player.MaxHP
	}
	player.Str = character.Str
	player.Initialized = true

	deps.World.AddPlayer(player)
	deps.Conns.Bind(sess.ID, characterID)
	sess.CharacterID.Store(characterID)

	welcome := fmt.Sprintf("Welcome to %s (zone %d on world %d)",
		deps.Config.Server.ZoneName, deps.Config.Server.ZoneID, deps.Config.Server.WorldID)
	sess.Send(packet.TypeZoneAuthResponse, []byte("OK|"+welcome))
}

// placeSpawn implements Spawn Placement (§4.2): restore the character's
// last position in this zone, or fall back to the zone's safe spawn.
func placeSpawn(deps *Deps, character *component.Character, player *world.Player) {
	w := deps.Config.World

	if character.LastZoneID == deps.Config.Server.ZoneID && (character.X != 0 || character.Y != 0 || character.Z != 0) {
		player.X, player.Y, player.Z = character.X, character.Y, character.Z
		player.Yaw = character.Yaw
	} else {
		player.X, player.Y, player.Z = w.SafeX, w.SafeY, w.SafeZ
		player.Yaw = w.SafeYaw

		character.LastWorldID = deps.Config.Server.WorldID
		character.LastZoneID = deps.Config.Server.ZoneID
		character.X, character.Y, character.Z = w.SafeX, w.SafeY, w.SafeZ
		character.Yaw = w.SafeYaw
		if !deps.CharRepo.Save(character) {
			deps.Log.Warn("spawn-placement save failed", zap.Uint64("character_id", character.CharacterID))
		}
	}

	player.VelX, player.VelY, player.VelZ = 0, 0, 0
	player.LastValidX, player.LastValidY, player.LastValidZ = player.X, player.Y, player.Z
}
