package handler

import (
	"github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
)

// HandleAttackRequest validates ownership and target existence, then queues
// the request for the Combat Resolver to settle during this tick's
// PhasePostUpdate (§4.3, §4.6). Range, hit, and damage are resolved later —
// this handler only rejects requests that can never become a valid attack.
func HandleAttackRequest(deps *Deps, sess *net.Session, payload []byte) {
	fr := packet.NewFieldReader(payload)
	attackerCharacterID := fr.Uint64()
	targetNPCID := fr.Uint64()
	abilityID := fr.Uint64()
	isBasicAttack := fr.Bool()
	if err := fr.Err(); err != nil {
		sess.Send(packet.TypeAttackResult, buildAttackResult(attackerCharacterID, targetNPCID, 0, false, 0, 2, "malformed attack request"))
		return
	}

	if !deps.Conns.Owns(sess.ID, attackerCharacterID) {
		sess.Send(packet.TypeAttackResult, buildAttackResult(attackerCharacterID, targetNPCID, 0, false, 0, 2, "not your character"))
		return
	}

	target := deps.World.GetNPC(targetNPCID)
	if target == nil {
		sess.Send(packet.TypeAttackResult, buildAttackResult(attackerCharacterID, targetNPCID, 0, false, 0, 1, "invalid target"))
		return
	}
	if target.Dead {
		sess.Send(packet.TypeAttackResult, buildAttackResult(attackerCharacterID, targetNPCID, 0, false, int64(target.HP), 5, "target is already dead"))
		return
	}

	deps.Combat.QueueAttack(AttackRequest{
		SessionID:           sess.ID,
		AttackerCharacterID: attackerCharacterID,
		TargetNPCID:         targetNPCID,
		AbilityID:           abilityID,
		IsBasicAttack:       isBasicAttack,
	})
}

// buildAttackResult encodes the AttackResult payload (§6.2):
// attackerId|targetId|damage|wasHit|remainingHp|resultCode|message.
func buildAttackResult(attackerID, targetID uint64, damage int64, wasHit bool, remainingHP int64, resultCode int, message string) []byte {
	return packet.NewFieldWriter().
		Uint64(attackerID).
		Uint64(targetID).
		Int64(damage).
		Bool(wasHit).
		Int64(remainingHP).
		Int(resultCode).
		String(message).
		Bytes()
}
