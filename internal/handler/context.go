// Package handler holds the thin message handlers bound into the packet
// registry at boot. Each handler validates its payload, checks ownership
// (invariant I3), and either mutates Zone State directly (movement) or
// queues work for a later tick phase (attack).
package handler

import (
	"github.com/reqserver/zoneserver/internal/config"
	"github.com/reqserver/zoneserver/internal/core/ecs"
	"github.com/reqserver/zoneserver/internal/core/event"
	"github.com/reqserver/zoneserver/internal/data"
	"github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
	"github.com/reqserver/zoneserver/internal/persist"
	"github.com/reqserver/zoneserver/internal/session"
	"github.com/reqserver/zoneserver/internal/world"
	"go.uber.org/zap"
)

// AttackRequest is queued by HandleAttackRequest and drained by the Combat
// Resolver during PhasePostUpdate (§4.6).
type AttackRequest struct {
	SessionID           ecs.EntityID
	AttackerCharacterID uint64
	TargetNPCID         uint64
	AbilityID           uint64
	IsBasicAttack       bool
}

// CombatQueue accepts attack requests from handlers for deferred
// resolution by the Combat Resolver system.
type CombatQueue interface {
	QueueAttack(req AttackRequest)
}

// Deps bundles everything a handler needs to touch. One instance is built
// at boot and closed over by every registered HandlerFunc.
type Deps struct {
	Config   *config.Config
	World    *world.State
	Conns    *net.ConnectionRegistry
	CharRepo *persist.CharacterRepo
	NPCRepo  *data.NPCRepo
	XPTable  *data.XPTable
	Rules    *data.WorldRules
	Sessions *session.Service
	Bus      *event.Bus
	Combat   CombatQueue
	Log      *zap.Logger
}

// RegisterAll wires every zone-relevant message kind into the registry
// (§4.3). Handlers close over deps rather than taking it as a parameter so
// the HandlerFunc signature stays uniform.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	reg.Register(packet.TypeZoneAuthRequest, func(sess any, payload []byte) {
		HandleZoneAuthRequest(deps, sess.(*net.Session), payload)
	})
	reg.Register(packet.TypeMovementIntent, func(sess any, payload []byte) {
		HandleMovementIntent(deps, sess.(*net.Session), payload)
	})
	reg.Register(packet.TypeAttackRequest, func(sess any, payload []byte) {
		HandleAttackRequest(deps, sess.(*net.Session), payload)
	})
	reg.Register(packet.TypeDevCommand, func(sess any, payload []byte) {
		HandleDevCommand(deps, sess.(*net.Session), payload)
	})
	reg.Register(packet.TypePlayerStateSnapshot, func(sess any, payload []byte) {
		deps.Log.Warn("rejected inbound PlayerStateSnapshot: server-outbound only")
	})
}
