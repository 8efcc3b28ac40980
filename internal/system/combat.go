package system

import (
	"math/rand"
	"time"

	"github.com/reqserver/zoneserver/internal/core/event"
	coresys "github.com/reqserver/zoneserver/internal/core/system"
	"github.com/reqserver/zoneserver/internal/handler"
	"github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
	"github.com/reqserver/zoneserver/internal/world"
)

// maxAttackRange is the server-authoritative reach for any attack request,
// melee or ranged alike (§4.6) — the client's ability data is not trusted.
const maxAttackRange = 200.0

const hitChance = 0.95

// CombatQueueImpl buffers attack requests from handler dispatch (Phase 0)
// for resolution here in PhasePostUpdate. Both run on the tick goroutine,
// so no locking is needed between queue and drain.
type CombatQueueImpl struct {
	pending []handler.AttackRequest
}

func NewCombatQueue() *CombatQueueImpl {
	return &CombatQueueImpl{}
}

func (q *CombatQueueImpl) QueueAttack(req handler.AttackRequest) {
	q.pending = append(q.pending, req)
}

func (q *CombatQueueImpl) drain() []handler.AttackRequest {
	reqs := q.pending
	q.pending = nil
	return reqs
}

// CombatResolverSystem settles queued attack requests against the
// authoritative state: range, hit roll, damage, death (§4.6). Phase 3
// (PostUpdate), after movement and AI have committed this tick's positions.
type CombatResolverSystem struct {
	deps  *handler.Deps
	queue *CombatQueueImpl
	conns *net.ConnectionRegistry
}

func NewCombatResolverSystem(deps *handler.Deps, queue *CombatQueueImpl, conns *net.ConnectionRegistry) *CombatResolverSystem {
	return &CombatResolverSystem{deps: deps, queue: queue, conns: conns}
}

func (s *CombatResolverSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CombatResolverSystem) Update(_ time.Duration) {
	for _, req := range s.queue.drain() {
		s.resolve(req)
	}
}

func (s *CombatResolverSystem) resolve(req handler.AttackRequest) {
	attacker := s.deps.World.GetPlayer(req.AttackerCharacterID)
	if attacker == nil || !attacker.Initialized || attacker.Dead {
		return
	}
	if !s.deps.Conns.Owns(req.SessionID, req.AttackerCharacterID) {
		return
	}

	target := s.deps.World.GetNPC(req.TargetNPCID)
	if target == nil {
		s.broadcast(buildAttackResult(req.AttackerCharacterID, req.TargetNPCID, 0, false, 0, 1, "invalid target"))
		return
	}
	if target.Dead {
		s.broadcast(buildAttackResult(req.AttackerCharacterID, req.TargetNPCID, 0, false, int64(target.HP), 5, "target is already dead"))
		return
	}

	distance := dist3(attacker.X, attacker.Y, attacker.Z, target.X, target.Y, target.Z)
	if distance > maxAttackRange {
		s.broadcast(buildAttackResult(req.AttackerCharacterID, req.TargetNPCID, 0, false, int64(target.HP), 1, "target out of range"))
		return
	}

	if rand.Float64() > hitChance {
		s.broadcast(buildAttackResult(req.AttackerCharacterID, req.TargetNPCID, 0, false, int64(target.HP), 0, "miss"))
		return
	}

	damage := computeDamage(attacker)
	target.HP -= damage
	target.AddHate(req.AttackerCharacterID, damage)

	if target.HP <= 0 {
		target.HP = 0
		target.Dead = true
		target.State = world.AIDead
		s.scheduleRespawn(target)

		s.broadcast(buildAttackResult(req.AttackerCharacterID, req.TargetNPCID, int64(damage), true, 0, 0, "target has been slain!"))
		event.Emit(s.deps.Bus, event.EntityKilled{NPCID: target.NPCID, KillerID: req.AttackerCharacterID})
		return
	}

	s.broadcast(buildAttackResult(req.AttackerCharacterID, req.TargetNPCID, int64(damage), true, int64(target.HP), 0, "hit"))
}

// computeDamage implements the attack formula of §4.6:
// 5 + 2*level + str/10 + uniform(-2,5), floored at 1.
func computeDamage(attacker *world.Player) int32 {
	base := 5 + 2*attacker.Level + attacker.Str/10
	roll := -2 + rand.Intn(8) // uniform integer in [-2, 5]
	dmg := base + int32(roll)
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// scheduleRespawn arms the NPC Respawn system using the spawn point's
// configured delay plus variance (§4.5 "respawn_seconds").
func (s *CombatResolverSystem) scheduleRespawn(n *world.NPC) {
	seconds := 30
	variance := 0
	if sp, ok := s.deps.NPCRepo.SpawnByID(n.SpawnPointID); ok {
		seconds = sp.RespawnSeconds
		variance = sp.RespawnVarianceSeconds
	}
	if variance > 0 {
		seconds += rand.Intn(variance*2+1) - variance
	}
	if seconds < 1 {
		seconds = 1
	}

	tickSeconds := s.deps.Config.World.TickRate.Seconds()
	if tickSeconds <= 0 {
		tickSeconds = 0.05
	}
	n.RespawnTimer = int(float64(seconds) / tickSeconds)
}

// broadcast sends an AttackResult to every connected client, not just the
// two participants (§4.6 step 6) — nearby players need to see the fight
// resolve even if they are not the attacker.
func (s *CombatResolverSystem) broadcast(payload []byte) {
	s.conns.Each(func(sess *net.Session) {
		sess.Send(packet.TypeAttackResult, payload)
	})
}

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
