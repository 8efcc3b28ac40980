package system

import (
	"math"
	"time"

	coresys "github.com/reqserver/zoneserver/internal/core/system"
	"github.com/reqserver/zoneserver/internal/data"
	"github.com/reqserver/zoneserver/internal/handler"
	"github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
	"github.com/reqserver/zoneserver/internal/world"
	"go.uber.org/zap"
)

// NPC despawn reason codes carried in EntityDespawn (§4.9).
const (
	despawnReasonDeath      = 1
	despawnReasonRemoval    = 2
	despawnReasonOutOfRange = 3
)

// VisibilitySystem is the Interest Filter & Snapshot Emitter (§4.9). It
// streams NPC EntitySpawn/EntityUpdate/EntityDespawn events per recipient,
// then emits one PlayerStateSnapshot per tick, in full-broadcast or
// per-recipient mode depending on zone config. Phase 4 (Output), after
// everything that could change position, HP, or AI state this tick.
type VisibilitySystem struct {
	deps  *handler.Deps
	conns *net.ConnectionRegistry
	log   *zap.Logger
}

func NewVisibilitySystem(deps *handler.Deps, conns *net.ConnectionRegistry, log *zap.Logger) *VisibilitySystem {
	return &VisibilitySystem{deps: deps, conns: conns, log: log}
}

func (s *VisibilitySystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *VisibilitySystem) Update(_ time.Duration) {
	cfg := s.deps.Config.World

	s.deps.World.AllPlayers(func(p *world.Player) {
		if !p.Initialized {
			return
		}
		s.streamNPCEvents(p, cfg.InterestRadius)
	})

	snapshotID := s.deps.World.NextSnapshotID()

	if cfg.BroadcastFullState {
		payload := s.buildFullSnapshot(snapshotID)
		s.conns.Each(func(sess *net.Session) {
			sess.Send(packet.TypePlayerStateSnapshot, payload)
		})
		return
	}

	s.deps.World.AllPlayers(func(p *world.Player) {
		if !p.Initialized {
			return
		}
		sess, ok := s.conns.SessionForCharacter(p.CharacterID)
		if !ok {
			return
		}
		payload := s.buildRecipientSnapshot(snapshotID, p, cfg.InterestRadius)
		sess.Send(packet.TypePlayerStateSnapshot, payload)
	})
}

// streamNPCEvents diffs the NPCs currently within radius of p against
// p.KnownNPCs and emits spawn/update/despawn accordingly (§4.9).
func (s *VisibilitySystem) streamNPCEvents(p *world.Player, radius float64) {
	sess, ok := s.conns.SessionForCharacter(p.CharacterID)
	if !ok {
		return
	}

	visible := s.deps.World.GetNearbyNPCs(p.X, p.Y, radius)
	current := make(map[uint64]struct{}, len(visible))

	for _, n := range visible {
		current[n.NPCID] = struct{}{}
		known, wasKnown := p.KnownNPCs[n.NPCID]
		state := world.KnownNPCState{X: n.X, Y: n.Y, Z: n.Z, HP: n.HP, State: n.State}

		if !wasKnown {
			sess.Send(packet.TypeEntitySpawn, buildEntitySpawn(n, s.deps.NPCRepo))
		} else if known != state {
			sess.Send(packet.TypeEntityUpdate, buildEntityUpdate(n))
		}
		p.KnownNPCs[n.NPCID] = state
	}

	for npcID := range p.KnownNPCs {
		if _, stillVisible := current[npcID]; stillVisible {
			continue
		}
		reason := despawnReasonOutOfRange
		if n := s.deps.World.GetNPC(npcID); n != nil && n.Dead {
			reason = despawnReasonDeath
		} else if n == nil {
			reason = despawnReasonRemoval
		}
		sess.Send(packet.TypeEntityDespawn, buildEntityDespawn(npcID, reason))
		delete(p.KnownNPCs, npcID)
	}
}

// buildEntitySpawn encodes the EntitySpawn payload (§6.2):
// entityId|entityType|name|level|x|y|z|hp|maxHp.
func buildEntitySpawn(n *world.NPC, repo *data.NPCRepo) []byte {
	name := "Unknown"
	level := n.Level
	if tmpl, ok := repo.TemplateByID(n.TemplateID); ok {
		name = tmpl.Name
	}
	return packet.NewFieldWriter().
		Uint64(n.NPCID).
		Uint64(n.TemplateID).
		String(name).
		Int(int(level)).
		Float(n.X).Float(n.Y).Float(n.Z).
		Int(int(n.HP)).Int(int(n.MaxHP)).
		Bytes()
}

func buildEntityUpdate(n *world.NPC) []byte {
	return packet.NewFieldWriter().
		Uint64(n.NPCID).
		Float(n.X).Float(n.Y).Float(n.Z).
		Int(int(n.HP)).
		String(n.State.String()).
		Bytes()
}

func buildEntityDespawn(npcID uint64, reason int) []byte {
	return packet.NewFieldWriter().
		Uint64(npcID).
		Int(reason).
		Bytes()
}

// buildFullSnapshot lists every initialized player once, sent to every
// connection (§4.9 full-broadcast mode).
func (s *VisibilitySystem) buildFullSnapshot(snapshotID uint64) []byte {
	var entries []*world.Player
	s.deps.World.AllPlayers(func(p *world.Player) {
		if p.Initialized {
			entries = append(entries, p)
		}
	})
	return encodeSnapshot(snapshotID, entries)
}

// buildRecipientSnapshot includes the recipient plus every other
// initialized player within interest_radius (§4.9 per-recipient mode).
func (s *VisibilitySystem) buildRecipientSnapshot(snapshotID uint64, recipient *world.Player, radius float64) []byte {
	entries := []*world.Player{recipient}
	s.deps.World.AllPlayers(func(p *world.Player) {
		if p == recipient || !p.Initialized {
			return
		}
		if math.Hypot(p.X-recipient.X, p.Y-recipient.Y) <= radius {
			entries = append(entries, p)
		}
	})
	return encodeSnapshot(snapshotID, entries)
}

func encodeSnapshot(snapshotID uint64, entries []*world.Player) []byte {
	fw := packet.NewFieldWriter().Uint64(snapshotID).Int(len(entries))
	for _, p := range entries {
		fw.Uint64(p.CharacterID).
			Float(p.X).Float(p.Y).Float(p.Z).
			Float(p.VelX).Float(p.VelY).Float(p.VelZ).
			Float(p.Yaw)
	}
	return fw.Bytes()
}
