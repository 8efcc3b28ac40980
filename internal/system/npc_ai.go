package system

import (
	"math"
	"time"

	coresys "github.com/reqserver/zoneserver/internal/core/system"
	"github.com/reqserver/zoneserver/internal/handler"
	"github.com/reqserver/zoneserver/internal/world"
)

// npcStepSpeed is the linear steering speed used by both pursuit and leash
// movement — the source system never pins this to a template field, so one
// fixed rate covers every archetype (§4.5: "no pathfinding is specified").
const npcStepSpeed = 40.0

// fleeCooldownTicks bounds how long an NPC stays in Fleeing before
// returning to Engaged/Leashing even without HP recovery (§4.5).
const fleeCooldownTicks = 100 // 5s at a 50ms tick

const leashArrivalEpsilon = 1.0

// NPCAISystem runs the per-NPC state machine: idle/alert/engaged/leashing/
// fleeing (§4.5). Phase 2 (Update), alongside player simulation.
type NPCAISystem struct {
	deps *handler.Deps
}

func NewNPCAISystem(deps *handler.Deps) *NPCAISystem {
	return &NPCAISystem{deps: deps}
}

func (s *NPCAISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *NPCAISystem) Update(dt time.Duration) {
	dtSeconds := dt.Seconds()
	for _, n := range s.deps.World.NPCList() {
		if n.Dead || n.State == world.AIDead {
			continue
		}
		s.step(n, dtSeconds)
	}
}

func (s *NPCAISystem) step(n *world.NPC, dt float64) {
	switch n.State {
	case world.AIIdle:
		s.stepIdle(n)
	case world.AIAlert:
		s.stepAlert(n)
	case world.AIEngaged:
		s.stepEngaged(n, dt)
	case world.AILeashing:
		s.stepLeashing(n, dt)
	case world.AIFleeing:
		s.stepFleeing(n, dt)
	}
}

func (s *NPCAISystem) stepIdle(n *world.NPC) {
	if target := s.nearestPlayerWithin(n, n.AggroRadius); target != 0 {
		n.TargetCharacterID = target
		n.State = world.AIAlert
		return
	}

	template, ok := s.deps.NPCRepo.TemplateByID(n.TemplateID)
	if !ok || !template.IsSocial {
		return
	}
	for _, other := range s.deps.World.GetNearbyNPCs(n.X, n.Y, n.AssistRadius) {
		if other.NPCID == n.NPCID || other.State != world.AIEngaged {
			continue
		}
		if dist3(n.X, n.Y, n.Z, other.X, other.Y, other.Z) <= n.AssistRadius {
			n.TargetCharacterID = other.TargetCharacterID
			n.State = world.AIAlert
			return
		}
	}
}

func (s *NPCAISystem) stepAlert(n *world.NPC) {
	if n.TargetCharacterID != 0 && s.deps.World.GetPlayer(n.TargetCharacterID) != nil {
		n.State = world.AIEngaged
		return
	}
	n.State = world.AIIdle
	n.TargetCharacterID = 0
}

func (s *NPCAISystem) stepEngaged(n *world.NPC, dt float64) {
	if n.GetTotalHate() > 0 {
		n.TargetCharacterID = n.GetMaxHateTarget()
	}

	target := s.deps.World.GetPlayer(n.TargetCharacterID)
	if target == nil {
		if next := n.GetMaxHateTarget(); next != 0 {
			if p := s.deps.World.GetPlayer(next); p != nil {
				n.TargetCharacterID = next
				target = p
			}
		}
	}
	if target == nil {
		n.State = world.AILeashing
		return
	}

	if dist3(n.X, n.Y, n.Z, n.SpawnX, n.SpawnY, n.SpawnZ) > n.LeashRadius {
		n.State = world.AILeashing
		return
	}

	template, ok := s.deps.NPCRepo.TemplateByID(n.TemplateID)
	if ok && template.CanFlee && float64(n.HP) <= float64(n.MaxHP)*0.2 {
		n.State = world.AIFleeing
		n.FleeTicks = fleeCooldownTicks
		return
	}

	s.stepToward(n, target.X, target.Y, target.Z, dt)
}

func (s *NPCAISystem) stepLeashing(n *world.NPC, dt float64) {
	if dist3(n.X, n.Y, n.Z, n.SpawnX, n.SpawnY, n.SpawnZ) <= leashArrivalEpsilon {
		n.ClearHateList()
		n.HP = n.MaxHP
		n.State = world.AIIdle
		return
	}
	s.stepToward(n, n.SpawnX, n.SpawnY, n.SpawnZ, dt)
}

func (s *NPCAISystem) stepFleeing(n *world.NPC, dt float64) {
	n.FleeTicks--

	recovered := float64(n.HP) > float64(n.MaxHP)*0.2
	if recovered || n.FleeTicks <= 0 {
		if n.TargetCharacterID != 0 && s.deps.World.GetPlayer(n.TargetCharacterID) != nil {
			n.State = world.AIEngaged
		} else {
			n.State = world.AILeashing
		}
		return
	}

	target := s.deps.World.GetPlayer(n.TargetCharacterID)
	if target == nil {
		n.State = world.AILeashing
		return
	}
	// Flee by stepping toward the point mirrored away from the target.
	awayX := n.X + (n.X - target.X)
	awayY := n.Y + (n.Y - target.Y)
	awayZ := n.Z + (n.Z - target.Z)
	s.stepToward(n, awayX, awayY, awayZ, dt)
}

func (s *NPCAISystem) stepToward(n *world.NPC, tx, ty, tz float64, dt float64) {
	dx, dy, dz := tx-n.X, ty-n.Y, tz-n.Z
	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if dist < 1e-6 {
		return
	}
	step := npcStepSpeed * dt
	if step > dist {
		step = dist
	}
	newX := n.X + dx/dist*step
	newY := n.Y + dy/dist*step
	newZ := n.Z + dz/dist*step
	s.deps.World.UpdateNPCPosition(n.NPCID, newX, newY, newZ)
}

// nearestPlayerWithin returns the character id of the nearest player within
// radius (3D distance, per §4.5's aggro_radius definition), or 0 if none.
func (s *NPCAISystem) nearestPlayerWithin(n *world.NPC, radius float64) uint64 {
	var best uint64
	bestDist := math.MaxFloat64
	for _, p := range s.deps.World.GetNearbyPlayers(n.X, n.Y, radius, 0) {
		d := dist3(n.X, n.Y, n.Z, p.X, p.Y, p.Z)
		if d <= radius && d < bestDist {
			bestDist = d
			best = p.CharacterID
		}
	}
	return best
}

func dist3(x1, y1, z1, x2, y2, z2 float64) float64 {
	dx, dy, dz := x2-x1, y2-y1, z2-z1
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
