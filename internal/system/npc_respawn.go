package system

import (
	"time"

	coresys "github.com/reqserver/zoneserver/internal/core/system"
	"github.com/reqserver/zoneserver/internal/data"
	"github.com/reqserver/zoneserver/internal/world"
)

// NPCRespawnSystem counts down a dead NPC's respawn timer and restores it
// to its spawn point once the timer reaches zero (§4.5, §4.6). Phase 2
// (Update), alongside player and AI simulation.
type NPCRespawnSystem struct {
	world   *world.State
	npcRepo *data.NPCRepo
}

func NewNPCRespawnSystem(ws *world.State, npcRepo *data.NPCRepo) *NPCRespawnSystem {
	return &NPCRespawnSystem{world: ws, npcRepo: npcRepo}
}

func (s *NPCRespawnSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *NPCRespawnSystem) Update(_ time.Duration) {
	for _, n := range s.world.NPCList() {
		if !n.Dead || n.RespawnTimer <= 0 {
			continue
		}
		n.RespawnTimer--
		if n.RespawnTimer == 0 {
			s.respawn(n)
		}
	}
}

func (s *NPCRespawnSystem) respawn(n *world.NPC) {
	template, ok := s.npcRepo.TemplateByID(n.TemplateID)
	if ok {
		n.MaxHP = template.MaxHP
		n.Level = template.Level
		n.AC = template.AC
		n.AggroRadius = template.AggroRadius
		n.AssistRadius = template.AssistRadius
		n.LeashRadius = template.LeashRadius
		n.Aggressive = template.Aggressive
	}

	n.HP = n.MaxHP
	n.ClearHateList()
	n.FleeTicks = 0
	n.Dead = false
	n.State = world.AIIdle
	s.world.UpdateNPCPosition(n.NPCID, n.SpawnX, n.SpawnY, n.SpawnZ)
}
