package system

import (
	"time"

	coresys "github.com/reqserver/zoneserver/internal/core/system"
	"github.com/reqserver/zoneserver/internal/persist"
	"github.com/reqserver/zoneserver/internal/world"
	"go.uber.org/zap"
)

// PersistenceSystem autosaves dirty players at a configured interval
// (§4.8 "periodic autosave", §9 crash-recovery discussion). Phase 5
// (Persist), after simulation and combat have settled this tick's state.
type PersistenceSystem struct {
	world    *world.State
	charRepo *persist.CharacterRepo
	log      *zap.Logger
	interval time.Duration
	elapsed  time.Duration
}

func NewPersistenceSystem(ws *world.State, charRepo *persist.CharacterRepo, intervalSeconds int, log *zap.Logger) *PersistenceSystem {
	interval := time.Duration(intervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &PersistenceSystem{world: ws, charRepo: charRepo, interval: interval, log: log}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed = 0
	s.saveDirty()
}

func (s *PersistenceSystem) saveDirty() {
	count := 0
	s.world.AllPlayers(func(p *world.Player) {
		if !p.Dirty && !p.CombatStatsDirty {
			return
		}
		if !s.save(p) {
			return
		}
		p.Dirty = false
		p.CombatStatsDirty = false
		count++
	})
	if count > 0 {
		s.log.Debug("autosave complete", zap.Int("players", count))
	}
}

// SaveAll persists every online player unconditionally, used on graceful
// shutdown so a clean exit never loses position or combat state.
func (s *PersistenceSystem) SaveAll() {
	s.world.AllPlayers(func(p *world.Player) {
		s.save(p)
		p.Dirty = false
		p.CombatStatsDirty = false
	})
}

func (s *PersistenceSystem) save(p *world.Player) bool {
	c := s.charRepo.LoadByID(p.CharacterID)
	if c == nil {
		s.log.Warn("autosave: character record missing", zap.Uint64("character_id", p.CharacterID))
		return false
	}
	c.X, c.Y, c.Z, c.Yaw = p.X, p.Y, p.Z, p.Yaw
	c.Level, c.XP = p.Level, p.XP
	c.HP, c.MaxHP = p.HP, p.MaxHP
	if !s.charRepo.Save(c) {
		s.log.Warn("autosave failed", zap.Uint64("character_id", p.CharacterID))
		return false
	}
	return true
}
