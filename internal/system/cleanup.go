package system

import (
	"time"

	coresys "github.com/reqserver/zoneserver/internal/core/system"
	"github.com/reqserver/zoneserver/internal/world"
	"go.uber.org/zap"
)

// CleanupSystem sweeps expired corpses once a second (§4.7, invariant I6).
// Phase 6 (Cleanup) — last in the tick, after persistence has had a chance
// to look at anything a corpse's owner might still care about.
type CleanupSystem struct {
	world    *world.State
	log      *zap.Logger
	interval time.Duration
	elapsed  time.Duration
}

func NewCleanupSystem(ws *world.State, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: ws, log: log, interval: time.Second}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed = 0

	expired := s.world.SweepExpiredCorpses(time.Now())
	if len(expired) > 0 {
		s.log.Debug("corpses expired", zap.Int("count", len(expired)))
	}
}
