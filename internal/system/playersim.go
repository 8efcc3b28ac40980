package system

import (
	"math"
	"time"

	coresys "github.com/reqserver/zoneserver/internal/core/system"
	"github.com/reqserver/zoneserver/internal/handler"
	"github.com/reqserver/zoneserver/internal/world"
	"go.uber.org/zap"
)

const (
	gravity     = -30.0
	jumpVel     = 10.0
	snapFactor  = 1.5 // max_allowed = move_speed * dt * snapFactor
	panicFactor = 5.0 // suspicious = max_allowed * panicFactor
)

// PlayerSimSystem integrates every initialized, non-dead player's input
// into velocity and position with anti-cheat snap-back (§4.4). Phase 2
// (Update), alongside NPC simulation.
type PlayerSimSystem struct {
	deps *handler.Deps
}

func NewPlayerSimSystem(deps *handler.Deps) *PlayerSimSystem {
	return &PlayerSimSystem{deps: deps}
}

func (s *PlayerSimSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PlayerSimSystem) Update(dt time.Duration) {
	moveSpeed := s.deps.Config.World.MoveSpeed
	dtSeconds := dt.Seconds()

	s.deps.World.AllPlayers(func(p *world.Player) {
		if !p.Initialized || p.Dead {
			return
		}
		s.step(p, moveSpeed, dtSeconds)
	})
}

func (s *PlayerSimSystem) step(p *world.Player, moveSpeed, dt float64) {
	dx, dy := p.InputForwardAxis, p.InputStrafeAxis
	if mag := math.Hypot(dx, dy); mag > 1 {
		dx, dy = dx/mag, dy/mag
	}

	p.VelX = dx * moveSpeed
	p.VelY = dy * moveSpeed

	if p.Z <= 0 {
		if p.InputJump {
			p.VelZ = jumpVel
		} else {
			p.VelZ = 0
		}
	} else {
		p.VelZ += gravity * dt
	}

	candX := p.X + p.VelX*dt
	candY := p.Y + p.VelY*dt
	candZ := p.Z + p.VelZ*dt
	if candZ <= 0 {
		candZ = 0
		p.VelZ = 0
	}

	distance := math.Sqrt(
		(candX-p.LastValidX)*(candX-p.LastValidX) +
			(candY-p.LastValidY)*(candY-p.LastValidY) +
			(candZ-p.LastValidZ)*(candZ-p.LastValidZ))

	maxAllowed := moveSpeed * dt * snapFactor
	suspicious := maxAllowed * panicFactor

	if distance > suspicious {
		p.X, p.Y, p.Z = p.LastValidX, p.LastValidY, p.LastValidZ
		p.VelX, p.VelY, p.VelZ = 0, 0, 0
		s.deps.Log.Warn("movement snap-back",
			zap.Uint64("character_id", p.CharacterID),
			zap.Float64("distance", distance),
			zap.Float64("suspicious_threshold", suspicious),
		)
		return
	}

	moved := math.Sqrt(
		(candX-p.X)*(candX-p.X) +
			(candY-p.Y)*(candY-p.Y) +
			(candZ-p.Z)*(candZ-p.Z))

	s.deps.World.UpdatePlayerPosition(p.CharacterID, candX, candY, candZ)
	p.LastValidX, p.LastValidY, p.LastValidZ = candX, candY, candZ
	if moved > 0.01 {
		p.Dirty = true
	}
}
