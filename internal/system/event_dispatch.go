package system

import (
	"time"

	"github.com/reqserver/zoneserver/internal/core/event"
	coresys "github.com/reqserver/zoneserver/internal/core/system"
)

// EventDispatchSystem swaps the event bus's double buffer and delivers the
// events queued since the previous swap: those from the later phases of
// the previous tick and from this tick's PhaseInput handlers. Phase 1
// (PreUpdate); each event is delivered exactly once.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
