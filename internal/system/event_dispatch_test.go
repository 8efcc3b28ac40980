package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reqserver/zoneserver/internal/core/event"
)

func TestEventDispatchSystemDeliversPriorTickEvents(t *testing.T) {
	bus := event.NewBus()
	sys := NewEventDispatchSystem(bus)

	var got uint64
	event.Subscribe(bus, func(e event.PlayerDied) { got = e.CharacterID })

	event.Emit(bus, event.PlayerDied{CharacterID: 7})
	assert.Equal(t, uint64(0), got) // not yet swapped into front buffer

	sys.Update(50 * time.Millisecond)
	assert.Equal(t, uint64(7), got)
}

func TestEventDispatchSystemDoesNotRedeliver(t *testing.T) {
	bus := event.NewBus()
	sys := NewEventDispatchSystem(bus)

	count := 0
	event.Subscribe(bus, func(e event.PlayerDied) { count++ })

	event.Emit(bus, event.PlayerDied{CharacterID: 1})
	sys.Update(50 * time.Millisecond)
	sys.Update(50 * time.Millisecond)

	assert.Equal(t, 1, count)
}
