package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain session queues, dispatch message handlers
	PhasePreUpdate               // 1: event bus swap + dispatch
	PhaseUpdate                  // 2: player + NPC simulation, NPC respawn timers
	PhasePostUpdate              // 3: combat resolution
	PhaseOutput                  // 4: build + send entity events and snapshots
	PhasePersist                 // 5: dirty-flag autosave
	PhaseCleanup                 // 6: once-a-second corpse sweep
)

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
