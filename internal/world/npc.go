package world

import "sync/atomic"

// npcIDCounter generates unique runtime NPC instance ids, distinct from
// template ids so a template can be spawned more than once.
var npcIDCounter atomic.Uint64

func init() {
	npcIDCounter.Store(1)
}

// NextNPCID returns a unique runtime id for a newly spawned NPC instance.
func NextNPCID() uint64 {
	return npcIDCounter.Add(1)
}

// AIState is the NPC behavior state machine (idle, aggroed, chasing back
// to spawn, or fleeing at low health).
type AIState int

const (
	AIIdle AIState = iota
	AIAlert
	AIEngaged
	AILeashing
	AIFleeing
	AIDead
)

func (s AIState) String() string {
	switch s {
	case AIIdle:
		return "idle"
	case AIAlert:
		return "alert"
	case AIEngaged:
		return "engaged"
	case AILeashing:
		return "leashing"
	case AIFleeing:
		return "fleeing"
	case AIDead:
		return "dead"
	default:
		return "unknown"
	}
}

// NPC is a runtime monster instance tracked by the zone's authoritative
// state. Accessed only from the tick goroutine — no locks.
type NPC struct {
	NPCID        uint64
	TemplateID   uint64
	SpawnPointID uint64

	X, Y, Z float64
	Heading float64

	SpawnX, SpawnY, SpawnZ float64

	HP, MaxHP int32
	Level     int32
	Damage    int32
	AC        int32

	AggroRadius  float64
	AssistRadius float64
	LeashRadius  float64

	Aggressive bool

	State AIState

	// TargetCharacterID is the character currently being chased, 0 if none.
	TargetCharacterID uint64

	// HateTable maps character_id -> accumulated hate, per the data model.
	// Kept on the NPC rather than a separate global table so an NPC's
	// targeting never needs a second lookup by npc id.
	HateTable map[uint64]int32

	RespawnTimer int // ticks remaining until respawn, 0 = not pending
	Dead         bool

	// FleeTicks counts down while State == AIFleeing; reaching 0 forces a
	// return to Engaged/Leashing even without HP recovery (§4.5).
	FleeTicks int
}

// NewNPC constructs a runtime NPC from template + spawn-point placement.
func NewNPC(templateID, spawnPointID uint64, x, y, z float64) *NPC {
	return &NPC{
		NPCID:        NextNPCID(),
		TemplateID:   templateID,
		SpawnPointID: spawnPointID,
		X:            x,
		Y:            y,
		Z:            z,
		SpawnX:       x,
		SpawnY:       y,
		SpawnZ:       z,
		HateTable:    make(map[uint64]int32),
	}
}

// AddHate increases a character's accumulated hate and, if it becomes the
// highest, makes them the aggro target.
func (n *NPC) AddHate(characterID uint64, amount int32) {
	if n.HateTable == nil {
		n.HateTable = make(map[uint64]int32)
	}
	n.HateTable[characterID] += amount
	n.TargetCharacterID = n.GetMaxHateTarget()
}

// GetMaxHateTarget returns the character_id with the highest accumulated
// hate, or 0 if the table is empty.
func (n *NPC) GetMaxHateTarget() uint64 {
	var best uint64
	var bestHate int32 = -1
	for charID, hate := range n.HateTable {
		if hate > bestHate {
			bestHate = hate
			best = charID
		}
	}
	return best
}

// RemoveHateTarget drops a character from the hate table entirely, e.g.
// on disconnect or death, and retargets to the next highest.
func (n *NPC) RemoveHateTarget(characterID uint64) {
	delete(n.HateTable, characterID)
	if n.TargetCharacterID == characterID {
		n.TargetCharacterID = n.GetMaxHateTarget()
	}
}

// ClearHateList wipes all hate, used when an NPC leashes home.
func (n *NPC) ClearHateList() {
	n.HateTable = make(map[uint64]int32)
	n.TargetCharacterID = 0
}

// GetTotalHate sums all accumulated hate, used to decide whether an NPC
// has any reason to stay aggroed.
func (n *NPC) GetTotalHate() int32 {
	var total int32
	for _, hate := range n.HateTable {
		total += hate
	}
	return total
}
