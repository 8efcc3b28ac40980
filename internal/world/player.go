package world

import (
	"github.com/reqserver/zoneserver/internal/core/ecs"
)

// Player holds the authoritative in-memory state for a character currently
// in the zone. Accessed only from the tick goroutine — no locks.
type Player struct {
	CharacterID uint64
	AccountID   uint64
	Name        string

	SessionID ecs.EntityID // connection currently bound to this character

	// Initialized is set once the handshake (§4.1 step 6) has finished
	// placing and registering the player. Invariant I3 requires every
	// message handler to check this before touching a player.
	Initialized bool

	X, Y, Z float64
	Yaw     float64

	VelX, VelY, VelZ float64

	// LastValidX/Y/Z is the last position the anti-cheat snap-back accepted.
	// A candidate position further than the suspicious threshold
	// (max_allowed * 5) from here is rejected.
	LastValidX, LastValidY, LastValidZ float64

	// Pending input, set by the movement handler and consumed once per tick
	// by the player simulation system.
	InputForwardAxis float64
	InputStrafeAxis  float64
	InputJump        bool
	InputSequence    uint32
	LastInputSeq     uint32

	Level int32
	XP    int64

	HP, MaxHP int32
	Str       int32

	Dead bool

	// Dirty marks the player needs a position/heading save. CombatStatsDirty
	// marks level/xp/hp separately, per the data model's two-flag scheme —
	// a pure position tick never forces a combat-stat rewrite and vice
	// versa.
	Dirty            bool
	CombatStatsDirty bool

	// KnownNPCs tracks, per visible NPC, the state last sent to this
	// player's connection — the Interest Filter diffs against it to decide
	// EntitySpawn/EntityUpdate/EntityDespawn (§4.9).
	KnownNPCs map[uint64]KnownNPCState
}

// KnownNPCState is the subset of NPC state that triggers an EntityUpdate
// when it changes while the NPC stays in a player's interest range.
type KnownNPCState struct {
	X, Y, Z float64
	HP      int32
	State   AIState
}

// NewPlayer constructs a Player with sane defaults for first-entry spawn.
func NewPlayer(characterID, accountID uint64, name string) *Player {
	return &Player{
		CharacterID: characterID,
		AccountID:   accountID,
		Name:        name,
		MaxHP:       1,
		HP:          1,
		Level:       1,
		KnownNPCs:   make(map[uint64]KnownNPCState),
	}
}

// ApplyCandidatePosition commits a new position after the simulation system
// has already validated or snapped it back.
func (p *Player) ApplyCandidatePosition(x, y, z float64) {
	p.X, p.Y, p.Z = x, y, z
	p.LastValidX, p.LastValidY, p.LastValidZ = x, y, z
}
