package world

import (
	"sync/atomic"
	"time"
)

var corpseIDCounter atomic.Uint64

// NextCorpseID returns a unique id for a newly created corpse.
func NextCorpseID() uint64 {
	return corpseIDCounter.Add(1)
}

// Corpse is a player's death marker: a lootable/resurrection point that
// decays after a fixed lifetime (§4.7, invariant I6).
type Corpse struct {
	CorpseID         uint64
	OwnerCharacterID uint64
	WorldID          uint64
	ZoneID           uint64
	X, Y, Z          float64
	CreatedAt        time.Time
	ExpiresAt        time.Time
}

// NewCorpse creates a corpse at a player's death position with a decay
// deadline `lifetime` from now.
func NewCorpse(ownerCharacterID, worldID, zoneID uint64, x, y, z float64, now time.Time, lifetime time.Duration) *Corpse {
	return &Corpse{
		CorpseID:         NextCorpseID(),
		OwnerCharacterID: ownerCharacterID,
		WorldID:          worldID,
		ZoneID:           zoneID,
		X:                x,
		Y:                y,
		Z:                z,
		CreatedAt:        now,
		ExpiresAt:        now.Add(lifetime),
	}
}

// Expired reports whether the corpse's decay timer has elapsed as of now.
func (c *Corpse) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
