package event

// EntityKilled fires when an NPC's hp reaches zero (§4.6 step 5).
type EntityKilled struct {
	NPCID    uint64
	KillerID uint64 // character_id, 0 if not a player kill
}

// PlayerDied fires when a player's hp reaches zero (§4.7).
type PlayerDied struct {
	CharacterID uint64
}

// PlayerRespawned fires once a dead player has been placed back in the
// world, hp/mana restored (§4.7).
type PlayerRespawned struct {
	CharacterID uint64
}
