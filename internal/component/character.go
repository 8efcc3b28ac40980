// Package component holds persisted record shapes — data that crosses the
// Character Repository boundary, as opposed to the runtime state in
// internal/world, which exists only while a character is in-zone.
package component

// Character is the on-disk record for one character (§6.5:
// data/characters/<character_id>.json). Pure data; all mutation happens in
// the systems and handlers that load and save it through the repository.
type Character struct {
	CharacterID uint64 `json:"character_id"`
	AccountID   uint64 `json:"account_id"`
	Name        string `json:"name"`

	Level int32 `json:"level"`
	XP    int64 `json:"xp"`

	HP      int32 `json:"hp"`
	MaxHP   int32 `json:"max_hp"`
	Mana    int32 `json:"mana"`
	MaxMana int32 `json:"max_mana"`

	Str int32 `json:"str"`
	Sta int32 `json:"sta"`
	Agi int32 `json:"agi"`
	Dex int32 `json:"dex"`
	Int int32 `json:"int"`
	Wis int32 `json:"wis"`
	Cha int32 `json:"cha"`

	// Last known placement, used by Spawn Placement (§4.2) restore rule.
	LastWorldID uint64  `json:"last_world_id"`
	LastZoneID  uint64  `json:"last_zone_id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	Yaw         float64 `json:"yaw"`

	// Bind point, consulted by respawn (§4.7).
	BindWorldID uint64  `json:"bind_world_id"`
	BindZoneID  uint64  `json:"bind_zone_id"`
	BindX       float64 `json:"bind_x"`
	BindY       float64 `json:"bind_y"`
	BindZ       float64 `json:"bind_z"`
}
