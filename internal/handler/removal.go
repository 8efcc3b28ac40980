package handler

import "go.uber.org/zap"

// RemovePlayer implements §4.10 Player Removal. All four steps run even if
// an earlier one fails — a save failure must never leave stale hate-table
// or registry entries behind.
func RemovePlayer(deps *Deps, characterID uint64) {
	if p := deps.World.GetPlayer(characterID); p != nil {
		if c := deps.CharRepo.LoadByID(characterID); c != nil {
			c.LastWorldID = deps.Config.Server.WorldID
			c.LastZoneID = deps.Config.Server.ZoneID
			c.X, c.Y, c.Z, c.Yaw = p.X, p.Y, p.Z, p.Yaw
			c.HP, c.MaxHP = p.HP, p.MaxHP
			c.Level, c.XP = p.Level, p.XP
			if !deps.CharRepo.Save(c) {
				deps.Log.Warn("final save failed on player removal", zap.Uint64("character_id", characterID))
			}
		}
	}

	deps.World.RemoveHateEverywhere(characterID)
	deps.Conns.RemoveByCharacter(characterID)
	deps.World.RemovePlayer(characterID)
}
