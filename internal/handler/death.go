package handler

import (
	"time"

	"github.com/reqserver/zoneserver/internal/component"
	"github.com/reqserver/zoneserver/internal/core/event"
	"github.com/reqserver/zoneserver/internal/data"
	"github.com/reqserver/zoneserver/internal/world"
	"go.uber.org/zap"
)

// KillPlayer applies death consequences (§4.7): XP loss and de-leveling,
// an optional corpse, and the dead/combat-dirty flags. The caller is
// responsible for having already clamped hp to 0.
func KillPlayer(deps *Deps, player *world.Player) {
	if player.Dead {
		return
	}

	if player.Level >= 6 {
		xpIntoLevel := player.XP - deps.XPTable.TotalXP(player.Level)
		if xpIntoLevel > 0 {
			loss := int64(float64(xpIntoLevel) * deps.Rules.Death.XPLossMultiplier)
			if loss > xpIntoLevel {
				loss = xpIntoLevel
			}
			player.XP -= loss
		}
		for player.Level > 1 && player.XP < deps.XPTable.TotalXP(player.Level) {
			player.Level--
		}
	}

	if deps.Rules.Death.CorpseRunEnabled {
		corpse := world.NewCorpse(player.CharacterID, deps.Config.Server.WorldID, deps.Config.Server.ZoneID,
			player.X, player.Y, player.Z, time.Now(), time.Duration(deps.Rules.Death.CorpseDecayMinutes)*time.Minute)
		deps.World.AddCorpse(corpse)
	}

	player.Dead = true
	player.HP = 0
	player.VelX, player.VelY, player.VelZ = 0, 0, 0
	player.CombatStatsDirty = true

	saveCombatStats(deps, player)
	event.Emit(deps.Bus, event.PlayerDied{CharacterID: player.CharacterID})
}

// RespawnPlayer implements §4.7 respawn: bind point if one is recorded for
// this world/zone, otherwise the zone's safe spawn.
func RespawnPlayer(deps *Deps, player *world.Player, character *component.Character) {
	w := deps.Config.World

	if character.BindWorldID == deps.Config.Server.WorldID && character.BindZoneID == deps.Config.Server.ZoneID &&
		(character.BindX != 0 || character.BindY != 0 || character.BindZ != 0) {
		player.X, player.Y, player.Z = character.BindX, character.BindY, character.BindZ
	} else {
		player.X, player.Y, player.Z = w.SafeX, w.SafeY, w.SafeZ
	}

	player.VelX, player.VelY, player.VelZ = 0, 0, 0
	player.LastValidX, player.LastValidY, player.LastValidZ = player.X, player.Y, player.Z
	player.HP = player.MaxHP
	player.Dead = false
	player.Dirty = true
	event.Emit(deps.Bus, event.PlayerRespawned{CharacterID: player.CharacterID})
}

// AddXP implements §4.8 experience gain and leveling.
func AddXP(player *world.Player, amount int64, xpTable *data.XPTable, rules *data.WorldRules) {
	if amount <= 0 || player.Level >= xpTable.MaxLevel() {
		return
	}

	adjusted := int64(float64(amount) * rules.XPBaseRate)
	player.XP += adjusted

	for player.Level < xpTable.MaxLevel() && player.XP >= xpTable.TotalXP(player.Level+1) {
		player.Level++
	}

	player.CombatStatsDirty = true
}

// saveCombatStats persists the subset of character state KillPlayer and the
// dev commands mutate, logging rather than failing on a write error (§7).
func saveCombatStats(deps *Deps, player *world.Player) {
	c := deps.CharRepo.LoadByID(player.CharacterID)
	if c == nil {
		return
	}
	c.Level, c.XP = player.Level, player.XP
	c.HP, c.MaxHP = player.HP, player.MaxHP
	c.X, c.Y, c.Z = player.X, player.Y, player.Z
	if !deps.CharRepo.Save(c) {
		deps.Log.Warn("combat-stat save failed", zap.Uint64("character_id", player.CharacterID))
	}
	player.CombatStatsDirty = false
}
