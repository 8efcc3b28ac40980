package data

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// HotZoneMultiplier scales XP earned while a player is inside a named
// hot-zone tag.
type HotZoneMultiplier struct {
	Tag        string  `yaml:"tag"`
	Multiplier float64 `yaml:"multiplier"`
}

// DeathRules controls the consequences of a player's death (§4.7).
type DeathRules struct {
	XPLossMultiplier   float64 `yaml:"xp_loss_multiplier"`
	CorpseRunEnabled   bool    `yaml:"corpse_run_enabled"`
	CorpseDecayMinutes int     `yaml:"corpse_decay_minutes"`
}

// WorldRules is the immutable-at-runtime ruleset governing XP, loot, and
// death consequences for a world (§3).
type WorldRules struct {
	XPBaseRate       float64             `yaml:"xp_base_rate"`
	XPGroupBonus     float64             `yaml:"xp_group_bonus"`
	HotZones         []HotZoneMultiplier `yaml:"hot_zones"`
	LootMultiplier   float64             `yaml:"loot_multiplier"`
	Death            DeathRules          `yaml:"death"`
}

// LoadWorldRules parses a ruleset file (config/world_rules_<ruleset>.json per §6.4,
// stored as YAML here to match the rest of internal/data's loaders).
func LoadWorldRules(path string, log *zap.Logger) (*WorldRules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world rules: %w", err)
	}
	var rules WorldRules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse world rules: %w", err)
	}
	if rules.XPBaseRate <= 0 {
		return nil, fmt.Errorf("world rules %s: xp_base_rate must be positive", path)
	}
	if rules.Death.CorpseDecayMinutes < 0 {
		return nil, fmt.Errorf("world rules %s: corpse_decay_minutes must be non-negative", path)
	}
	log.Info("loaded world rules", zap.String("path", path))
	return &rules, nil
}

// HotZoneMultiplierFor returns the multiplier for a tag, or 1.0 if untagged.
func (w *WorldRules) HotZoneMultiplierFor(tag string) float64 {
	if tag == "" {
		return 1.0
	}
	for _, hz := range w.HotZones {
		if hz.Tag == tag {
			return hz.Multiplier
		}
	}
	return 1.0
}
