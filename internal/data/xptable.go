package data

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// XPLevel is one row of the XP table: the cumulative XP required to reach
// a level (§3, §4.8).
type XPLevel struct {
	Level   int32 `yaml:"level"`
	TotalXP int64 `yaml:"total_xp"`
}

type xpTableFile struct {
	Levels []XPLevel `yaml:"levels"`
}

// XPTable is an ordered, contiguous, monotonically non-decreasing lookup
// from level to cumulative XP required.
type XPTable struct {
	levels   []XPLevel // index 0 == level 1
	maxLevel int32
}

func NewXPTable() *XPTable {
	return &XPTable{}
}

// Load parses the XP table from a YAML file and validates contiguity and
// monotonicity (§6.4: "each is validated on load").
func (t *XPTable) Load(path string, log *zap.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read xp table: %w", err)
	}
	var file xpTableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse xp table: %w", err)
	}
	if len(file.Levels) == 0 {
		return fmt.Errorf("xp table %s has no levels", path)
	}
	var prevTotal int64 = -1
	for i, lvl := range file.Levels {
		wantLevel := int32(i + 1)
		if lvl.Level != wantLevel {
			return fmt.Errorf("xp table %s: expected level %d at index %d, got %d", path, wantLevel, i, lvl.Level)
		}
		if lvl.TotalXP < prevTotal {
			return fmt.Errorf("xp table %s: total_xp not monotonic at level %d", path, lvl.Level)
		}
		prevTotal = lvl.TotalXP
	}
	t.levels = file.Levels
	t.maxLevel = int32(len(file.Levels))
	log.Info("loaded xp table", zap.Int("levels", len(file.Levels)))
	return nil
}

// MaxLevel returns the highest level the table defines.
func (t *XPTable) MaxLevel() int32 {
	return t.maxLevel
}

// TotalXP returns the cumulative XP required for a level, clamping
// out-of-range requests to the table's endpoints (§4.8).
func (t *XPTable) TotalXP(level int32) int64 {
	if len(t.levels) == 0 {
		return 0
	}
	if level < 1 {
		level = 1
	}
	if level > t.maxLevel {
		level = t.maxLevel
	}
	return t.levels[level-1].TotalXP
}
