package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/reqserver/zoneserver/internal/component"
)

// CharacterRepo is the file-backed Character Repository (§6.3, §6.5): one
// JSON file per character under <dir>/<character_id>.json. The zone task
// is the only caller, but saves run under a mutex anyway so a future
// offload to a persistence worker (§9) doesn't need a repo rewrite.
type CharacterRepo struct {
	dir string
	log *zap.Logger
	mu  sync.Mutex
}

func NewCharacterRepo(dir string, log *zap.Logger) *CharacterRepo {
	return &CharacterRepo{dir: dir, log: log}
}

func (r *CharacterRepo) path(characterID uint64) string {
	return filepath.Join(r.dir, strconv.FormatUint(characterID, 10)+".json")
}

// LoadByID loads a character record. A missing file or unparsable record is
// surfaced as nil — a miss, never a panic (§6.3).
func (r *CharacterRepo) LoadByID(characterID uint64) *component.Character {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path(characterID))
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.Warn("character load failed", zap.Uint64("character_id", characterID), zap.Error(err))
		}
		return nil
	}
	var c component.Character
	if err := json.Unmarshal(data, &c); err != nil {
		r.log.Error("character record corrupt", zap.Uint64("character_id", characterID), zap.Error(err))
		return nil
	}
	return &c
}

// Save writes a character record atomically (write to a temp file, then
// rename) so a crash mid-write never leaves a truncated record behind.
// Returns false on any failure; callers log and move on (§7: save failures
// are never fatal).
func (r *CharacterRepo) Save(c *component.Character) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		r.log.Error("character marshal failed", zap.Uint64("character_id", c.CharacterID), zap.Error(err))
		return false
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		r.log.Error("character directory create failed", zap.String("dir", r.dir), zap.Error(err))
		return false
	}

	final := r.path(c.CharacterID)
	tmp := final + fmt.Sprintf(".%d.tmp", os.Getpid())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		r.log.Error("character write failed", zap.Uint64("character_id", c.CharacterID), zap.Error(err))
		return false
	}
	if err := os.Rename(tmp, final); err != nil {
		r.log.Error("character rename failed", zap.Uint64("character_id", c.CharacterID), zap.Error(err))
		os.Remove(tmp)
		return false
	}
	return true
}
