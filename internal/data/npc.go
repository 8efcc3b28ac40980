package data

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// NPCTemplate is an immutable archetype loaded once at boot (§3).
type NPCTemplate struct {
	TemplateID uint64 `yaml:"template_id"`
	Name       string `yaml:"name"`
	Level      int32  `yaml:"level"`
	MaxHP      int32  `yaml:"max_hp"`
	MinDamage  int32  `yaml:"min_damage"`
	MaxDamage  int32  `yaml:"max_damage"`
	AC         int32  `yaml:"ac"`

	AggroRadius  float64 `yaml:"aggro_radius"`
	AssistRadius float64 `yaml:"assist_radius"`
	LeashRadius  float64 `yaml:"leash_radius"`

	IsSocial   bool `yaml:"is_social"`
	CanFlee    bool `yaml:"can_flee"`
	IsRoamer   bool `yaml:"is_roamer"`
	Aggressive bool `yaml:"aggressive"`
}

// NPCSpawnPoint is an immutable per-zone placement loaded once at boot.
type NPCSpawnPoint struct {
	SpawnID                uint64  `yaml:"spawn_id"`
	TemplateID             uint64  `yaml:"template_id"`
	X                      float64 `yaml:"x"`
	Y                      float64 `yaml:"y"`
	Z                      float64 `yaml:"z"`
	Heading                float64 `yaml:"heading"`
	RespawnSeconds         int     `yaml:"respawn_seconds"`
	RespawnVarianceSeconds int     `yaml:"respawn_variance_seconds"`
	GroupTag               string  `yaml:"group_tag,omitempty"`
}

type npcTemplateFile struct {
	Templates []NPCTemplate `yaml:"templates"`
}

type npcSpawnFile struct {
	Spawns []NPCSpawnPoint `yaml:"spawns"`
}

// NPCRepo is the consumed NPC Template & Spawn Repository (§6.3).
type NPCRepo struct {
	log       *zap.Logger
	templates map[uint64]NPCTemplate
	spawns    map[uint64]NPCSpawnPoint
	spawnList []NPCSpawnPoint
}

func NewNPCRepo(log *zap.Logger) *NPCRepo {
	return &NPCRepo{
		log:       log,
		templates: make(map[uint64]NPCTemplate),
		spawns:    make(map[uint64]NPCSpawnPoint),
	}
}

// LoadTemplates loads the NPC template table from a YAML file.
func (r *NPCRepo) LoadTemplates(path string) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		r.log.Error("npc template load failed", zap.String("path", path), zap.Error(err))
		return false
	}
	var file npcTemplateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		r.log.Error("npc template parse failed", zap.String("path", path), zap.Error(err))
		return false
	}
	for _, t := range file.Templates {
		r.templates[t.TemplateID] = t
	}
	r.log.Info("loaded npc templates", zap.Int("count", len(file.Templates)))
	return true
}

// LoadZoneSpawns loads this zone's spawn points. A missing file is not
// fatal — a zone may legitimately have no spawns (§6.3).
func (r *NPCRepo) LoadZoneSpawns(path string) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.log.Warn("no spawn file for zone, continuing with zero spawns", zap.String("path", path))
			return true
		}
		r.log.Error("npc spawn load failed", zap.String("path", path), zap.Error(err))
		return false
	}
	var file npcSpawnFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		r.log.Error("npc spawn parse failed", zap.String("path", path), zap.Error(err))
		return false
	}
	for _, sp := range file.Spawns {
		r.spawns[sp.SpawnID] = sp
		r.spawnList = append(r.spawnList, sp)
	}
	r.log.Info("loaded npc spawn points", zap.Int("count", len(file.Spawns)))
	return true
}

func (r *NPCRepo) TemplateByID(id uint64) (NPCTemplate, bool) {
	t, ok := r.templates[id]
	return t, ok
}

func (r *NPCRepo) AllSpawns() []NPCSpawnPoint {
	return r.spawnList
}

func (r *NPCRepo) SpawnByID(id uint64) (NPCSpawnPoint, bool) {
	sp, ok := r.spawns[id]
	return sp, ok
}

func (r *NPCRepo) TemplateCount() int {
	return len(r.templates)
}

func (r *NPCRepo) String() string {
	return fmt.Sprintf("NPCRepo{templates=%d spawns=%d}", len(r.templates), len(r.spawnList))
}
