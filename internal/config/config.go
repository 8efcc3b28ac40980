package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the zone process's full configuration: file-backed defaults
// overlaid by CLI flags (§6.4).
type Config struct {
	Server      ServerConfig      `toml:"server"`
	World       WorldConfig       `toml:"world"`
	Network     NetworkConfig     `toml:"network"`
	Persistence PersistenceConfig `toml:"persistence"`
	Logging     LoggingConfig     `toml:"logging"`
}

type ServerConfig struct {
	WorldID   uint64 `toml:"world_id"`
	ZoneID    uint64 `toml:"zone_id"`
	ZoneName  string `toml:"zone_name"`
	StartTime int64  // set at boot, not from config
}

// WorldConfig is the spec's Zone Config: safe spawn, movement, interest
// filtering, and the tick rate.
type WorldConfig struct {
	SafeX   float64 `toml:"safe_x"`
	SafeY   float64 `toml:"safe_y"`
	SafeZ   float64 `toml:"safe_z"`
	SafeYaw float64 `toml:"safe_yaw"`

	MoveSpeed float64 `toml:"move_speed"` // world units/second

	BroadcastFullState bool    `toml:"broadcast_full_state"`
	InterestRadius     float64 `toml:"interest_radius"`
	DebugInterest      bool    `toml:"debug_interest"`

	TickRate            time.Duration `toml:"tick_rate"`
	AutosaveIntervalSec int           `toml:"autosave_interval_sec"`

	TemplatesPath  string `toml:"templates_path"`
	SpawnsPath     string `toml:"spawns_path"`
	XPTablePath    string `toml:"xp_table_path"`
	WorldRulesPath string `toml:"world_rules_path"`
}

type NetworkConfig struct {
	BindAddress       string        `toml:"bind_address"`
	InQueueSize       int           `toml:"in_queue_size"`
	OutQueueSize      int           `toml:"out_queue_size"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	MaxPacketsPerTick int           `toml:"max_packets_per_tick"`
}

type PersistenceConfig struct {
	CharactersDir string `toml:"characters_dir"`
	SessionsPath  string `toml:"sessions_path"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML file over compiled-in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// ApplyFlags overlays CLI flags onto a loaded config (§6.4). Unset flags
// fall back to whatever Load already populated.
func (c *Config) ApplyFlags(fs *flag.FlagSet, args []string) error {
	worldID := fs.Uint64("world_id", c.Server.WorldID, "world id")
	zoneID := fs.Uint64("zone_id", c.Server.ZoneID, "zone id")
	zoneName := fs.String("zone_name", c.Server.ZoneName, "zone name")
	address := fs.String("address", c.Network.BindAddress, "bind address")
	port := fs.Uint("port", 0, "bind port, overrides the port in --address when non-zero")

	if err := fs.Parse(args); err != nil {
		return err
	}

	c.Server.WorldID = *worldID
	c.Server.ZoneID = *zoneID
	c.Server.ZoneName = *zoneName
	c.Network.BindAddress = *address
	if *port != 0 {
		c.Network.BindAddress = fmt.Sprintf(":%d", *port)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			WorldID:  1,
			ZoneID:   1,
			ZoneName: "Talking Island",
		},
		World: WorldConfig{
			SafeX: 0, SafeY: 0, SafeZ: 0, SafeYaw: 0,
			MoveSpeed:           70,
			BroadcastFullState:  false,
			InterestRadius:      100,
			DebugInterest:       false,
			TickRate:            50 * time.Millisecond,
			AutosaveIntervalSec: 60,
			TemplatesPath:       "config/npc_templates.yaml",
			SpawnsPath:          "config/npc_spawns.yaml",
			XPTablePath:         "config/xp_table.yaml",
			WorldRulesPath:      "config/world_rules_default.yaml",
		},
		Network: NetworkConfig{
			BindAddress:       "0.0.0.0:7777",
			InQueueSize:       128,
			OutQueueSize:      256,
			WriteTimeout:      10 * time.Second,
			MaxPacketsPerTick: 32,
		},
		Persistence: PersistenceConfig{
			CharactersDir: "data/characters",
			SessionsPath:  "data/sessions.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
