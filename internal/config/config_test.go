package config

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zone.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
world_id = 3
zone_id = 12
zone_name = "Dragon Valley"

[network]
bind_address = "0.0.0.0:9999"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), cfg.Server.WorldID)
	assert.Equal(t, uint64(12), cfg.Server.ZoneID)
	assert.Equal(t, "Dragon Valley", cfg.Server.ZoneName)
	assert.Equal(t, "0.0.0.0:9999", cfg.Network.BindAddress)
	// Fields absent from the file keep their compiled-in defaults.
	assert.Equal(t, 50*time.Millisecond, cfg.World.TickRate)
	assert.Equal(t, 32, cfg.Network.MaxPacketsPerTick)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyFlagsOverridesLoadedValues(t *testing.T) {
	cfg := defaults()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)

	err := cfg.ApplyFlags(fs, []string{"--world_id=9", "--zone_name=Ivory Tower"})
	require.NoError(t, err)

	assert.Equal(t, uint64(9), cfg.Server.WorldID)
	assert.Equal(t, "Ivory Tower", cfg.Server.ZoneName)
}

func TestApplyFlagsPortOverridesBindAddress(t *testing.T) {
	cfg := defaults()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)

	err := cfg.ApplyFlags(fs, []string{"--port=8080"})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Network.BindAddress)
}

func TestApplyFlagsZeroPortLeavesBindAddressUntouched(t *testing.T) {
	cfg := defaults()
	cfg.Network.BindAddress = "1.2.3.4:7777"
	fs := flag.NewFlagSet("test", flag.ContinueOnError)

	err := cfg.ApplyFlags(fs, []string{})
	require.NoError(t, err)

	assert.Equal(t, "1.2.3.4:7777", cfg.Network.BindAddress)
}

// TestApplyFlagsWorldAndZoneIDRoundTripProperty checks that any world/zone
// id pair survives a flag round trip unchanged.
func TestApplyFlagsWorldAndZoneIDRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		worldID := rapid.Uint64Range(0, 1_000_000).Draw(t, "worldID")
		zoneID := rapid.Uint64Range(0, 1_000_000).Draw(t, "zoneID")

		cfg := defaults()
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		err := cfg.ApplyFlags(fs, []string{
			"--world_id=" + strconv.FormatUint(worldID, 10),
			"--zone_id=" + strconv.FormatUint(zoneID, 10),
		})
		require.NoError(t, err)

		assert.Equal(t, worldID, cfg.Server.WorldID)
		assert.Equal(t, zoneID, cfg.Server.ZoneID)
	})
}
