package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reqserver/zoneserver/internal/component"
	"github.com/reqserver/zoneserver/internal/config"
	gonet "github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/persist"
	"github.com/reqserver/zoneserver/internal/world"
)

func newRemovalTestFixture(t *testing.T) *Deps {
	t.Helper()
	return &Deps{
		Config:   &config.Config{Server: config.ServerConfig{WorldID: 1, ZoneID: 1}},
		World:    world.NewState(),
		Conns:    gonet.NewConnectionRegistry(),
		CharRepo: persist.NewCharacterRepo(t.TempDir(), zap.NewNop()),
		Log:      zap.NewNop(),
	}
}

func TestRemovePlayerSavesFinalPositionAndStats(t *testing.T) {
	deps := newRemovalTestFixture(t)
	require.True(t, deps.CharRepo.Save(&component.Character{CharacterID: 1}))

	p := world.NewPlayer(1, 1, "Hero")
	p.X, p.Y, p.Z = 5, 6, 7
	p.Level, p.XP = 3, 400
	deps.World.AddPlayer(p)

	RemovePlayer(deps, 1)

	c := deps.CharRepo.LoadByID(1)
	require.NotNil(t, c)
	assert.Equal(t, 5.0, c.X)
	assert.Equal(t, int32(3), c.Level)
	assert.Nil(t, deps.World.GetPlayer(1))
}

func TestRemovePlayerIsIdempotentAcrossCalls(t *testing.T) {
	deps := newRemovalTestFixture(t)
	require.True(t, deps.CharRepo.Save(&component.Character{CharacterID: 1}))
	p := world.NewPlayer(1, 1, "Hero")
	deps.World.AddPlayer(p)

	RemovePlayer(deps, 1)
	assert.NotPanics(t, func() { RemovePlayer(deps, 1) })
	assert.Nil(t, deps.World.GetPlayer(1))
}

func TestRemovePlayerPurgesHateAndConnectionBinding(t *testing.T) {
	deps := newRemovalTestFixture(t)
	require.True(t, deps.CharRepo.Save(&component.Character{CharacterID: 1}))
	p := world.NewPlayer(1, 1, "Hero")
	deps.World.AddPlayer(p)

	n := world.NewNPC(1, 1, 0, 0, 0)
	n.AddHate(1, 50)
	deps.World.AddNPC(n)

	RemovePlayer(deps, 1)

	assert.Equal(t, int32(0), n.GetTotalHate())
	assert.False(t, deps.Conns.Owns(0, 1))
}

func TestRemovePlayerToleratesMissingCharacterRecord(t *testing.T) {
	deps := newRemovalTestFixture(t)
	p := world.NewPlayer(1, 1, "Hero")
	deps.World.AddPlayer(p)

	assert.NotPanics(t, func() { RemovePlayer(deps, 1) })
}
