package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reqserver/zoneserver/internal/component"
	"github.com/reqserver/zoneserver/internal/persist"
	"github.com/reqserver/zoneserver/internal/world"
)

func TestPersistenceSystemSkipsCleanPlayers(t *testing.T) {
	ws := world.NewState()
	repo := persist.NewCharacterRepo(t.TempDir(), zap.NewNop())
	sys := NewPersistenceSystem(ws, repo, 60, zap.NewNop())

	p := world.NewPlayer(1, 1, "Hero")
	ws.AddPlayer(p)

	sys.Update(61 * time.Second)
	assert.Nil(t, repo.LoadByID(1))
}

func TestPersistenceSystemSavesDirtyPlayersAtInterval(t *testing.T) {
	ws := world.NewState()
	repo := persist.NewCharacterRepo(t.TempDir(), zap.NewNop())
	require.True(t, repo.Save(&component.Character{CharacterID: 1}))
	sys := NewPersistenceSystem(ws, repo, 60, zap.NewNop())

	p := world.NewPlayer(1, 1, "Hero")
	p.X = 42
	p.Dirty = true
	ws.AddPlayer(p)

	sys.Update(30 * time.Second) // below interval, no save yet
	assert.True(t, p.Dirty)
	saved := repo.LoadByID(1)
	require.NotNil(t, saved)
	assert.NotEqual(t, 42.0, saved.X)

	sys.Update(40 * time.Second) // crosses the 60s interval cumulatively
	saved = repo.LoadByID(1)
	assert.Equal(t, 42.0, saved.X)
	assert.False(t, p.Dirty)
}

func TestPersistenceSystemSaveAllIgnoresDirtyFlag(t *testing.T) {
	ws := world.NewState()
	repo := persist.NewCharacterRepo(t.TempDir(), zap.NewNop())
	require.True(t, repo.Save(&component.Character{CharacterID: 1}))
	sys := NewPersistenceSystem(ws, repo, 60, zap.NewNop())

	p := world.NewPlayer(1, 1, "Hero")
	p.X = 99
	p.Dirty = false
	ws.AddPlayer(p)

	sys.SaveAll()

	saved := repo.LoadByID(1)
	require.NotNil(t, saved)
	assert.Equal(t, 99.0, saved.X)
}
