package persist

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reqserver/zoneserver/internal/component"
)

func TestCharacterRepoSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo := NewCharacterRepo(dir, zap.NewNop())

	c := &component.Character{
		CharacterID: 42,
		AccountID:   7,
		Name:        "Tester",
		Level:       10,
		XP:          5000,
		HP:          100,
		MaxHP:       100,
		X:           12.5,
		Y:           -3.25,
		Z:           0,
		LastZoneID:  10,
	}

	require.True(t, repo.Save(c))

	loaded := repo.LoadByID(42)
	require.NotNil(t, loaded)
	assert.Equal(t, c.CharacterID, loaded.CharacterID)
	assert.Equal(t, c.Name, loaded.Name)
	assert.Equal(t, c.Level, loaded.Level)
	assert.Equal(t, c.XP, loaded.XP)
	assert.Equal(t, c.X, loaded.X)
	assert.Equal(t, c.LastZoneID, loaded.LastZoneID)
}

func TestCharacterRepoMissingRecordIsNilNotPanic(t *testing.T) {
	dir := t.TempDir()
	repo := NewCharacterRepo(dir, zap.NewNop())
	assert.Nil(t, repo.LoadByID(9999))
}

func TestCharacterRepoCorruptRecordIsNilNotPanic(t *testing.T) {
	dir := t.TempDir()
	repo := NewCharacterRepo(dir, zap.NewNop())

	c := &component.Character{CharacterID: 1}
	require.True(t, repo.Save(c))

	// Corrupt the file after saving.
	require.NoError(t, os.WriteFile(repo.path(1), []byte("not json"), 0o644))

	assert.Nil(t, repo.LoadByID(1))
}
