package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/reqserver/zoneserver/internal/world"
)

func TestCleanupSystemSweepsExpiredCorpsesOncePerSecond(t *testing.T) {
	ws := world.NewState()
	sys := NewCleanupSystem(ws, zap.NewNop())

	expired := world.NewCorpse(1, 1, 1, 0, 0, 0, time.Now().Add(-time.Hour), time.Minute)
	ws.AddCorpse(expired)

	sys.Update(500 * time.Millisecond) // below the 1s sweep interval
	assert.Equal(t, 1, ws.CorpseCount())

	sys.Update(600 * time.Millisecond) // crosses the interval
	assert.Equal(t, 0, ws.CorpseCount())
}

func TestCleanupSystemLeavesFreshCorpses(t *testing.T) {
	ws := world.NewState()
	sys := NewCleanupSystem(ws, zap.NewNop())

	fresh := world.NewCorpse(1, 1, 1, 0, 0, 0, time.Now(), time.Hour)
	ws.AddCorpse(fresh)

	sys.Update(2 * time.Second)
	assert.Equal(t, 1, ws.CorpseCount())
}
