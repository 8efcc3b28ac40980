package system

import (
	stdnet "net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reqserver/zoneserver/internal/component"
	"github.com/reqserver/zoneserver/internal/config"
	"github.com/reqserver/zoneserver/internal/core/ecs"
	"github.com/reqserver/zoneserver/internal/handler"
	gonet "github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
	"github.com/reqserver/zoneserver/internal/persist"
	"github.com/reqserver/zoneserver/internal/world"
)

func newInputTestFixture(t *testing.T) (*gonet.Server, *InputSystem, *handler.Deps) {
	t.Helper()
	srv, err := gonet.NewServer("127.0.0.1:0", 8, 8, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(srv.Shutdown)
	go srv.AcceptLoop()

	deps := &handler.Deps{
		Config:   &config.Config{Server: config.ServerConfig{WorldID: 1, ZoneID: 1}},
		World:    world.NewState(),
		Conns:    gonet.NewConnectionRegistry(),
		CharRepo: persist.NewCharacterRepo(t.TempDir(), zap.NewNop()),
		Log:      zap.NewNop(),
	}
	reg := packet.NewRegistry(zap.NewNop())
	sys := NewInputSystem(srv, reg, deps.Conns, deps, 8, zap.NewNop())
	return srv, sys, deps
}

func TestInputSystemRegistersNewSessions(t *testing.T) {
	srv, sys, deps := newInputTestFixture(t)

	conn, err := stdnet.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		sys.Update(50 * time.Millisecond)
		return deps.Conns.Count() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestInputSystemRemovesPlayerOnDisconnect(t *testing.T) {
	srv, sys, deps := newInputTestFixture(t)

	conn, err := stdnet.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		sys.Update(50 * time.Millisecond)
		return deps.Conns.Count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.True(t, deps.CharRepo.Save(&component.Character{CharacterID: 7}))
	p := world.NewPlayer(7, 1, "Hero")
	deps.World.AddPlayer(p)

	var sessionID ecs.EntityID
	deps.Conns.Each(func(s *gonet.Session) {
		sessionID = s.ID
		s.CharacterID.Store(7)
	})
	deps.Conns.Bind(sessionID, 7)

	conn.Close() // triggers a read error on the server side, closing the session

	require.Eventually(t, func() bool {
		sys.Update(50 * time.Millisecond)
		return deps.World.GetPlayer(7) == nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, deps.Conns.Count())
}
