package handler

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reqserver/zoneserver/internal/component"
	"github.com/reqserver/zoneserver/internal/config"
	"github.com/reqserver/zoneserver/internal/core/ecs"
	gonet "github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
	"github.com/reqserver/zoneserver/internal/persist"
	"github.com/reqserver/zoneserver/internal/session"
	"github.com/reqserver/zoneserver/internal/world"
)

func newAuthTestFixture(t *testing.T) (*Deps, *gonet.Session, *persist.CharacterRepo) {
	t.Helper()
	charRepo := persist.NewCharacterRepo(t.TempDir(), zap.NewNop())
	sessSvc := session.NewService(t.TempDir()+"/sessions.json", zap.NewNop())
	require.True(t, sessSvc.ReloadFromFile())

	deps := &Deps{
		Config: &config.Config{
			Server: config.ServerConfig{WorldID: 1, ZoneID: 1, ZoneName: "Test Zone"},
			World:  config.WorldConfig{SafeX: 1, SafeY: 2, SafeZ: 3},
		},
		World:    world.NewState(),
		Conns:    gonet.NewConnectionRegistry(),
		CharRepo: charRepo,
		Sessions: sessSvc,
		Log:      zap.NewNop(),
	}

	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close(); serverConn.Close() })
	sess := gonet.NewSession(serverConn, ecs.NewEntityID(1, 0), 4, 4, zap.NewNop())
	deps.Conns.Add(sess)

	return deps, sess, charRepo
}

func TestHandleZoneAuthRequestRejectsZeroHandoffToken(t *testing.T) {
	deps, sess, _ := newAuthTestFixture(t)

	payload := packet.NewFieldWriter().Uint64(0).Uint64(5).Bytes()
	HandleZoneAuthRequest(deps, sess, payload)

	frame := <-sess.OutQueue
	assert.Equal(t, packet.TypeZoneAuthResponse, frame.Header.Type)
	assert.Contains(t, string(frame.Payload), "ERR|"+ErrInvalidHandoff)
}

func TestHandleZoneAuthRequestRejectsUnknownCharacter(t *testing.T) {
	deps, sess, _ := newAuthTestFixture(t)

	payload := packet.NewFieldWriter().Uint64(555).Uint64(9999).Bytes()
	HandleZoneAuthRequest(deps, sess, payload)

	frame := <-sess.OutQueue
	assert.Contains(t, string(frame.Payload), "ERR|"+ErrCharacterNotFound)
}

func TestHandleZoneAuthRequestHappyPathSpawnsAtSafePoint(t *testing.T) {
	deps, sess, charRepo := newAuthTestFixture(t)

	char := &component.Character{CharacterID: 42, AccountID: 1, Name: "Hero", Level: 1, MaxHP: 100, HP: 100}
	require.True(t, charRepo.Save(char))

	payload := packet.NewFieldWriter().Uint64(555).Uint64(42).Bytes()
	HandleZoneAuthRequest(deps, sess, payload)

	frame := <-sess.OutQueue
	assert.Contains(t, string(frame.Payload), "OK|")

	p := deps.World.GetPlayer(42)
	require.NotNil(t, p)
	assert.True(t, p.Initialized)
	assert.Equal(t, 1.0, p.X)
	assert.Equal(t, 2.0, p.Y)
	assert.Equal(t, 3.0, p.Z)
	assert.True(t, deps.Conns.Owns(sess.ID, 42))
	assert.Equal(t, uint64(42), sess.CharacterID.Load())
}

func TestHandleZoneAuthRequestRestoresLastZonePosition(t *testing.T) {
	deps, sess, charRepo := newAuthTestFixture(t)

	char := &component.Character{
		CharacterID: 7, AccountID: 1, Name: "Hero", MaxHP: 100, HP: 100,
		LastZoneID: 1, X: 50, Y: 60, Z: 70,
	}
	require.True(t, charRepo.Save(char))

	payload := packet.NewFieldWriter().Uint64(555).Uint64(7).Bytes()
	HandleZoneAuthRequest(deps, sess, payload)
	<-sess.OutQueue

	p := deps.World.GetPlayer(7)
	require.NotNil(t, p)
	assert.Equal(t, 50.0, p.X)
	assert.Equal(t, 60.0, p.Y)
	assert.Equal(t, 70.0, p.Z)
}

func TestHandleZoneAuthRequestReconnectReplacesExistingSession(t *testing.T) {
	deps, sess, charRepo := newAuthTestFixture(t)
	char := &component.Character{CharacterID: 42, AccountID: 1, Name: "Hero", MaxHP: 100, HP: 100}
	require.True(t, charRepo.Save(char))

	payload := packet.NewFieldWriter().Uint64(555).Uint64(42).Bytes()
	HandleZoneAuthRequest(deps, sess, payload)
	<-sess.OutQueue

	clientConn2, serverConn2 := net.Pipe()
	t.Cleanup(func() { clientConn2.Close(); serverConn2.Close() })
	sess2 := gonet.NewSession(serverConn2, ecs.NewEntityID(2, 0), 4, 4, zap.NewNop())
	deps.Conns.Add(sess2)

	HandleZoneAuthRequest(deps, sess2, payload)
	<-sess2.OutQueue

	assert.Equal(t, 1, deps.World.PlayerCount())
	assert.True(t, deps.Conns.Owns(sess2.ID, 42))
	assert.False(t, deps.Conns.Owns(sess.ID, 42))
}
