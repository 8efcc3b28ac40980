package net

import (
	gonet "net"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/reqserver/zoneserver/internal/net/packet"
)

func TestSessionSendQueuesFrameWhenSpaceAvailable(t *testing.T) {
	client, server := gonet.Pipe()
	defer client.Close()
	sess := NewSession(server, 1, 4, 4, zap.NewNop())

	sess.Send(packet.TypeAttackResult, []byte("hi"))

	select {
	case frame := <-sess.OutQueue:
		assert.Equal(t, packet.TypeAttackResult, frame.Header.Type)
		assert.Equal(t, []byte("hi"), frame.Payload)
	default:
		t.Fatal("expected frame on OutQueue")
	}
}

func TestSessionSendDisconnectsOnFullQueue(t *testing.T) {
	client, server := gonet.Pipe()
	defer client.Close()
	sess := NewSession(server, 1, 1, 1, zap.NewNop())

	sess.Send(packet.TypeAttackResult, []byte("a")) // fills the single-slot queue
	assert.False(t, sess.IsClosed())

	sess.Send(packet.TypeAttackResult, []byte("b")) // queue full, drop-and-disconnect
	assert.True(t, sess.IsClosed())
}

func TestSessionSendAfterCloseIsNoop(t *testing.T) {
	client, server := gonet.Pipe()
	defer client.Close()
	sess := NewSession(server, 1, 4, 4, zap.NewNop())

	sess.Close()
	sess.Send(packet.TypeAttackResult, []byte("ignored"))

	assert.Len(t, sess.OutQueue, 0)
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	client, server := gonet.Pipe()
	defer client.Close()
	sess := NewSession(server, 1, 4, 4, zap.NewNop())

	assert.NotPanics(t, func() {
		sess.Close()
		sess.Close()
	})
	assert.True(t, sess.IsClosed())
}
