package handler

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reqserver/zoneserver/internal/core/ecs"
	gonet "github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
	"github.com/reqserver/zoneserver/internal/world"
)

type fakeCombatQueue struct {
	queued []AttackRequest
}

func (q *fakeCombatQueue) QueueAttack(req AttackRequest) {
	q.queued = append(q.queued, req)
}

func newAttackTestFixture(t *testing.T) (*Deps, *gonet.Session, *fakeCombatQueue) {
	t.Helper()
	queue := &fakeCombatQueue{}
	deps := &Deps{
		World:  world.NewState(),
		Conns:  gonet.NewConnectionRegistry(),
		Combat: queue,
		Log:    zap.NewNop(),
	}
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close(); serverConn.Close() })
	sess := gonet.NewSession(serverConn, ecs.NewEntityID(1, 0), 4, 4, zap.NewNop())
	deps.Conns.Add(sess)
	return deps, sess, queue
}

func attackPayload(attackerID, targetID, abilityID uint64, basic bool) []byte {
	return packet.NewFieldWriter().Uint64(attackerID).Uint64(targetID).Uint64(abilityID).Bool(basic).Bytes()
}

func TestHandleAttackRequestQueuesValidAttack(t *testing.T) {
	deps, sess, queue := newAttackTestFixture(t)
	deps.Conns.Bind(sess.ID, 1)
	target := world.NewNPC(1, 1, 0, 0, 0)
	deps.World.AddNPC(target)

	HandleAttackRequest(deps, sess, attackPayload(1, target.NPCID, 0, true))

	require.Len(t, queue.queued, 1)
	assert.Equal(t, uint64(1), queue.queued[0].AttackerCharacterID)
	assert.Equal(t, target.NPCID, queue.queued[0].TargetNPCID)
}

func TestHandleAttackRequestRejectsNonOwningSession(t *testing.T) {
	deps, sess, queue := newAttackTestFixture(t)
	target := world.NewNPC(1, 1, 0, 0, 0)
	deps.World.AddNPC(target)
	// sess is not bound to character 1.

	HandleAttackRequest(deps, sess, attackPayload(1, target.NPCID, 0, true))

	assert.Empty(t, queue.queued)
	frame := <-sess.OutQueue
	r := packet.NewFieldReader(frame.Payload)
	r.Uint64()
	r.Uint64()
	r.Int64()
	r.Bool()
	r.Int64()
	assert.Equal(t, 2, r.Int())
}

func TestHandleAttackRequestRejectsInvalidTarget(t *testing.T) {
	deps, sess, queue := newAttackTestFixture(t)
	deps.Conns.Bind(sess.ID, 1)

	HandleAttackRequest(deps, sess, attackPayload(1, 999, 0, true))

	assert.Empty(t, queue.queued)
	frame := <-sess.OutQueue
	assert.Contains(t, string(frame.Payload), "invalid target")
}

func TestHandleAttackRequestRejectsDeadTarget(t *testing.T) {
	deps, sess, queue := newAttackTestFixture(t)
	deps.Conns.Bind(sess.ID, 1)
	target := world.NewNPC(1, 1, 0, 0, 0)
	target.Dead = true
	deps.World.AddNPC(target)

	HandleAttackRequest(deps, sess, attackPayload(1, target.NPCID, 0, true))

	assert.Empty(t, queue.queued)
	frame := <-sess.OutQueue
	assert.Contains(t, string(frame.Payload), "already dead")
}
