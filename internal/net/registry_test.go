package net

import (
	gonet "net"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/reqserver/zoneserver/internal/core/ecs"
)

func newTestSession(id ecs.EntityID) *Session {
	client, server := gonet.Pipe()
	_ = client
	return NewSession(server, id, 4, 4, zap.NewNop())
}

func TestConnectionRegistryAddAndLookup(t *testing.T) {
	r := NewConnectionRegistry()
	sess := newTestSession(1)

	r.Add(sess)
	assert.Equal(t, 1, r.Count())

	got, ok := r.Session(1)
	assert.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = r.Session(2)
	assert.False(t, ok)
}

func TestConnectionRegistryBindAndOwns(t *testing.T) {
	r := NewConnectionRegistry()
	sess := newTestSession(1)
	r.Add(sess)

	assert.False(t, r.Owns(1, 100))

	r.Bind(1, 100)
	assert.True(t, r.Owns(1, 100))
	assert.False(t, r.Owns(1, 200))

	got, ok := r.SessionForCharacter(100)
	assert.True(t, ok)
	assert.Same(t, sess, got)
}

func TestConnectionRegistryRemoveClearsCharacterBindingWhenOwner(t *testing.T) {
	r := NewConnectionRegistry()
	sess := newTestSession(1)
	sess.CharacterID.Store(100)
	r.Add(sess)
	r.Bind(1, 100)

	r.Remove(1)

	assert.Equal(t, 0, r.Count())
	_, ok := r.SessionForCharacter(100)
	assert.False(t, ok)
}

func TestConnectionRegistryRemoveLeavesOtherOwnersCharacterBindingAlone(t *testing.T) {
	r := NewConnectionRegistry()
	oldSess := newTestSession(1)
	oldSess.CharacterID.Store(100)
	newSess := newTestSession(2)
	newSess.CharacterID.Store(100)

	r.Add(oldSess)
	r.Bind(1, 100)
	// A reconnect rebinds the character to a new session id.
	r.Add(newSess)
	r.Bind(2, 100)

	// Removing the stale connection must not erase the new owner's binding.
	r.Remove(1)

	got, ok := r.SessionForCharacter(100)
	assert.True(t, ok)
	assert.Same(t, newSess, got)
}

func TestConnectionRegistryRemoveByCharacterKeepsConnectionRegistered(t *testing.T) {
	r := NewConnectionRegistry()
	sess := newTestSession(1)
	r.Add(sess)
	r.Bind(1, 100)

	r.RemoveByCharacter(100)

	_, ok := r.SessionForCharacter(100)
	assert.False(t, ok)
	_, ok = r.Session(1)
	assert.True(t, ok)
	assert.Equal(t, 1, r.Count())
}

func TestConnectionRegistryEachVisitsAllSessions(t *testing.T) {
	r := NewConnectionRegistry()
	r.Add(newTestSession(1))
	r.Add(newTestSession(2))
	r.Add(newTestSession(3))

	seen := map[ecs.EntityID]bool{}
	r.Each(func(s *Session) { seen[s.ID] = true })

	assert.Len(t, seen, 3)
}
