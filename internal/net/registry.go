package net

import (
	"sync"

	"github.com/reqserver/zoneserver/internal/core/ecs"
)

// ConnectionRegistry is the arena described in §9: it maps connection ids to
// live sessions and, once a session completes the handshake, the bound
// character id back to its session. Every handler that wants to touch a
// player's connection goes through here instead of holding a *Session
// directly, so a disconnect-then-reconnect can never operate on a stale
// connection.
//
// In this zone every call comes from the tick goroutine (InputSystem does
// Add/Remove); the maps are still guarded by a mutex.
type ConnectionRegistry struct {
	mu       sync.RWMutex
	sessions map[ecs.EntityID]*Session
	byCharID map[uint64]ecs.EntityID
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		sessions: make(map[ecs.EntityID]*Session),
		byCharID: make(map[uint64]ecs.EntityID),
	}
}

// Add registers a freshly accepted session before it has a bound character.
func (r *ConnectionRegistry) Add(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = sess
}

// Bind records that sessionID now owns characterID, completing the
// handshake (§4.1). It replaces any earlier binding for that character: a
// previously bound session stays registered but no longer owns it.
func (r *ConnectionRegistry) Bind(sessionID ecs.EntityID, characterID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCharID[characterID] = sessionID
}

// Remove tears down a session's registry entries (§4.10 player removal).
func (r *ConnectionRegistry) Remove(sessionID ecs.EntityID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	if charID := sess.CharacterID.Load(); charID != 0 {
		if bound, ok := r.byCharID[charID]; ok && bound == sessionID {
			delete(r.byCharID, charID)
		}
	}
	delete(r.sessions, sessionID)
}

// RemoveByCharacter erases only the character↔session mapping, leaving
// the connection itself registered. Used by Player Removal (§4.10 step 3)
// when the connection is being reused (reconnect) rather than torn down.
func (r *ConnectionRegistry) RemoveByCharacter(characterID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byCharID, characterID)
}

// Session looks up a connection by its stable id.
func (r *ConnectionRegistry) Session(sessionID ecs.EntityID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sessionID]
	return sess, ok
}

// SessionForCharacter returns the session currently bound to a character, if
// any. Used by the snapshot emitter (§4.9) to resolve a per-recipient send.
func (r *ConnectionRegistry) SessionForCharacter(characterID uint64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCharID[characterID]
	if !ok {
		return nil, false
	}
	sess, ok := r.sessions[id]
	return sess, ok
}

// Owns reports whether sessionID is the connection currently bound to
// characterID — the ownership check behind invariant I3.
func (r *ConnectionRegistry) Owns(sessionID ecs.EntityID, characterID uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bound, ok := r.byCharID[characterID]
	return ok && bound == sessionID
}

// Each calls fn for every currently registered session. fn must not call
// back into the registry.
func (r *ConnectionRegistry) Each(fn func(*Session)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sess := range r.sessions {
		fn(sess)
	}
}

func (r *ConnectionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
