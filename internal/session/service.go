// Package session implements the Session Service consumed interface
// (§6.3): a process-wide singleton, in the source system, that validates
// handoff tokens and exposes a reload-from-file hook. Per §9's design
// note, it is built here as a passed-in value (NewService, then Configure)
// rather than a package-level global. It has no teardown or save-to-file
// method: the cache is only ever read from disk, never written back.
package session

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Record is what the Session Service hands back for a validated token.
// The handoff token itself is only stub-validated per spec §9's open
// question — cross-zone expiry/single-use semantics are out of scope here.
type Record struct {
	Token       uint64 `json:"token"`
	CharacterID uint64 `json:"character_id"`
	AccountID   uint64 `json:"account_id"`
	WorldID     uint64 `json:"world_id"`
}

// Service validates handoff tokens against a session cache file shared
// with the world gate (§6.5: data/sessions.json). It has its own mutex so
// concurrent goroutines in this process never race a reload.
type Service struct {
	mu       sync.Mutex
	path     string
	log      *zap.Logger
	sessions map[uint64]Record
}

func NewService(path string, log *zap.Logger) *Service {
	return &Service{path: path, log: log, sessions: make(map[uint64]Record)}
}

// Configure loads the session cache for the first time. Safe to call
// again to point at a different path.
func (s *Service) Configure(path string) bool {
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
	return s.ReloadFromFile()
}

// ReloadFromFile reloads the session cache from disk. A missing file
// yields an empty cache rather than an error — a freshly started world
// gate may not have issued any handoffs yet.
func (s *Service) ReloadFromFile() bool {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.sessions = make(map[uint64]Record)
			s.mu.Unlock()
			return true
		}
		s.log.Error("session cache load failed", zap.String("path", s.path), zap.Error(err))
		return false
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		s.log.Error("session cache parse failed", zap.String("path", s.path), zap.Error(err))
		return false
	}

	byToken := make(map[uint64]Record, len(records))
	for _, r := range records {
		byToken[r.Token] = r
	}

	s.mu.Lock()
	s.sessions = byToken
	s.mu.Unlock()
	return true
}

// Validate looks up a handoff token, reloading once on a cache miss in
// case another process (the world gate) wrote a newer session file.
func (s *Service) Validate(token uint64) (Record, bool) {
	s.mu.Lock()
	rec, ok := s.sessions[token]
	s.mu.Unlock()
	if ok {
		return rec, true
	}

	if !s.ReloadFromFile() {
		return Record{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok = s.sessions[token]
	return rec, ok
}

// BindToWorld sets the world id on a known token's cached record (§4.1
// step 3). Only the in-memory cache changes: nothing is written to the
// session file, and the next ReloadFromFile replaces the record.
func (s *Service) BindToWorld(token uint64, worldID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[token]
	if !ok {
		return
	}
	rec.WorldID = worldID
	s.sessions[token] = rec
}
