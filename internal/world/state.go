package world

import (
	"math"
	"time"

	"github.com/reqserver/zoneserver/internal/core/ecs"
)

// State owns the authoritative sets of players, NPCs, and corpses for one
// zone. Accessed only from the tick goroutine — no locks (§5).
type State struct {
	players   map[uint64]*Player // character_id -> Player
	playerAOI *AOIGrid

	npcs    map[uint64]*NPC // npc_id -> NPC
	npcList []*NPC          // stable iteration order for tick systems
	npcAOI  *AOIGrid

	corpses map[uint64]*Corpse

	snapshotID uint64
}

func NewState() *State {
	return &State{
		players:   make(map[uint64]*Player),
		playerAOI: NewAOIGrid(),
		npcs:      make(map[uint64]*NPC),
		npcAOI:    NewAOIGrid(),
		corpses:   make(map[uint64]*Corpse),
	}
}

// --- Players ---

// AddPlayer registers a player as present in the zone (§4.1 step 6).
func (s *State) AddPlayer(p *Player) {
	s.players[p.CharacterID] = p
	s.playerAOI.Add(p.CharacterID, p.X, p.Y)
}

// RemovePlayer erases a player from Zone State (§4.10 step 4). Idempotent:
// removing twice leaves state unchanged after the first call.
func (s *State) RemovePlayer(characterID uint64) *Player {
	p, ok := s.players[characterID]
	if !ok {
		return nil
	}
	s.playerAOI.Remove(characterID, p.X, p.Y)
	delete(s.players, characterID)
	return p
}

func (s *State) GetPlayer(characterID uint64) *Player {
	return s.players[characterID]
}

// GetPlayerBySession scans bound sessions; used rarely (disconnect path
// already carries the character id via the connection registry in the
// common case).
func (s *State) GetPlayerBySession(sessionID ecs.EntityID) *Player {
	for _, p := range s.players {
		if p.SessionID == sessionID {
			return p
		}
	}
	return nil
}

// UpdatePlayerPosition moves a player and keeps the AOI grid in sync. All
// position writes driven by simulation must go through here.
func (s *State) UpdatePlayerPosition(characterID uint64, x, y, z float64) {
	p := s.players[characterID]
	if p == nil {
		return
	}
	oldX, oldY := p.X, p.Y
	p.X, p.Y, p.Z = x, y, z
	s.playerAOI.Move(characterID, oldX, oldY, x, y)
}

// GetNearbyPlayers returns every other player within radius (2D, XY plane)
// of (x,y), excluding excludeCharacterID. Used by the NPC aggro-radius
// player search (§4.5).
func (s *State) GetNearbyPlayers(x, y float64, radius float64, excludeCharacterID uint64) []*Player {
	candidates := s.playerAOI.GetNearby(x, y, radius)
	result := make([]*Player, 0, len(candidates))
	for _, charID := range candidates {
		if charID == excludeCharacterID {
			continue
		}
		p := s.players[charID]
		if p == nil {
			continue
		}
		if math.Hypot(p.X-x, p.Y-y) <= radius {
			result = append(result, p)
		}
	}
	return result
}

func (s *State) AllPlayers(fn func(*Player)) {
	for _, p := range s.players {
		fn(p)
	}
}

func (s *State) PlayerCount() int {
	return len(s.players)
}

// --- NPCs ---

func (s *State) AddNPC(n *NPC) {
	s.npcs[n.NPCID] = n
	s.npcList = append(s.npcList, n)
	s.npcAOI.Add(n.NPCID, n.X, n.Y)
}

func (s *State) GetNPC(npcID uint64) *NPC {
	return s.npcs[npcID]
}

func (s *State) NPCList() []*NPC {
	return s.npcList
}

func (s *State) NPCCount() int {
	return len(s.npcs)
}

// UpdateNPCPosition moves an NPC and keeps the NPC AOI grid in sync.
func (s *State) UpdateNPCPosition(npcID uint64, x, y, z float64) {
	n := s.npcs[npcID]
	if n == nil {
		return
	}
	oldX, oldY := n.X, n.Y
	n.X, n.Y, n.Z = x, y, z
	s.npcAOI.Move(npcID, oldX, oldY, x, y)
}

// GetNearbyNPCs returns every living NPC within radius (2D) of (x,y).
func (s *State) GetNearbyNPCs(x, y float64, radius float64) []*NPC {
	candidates := s.npcAOI.GetNearby(x, y, radius)
	result := make([]*NPC, 0, len(candidates))
	for _, id := range candidates {
		n := s.npcs[id]
		if n == nil || n.Dead {
			continue
		}
		if math.Hypot(n.X-x, n.Y-y) <= radius {
			result = append(result, n)
		}
	}
	return result
}

// RemoveHateEverywhere purges a departing character from every NPC's hate
// table (§4.10 step 2, §9 "cyclic references in hate tables").
func (s *State) RemoveHateEverywhere(characterID uint64) {
	for _, n := range s.npcList {
		n.RemoveHateTarget(characterID)
	}
}

// --- Corpses ---

func (s *State) AddCorpse(c *Corpse) {
	s.corpses[c.CorpseID] = c
}

func (s *State) GetCorpse(corpseID uint64) *Corpse {
	return s.corpses[corpseID]
}

func (s *State) CorpseCount() int {
	return len(s.corpses)
}

// SweepExpiredCorpses removes every corpse whose decay timer has elapsed
// (§4.7, invariant I6). Returns the removed corpses.
func (s *State) SweepExpiredCorpses(now time.Time) []*Corpse {
	var expired []*Corpse
	for id, c := range s.corpses {
		if c.Expired(now) {
			expired = append(expired, c)
			delete(s.corpses, id)
		}
	}
	return expired
}

// NextSnapshotID returns a strictly increasing id for the next
// PlayerStateSnapshot (invariant I4).
func (s *State) NextSnapshotID() uint64 {
	s.snapshotID++
	return s.snapshotID
}
