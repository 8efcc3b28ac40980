package system

import (
	"time"

	"github.com/reqserver/zoneserver/internal/core/ecs"
	coresys "github.com/reqserver/zoneserver/internal/core/system"
	"github.com/reqserver/zoneserver/internal/handler"
	"github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
	"go.uber.org/zap"
)

// InputSystem drains the accept loop's new-session channel, runs removal
// for sessions that report IsClosed, and drains each session's inbound
// frame queue, dispatching through the packet registry. Phase 0 (Input).
type InputSystem struct {
	netServer  *net.Server
	registry   *packet.Registry
	conns      *net.ConnectionRegistry
	deps       *handler.Deps
	sessions   map[ecs.EntityID]*net.Session
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(netServer *net.Server, registry *packet.Registry, conns *net.ConnectionRegistry, deps *handler.Deps, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		netServer:  netServer,
		registry:   registry,
		conns:      conns,
		deps:       deps,
		sessions:   make(map[ecs.EntityID]*net.Session),
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.sessions[sess.ID] = sess
			s.conns.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	for id, sess := range s.sessions {
		if sess.IsClosed() {
			s.drain(sess)
			s.handleDisconnect(sess)
			delete(s.sessions, id)
			s.netServer.Release(id)
			continue
		}
		s.drain(sess)
	}
}

func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case frame := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, frame.Header, frame.Payload); err != nil {
				s.log.Debug("dispatch error", zap.Uint64("session", uint64(sess.ID)), zap.Error(err))
			}
		default:
			return
		}
	}
}

// handleDisconnect runs Player Removal (§4.10) for whichever character the
// closed session had bound, then drops the session from the registry.
func (s *InputSystem) handleDisconnect(sess *net.Session) {
	if characterID := sess.CharacterID.Load(); characterID != 0 {
		handler.RemovePlayer(s.deps, characterID)
	}
	s.conns.Remove(sess.ID)
}
