package net

import (
	"fmt"
	"net"

	"github.com/reqserver/zoneserver/internal/core/ecs"
	"go.uber.org/zap"
)

// Server accepts TCP connections and creates Sessions. New sessions are
// handed to the tick loop over a channel, and the tick loop finds closed
// ones by polling Session.IsClosed, so the accept loop never touches Zone
// State directly.
type Server struct {
	listener net.Listener
	pool     *ecs.EntityPool
	newConns chan *Session
	inSize   int
	outSize  int
	log      *zap.Logger
	closeCh  chan struct{}
}

func NewServer(bindAddr string, inSize, outSize int, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: ln,
		pool:     ecs.NewEntityPool(),
		newConns: make(chan *Session, 64),
		inSize:   inSize,
		outSize:  outSize,
		log:      log,
		closeCh:  make(chan struct{}),
	}
	return s, nil
}

// AcceptLoop runs in its own goroutine. Connection ids come from a
// generational entity pool (§9: "an arena of connections with stable ids")
// so a reused id can never alias a session that already disconnected.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		id := s.pool.Create()
		sess := NewSession(conn, id, s.inSize, s.outSize, s.log)
		sess.Start()

		s.log.Info(fmt.Sprintf("connection accepted session=%d ip=%s", uint64(id), sess.IP))

		select {
		case s.newConns <- sess:
		default:
			s.log.Warn("new-connection queue full, rejecting connection")
			sess.Close()
		}
	}
}

// Release returns a connection id to the pool once its session has been
// fully torn down (§4.10 player removal completed).
func (s *Server) Release(id ecs.EntityID) {
	s.pool.Destroy(id)
}

func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
