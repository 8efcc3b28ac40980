package net

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reqserver/zoneserver/internal/core/ecs"
	"github.com/reqserver/zoneserver/internal/net/packet"
	"go.uber.org/zap"
)

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; game state is touched only from the tick loop.
type Session struct {
	ID   ecs.EntityID
	conn net.Conn

	// CharacterID is 0 until the handshake (§4.1) binds this connection to a
	// character. Every handler that references a character id must check
	// this matches before acting on the player (invariant I3).
	CharacterID atomic.Uint64

	InQueue  chan Frame // tick loop reads inbound frames from here
	OutQueue chan Frame // writer goroutine reads outbound frames from here

	IP string

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

// Frame is a decoded header plus its raw payload, queued between the I/O
// goroutines and the tick loop.
type Frame struct {
	Header  packet.Header
	Payload []byte
}

func NewSession(conn net.Conn, id ecs.EntityID, inSize, outSize int, log *zap.Logger) *Session {
	s := &Session{
		ID:       id,
		conn:     conn,
		InQueue:  make(chan Frame, inSize),
		OutQueue: make(chan Frame, outSize),
		IP:       conn.RemoteAddr().String(),
		closeCh:  make(chan struct{}),
		log:      log.With(zap.Uint64("session", uint64(id))),
	}
	return s
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send queues a message for sending. Non-blocking: if OutQueue is full the
// session is disconnected rather than let one slow client stall the writer
// goroutine pool — the backpressure policy §5 calls for drop-or-disconnect.
func (s *Session) Send(typ packet.MessageType, payload []byte) {
	if s.closed.Load() {
		return
	}
	frame := Frame{Header: packet.Header{Type: typ, PayloadSize: uint32(len(payload))}, Payload: payload}
	select {
	case s.OutQueue <- frame:
	default:
		s.log.Warn("output queue full, disconnecting slow client")
		s.Close()
	}
}

// Close gracefully shuts down the session. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop decodes frames off the wire and pushes them onto InQueue for the
// tick loop to consume. Blocking on a full InQueue only stalls this one
// connection's reader, never the simulation.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		h, payload, err := packet.ReadMessage(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		select {
		case s.InQueue <- Frame{Header: h, Payload: payload}:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop drains OutQueue and writes framed messages to the connection.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case frame := <-s.OutQueue:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := packet.WriteMessage(s.conn, frame.Header.Type, frame.Payload); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
