package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// HandlerFunc is the callback signature for message handlers. The session
// pointer is passed as an opaque interface to avoid an import cycle between
// net and net/packet.
type HandlerFunc func(sess any, payload []byte)

// Registry maps message kinds to handlers. Unlike a lobby-style protocol
// gated by session state, the zone only ever serves sessions that are
// already bound to a character, so there is a single unconditional
// dispatch table rather than per-state allow-lists.
type Registry struct {
	handlers map[MessageType]HandlerFunc
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[MessageType]HandlerFunc),
		log:      log,
	}
}

// Register binds a handler to a message kind. Re-registering a kind
// replaces the previous handler.
func (reg *Registry) Register(typ MessageType, fn HandlerFunc) {
	reg.handlers[typ] = fn
}

// Dispatch looks up the handler for h.Type and invokes it with the payload,
// catching any panic so a single malformed message never halts the tick.
func (reg *Registry) Dispatch(sess any, h Header, payload []byte) error {
	if h.ProtocolVersion != CurrentProtocolVersion {
		reg.log.Warn("protocol version mismatch",
			zap.Uint16("got", h.ProtocolVersion),
			zap.Uint16("want", CurrentProtocolVersion),
		)
	}

	fn, ok := reg.handlers[h.Type]
	if !ok {
		reg.log.Warn("rejected unknown message kind", zap.String("type", h.Type.String()))
		return nil
	}
	return reg.safeCall(fn, sess, payload, h.Type)
}

// safeCall executes a handler with panic recovery so a bad payload can't
// crash the simulation loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, payload []byte, typ MessageType) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("type", typ.String()),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for %s: %v", typ, rec)
		}
	}()
	fn(sess, payload)
	return nil
}
