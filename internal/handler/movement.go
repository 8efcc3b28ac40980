package handler

import (
	"sync"
	"time"

	"github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
	"go.uber.org/zap"
)

// movementParseLogLimiter throttles malformed-movement-frame warnings to at
// most once per 5 seconds (§4.3) — a bad client spamming junk packets must
// not flood the log.
var movementParseLogLimiter struct {
	mu   sync.Mutex
	last time.Time
}

func logMovementParseFailure(log *zap.Logger, reason string) {
	movementParseLogLimiter.mu.Lock()
	defer movementParseLogLimiter.mu.Unlock()
	now := time.Now()
	if now.Sub(movementParseLogLimiter.last) < 5*time.Second {
		return
	}
	movementParseLogLimiter.last = now
	log.Warn("malformed MovementIntent", zap.String("reason", reason))
}

// HandleMovementIntent stores the client's latest input for the next
// Player Simulation tick (§4.3, §4.4). It never mutates position directly
// and never replies — malformed or unauthorized frames are dropped
// silently, per the message-handling contract.
func HandleMovementIntent(deps *Deps, sess *net.Session, payload []byte) {
	fr := packet.NewFieldReader(payload)
	characterID := fr.Uint64()
	sequenceNumber := fr.Int64()
	inputX := fr.Float()
	inputY := fr.Float()
	yawDegrees := fr.Float()
	jumpPressed := fr.Bool()
	_ = fr.Int64() // clientTimeMs, carried for future latency diagnostics only
	if err := fr.Err(); err != nil {
		logMovementParseFailure(deps.Log, err.Error())
		return
	}

	// Invariant I3: the player must exist, be initialized, and the sending
	// connection must be the one bound to it.
	player := deps.World.GetPlayer(characterID)
	if player == nil || !player.Initialized || !deps.Conns.Owns(sess.ID, characterID) {
		return
	}

	seq := uint32(sequenceNumber)
	if seq <= player.LastInputSeq {
		return
	}

	player.InputForwardAxis = inputX
	player.InputStrafeAxis = inputY
	player.InputJump = jumpPressed
	player.InputSequence = seq
	player.LastInputSeq = seq
	player.Yaw = normalizeYaw(yawDegrees)
}

func normalizeYaw(yaw float64) float64 {
	yaw = mod(yaw, 360)
	if yaw < 0 {
		yaw += 360
	}
	return yaw
}

func mod(a, b float64) float64 {
	for a >= b {
		a -= b
	}
	for a < 0 {
		a += b
	}
	return a
}
