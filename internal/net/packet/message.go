package packet

import "fmt"

// CurrentProtocolVersion is the protocol_version value stamped on every
// frame this build writes. Mismatches from a peer are logged, not rejected;
// a strict-version gate is a planned tightening, not implemented here.
const CurrentProtocolVersion uint16 = 1

// MessageType is the numeric code carried in the frame header's type field.
type MessageType uint16

const (
	TypeZoneAuthRequest MessageType = iota + 1
	TypeZoneAuthResponse
	TypeMovementIntent
	TypePlayerStateSnapshot
	TypeAttackRequest
	TypeAttackResult
	TypeEntitySpawn
	TypeEntityUpdate
	TypeEntityDespawn
	TypeDevCommand
	TypeDevCommandResponse
)

func (t MessageType) String() string {
	switch t {
	case TypeZoneAuthRequest:
		return "ZoneAuthRequest"
	case TypeZoneAuthResponse:
		return "ZoneAuthResponse"
	case TypeMovementIntent:
		return "MovementIntent"
	case TypePlayerStateSnapshot:
		return "PlayerStateSnapshot"
	case TypeAttackRequest:
		return "AttackRequest"
	case TypeAttackResult:
		return "AttackResult"
	case TypeEntitySpawn:
		return "EntitySpawn"
	case TypeEntityUpdate:
		return "EntityUpdate"
	case TypeEntityDespawn:
		return "EntityDespawn"
	case TypeDevCommand:
		return "DevCommand"
	case TypeDevCommandResponse:
		return "DevCommandResponse"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(t))
	}
}
