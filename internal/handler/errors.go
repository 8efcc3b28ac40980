package handler

import "fmt"

// Error codes surfaced to clients in ERR|code|message replies (§7).
const (
	ErrParseError        = "PARSE_ERROR"
	ErrInvalidHandoff    = "INVALID_HANDOFF"
	ErrHandoffExpired    = "HANDOFF_EXPIRED"
	ErrWrongZone         = "WRONG_ZONE"
	ErrCharacterNotFound = "CHARACTER_NOT_FOUND"
	ErrAccessDenied      = "ACCESS_DENIED"
	ErrInvalidSession    = "INVALID_SESSION"
)

// errReply formats the typed ERR|code|message payload every failing
// handler boundary replies with (§7).
func errReply(code, message string) []byte {
	return []byte(fmt.Sprintf("ERR|%s|%s", code, message))
}
