// Package protocol defines the JSON wire contract shared by every game mode:
// the frame probe that extracts the type tag, the error code vocabulary, field
// truncation limits, and the lifecycle envelopes that look the same no matter
// which manager emits them. Mode-specific payloads live with their managers.
package protocol

import "strings"

// Code identifies an error category on the wire.
type Code string

const (
	CodeInvalidJSON     Code = "INVALID_JSON"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeUnknownType     Code = "UNKNOWN_TYPE"
	CodeRoomNotFound    Code = "ROOM_NOT_FOUND"
	CodeRoomGone        Code = "ROOM_GONE"
	CodeRoomFull        Code = "ROOM_FULL"
	CodeGameInProgress  Code = "GAME_IN_PROGRESS"
	CodeJoinFailed      Code = "JOIN_FAILED"
	CodeReconnectFailed Code = "RECONNECT_FAILED"
	CodeStartFailed     Code = "START_FAILED"
	CodeNotHost         Code = "NOT_HOST"
	CodeInternalError   Code = "INTERNAL_ERROR"
)

// Prefixed returns the mode-scoped analog of a code, e.g.
// Prefixed("mc_", CodeJoinFailed) == "MC_JOIN_FAILED".
func Prefixed(tagPrefix string, c Code) Code {
	p := strings.ToUpper(tagPrefix)
	if !strings.HasSuffix(p, "_") {
		p += "_"
	}
	return Code(p + string(c))
}
