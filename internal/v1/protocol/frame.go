package protocol

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrInvalidJSON means the frame did not parse at all.
	ErrInvalidJSON = errors.New("frame is not valid JSON")
	// ErrInvalidType means the frame parsed but the type tag is missing or
	// not a string.
	ErrInvalidType = errors.New("frame type tag missing or not a string")
)

// Tag extracts the top-level type tag from a raw frame. Syntax errors map to
// ErrInvalidJSON; a well-formed frame without a string type maps to
// ErrInvalidType. The caller picks the error code from the sentinel.
func Tag(data []byte) (string, error) {
	var probe struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// valid JSON, wrong shape (array, number, ...)
			return "", ErrInvalidType
		}
		return "", ErrInvalidJSON
	}
	if probe.Type == nil {
		return "", ErrInvalidType
	}
	var tag string
	if err := json.Unmarshal(probe.Type, &tag); err != nil {
		return "", ErrInvalidType
	}
	if tag == "" {
		return "", ErrInvalidType
	}
	return tag, nil
}

// CodeFor maps a frame decode error to its wire code.
func CodeFor(err error) Code {
	switch {
	case errors.Is(err, ErrInvalidJSON):
		return CodeInvalidJSON
	case errors.Is(err, ErrInvalidType):
		return CodeInvalidFormat
	default:
		return CodeInternalError
	}
}

// Field size caps. Oversized client fields are truncated, never rejected.
const (
	MaxDisplayName = 16
	MaxRoomName    = 32
	MaxChat        = 256
)

// Truncate cuts s to at most max runes. Truncation is rune-safe so a
// multi-byte name never ends in a split code point.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// CleanDisplayName trims whitespace and caps the result; empty input falls
// back to the provided default.
func CleanDisplayName(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return Truncate(s, MaxDisplayName)
}

// CleanRoomName trims and caps a room name, falling back when empty.
func CleanRoomName(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return Truncate(s, MaxRoomName)
}

// CleanChat caps a chat line; empty stays empty so handlers can drop it.
func CleanChat(s string) string {
	return Truncate(strings.TrimSpace(s), MaxChat)
}
