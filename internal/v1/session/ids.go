package session

import (
	"crypto/rand"
	"fmt"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// randBase36 returns n random base36 characters.
func randBase36(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// ids need uniqueness, not secrecy; clock bits are an acceptable floor
		v := uint64(time.Now().UnixNano())
		for i := range buf {
			buf[i] = byte(v >> (8 * (i % 8)))
		}
	}
	for i := range buf {
		buf[i] = base36[int(buf[i])%len(base36)]
	}
	return string(buf)
}

// NewSessionID mints a session id in the wire-visible
// player_<millis>_<base36> form.
func NewSessionID() string {
	return fmt.Sprintf("player_%d_%s", time.Now().UnixMilli(), randBase36(7))
}
