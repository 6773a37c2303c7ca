// Package reconnect owns the token side of graceful reconnection: opaque
// single-use tokens bound to a session id, issued on room entry, rotated on
// every successful reconnect, and deleted on leave or expiry. The grace
// timers that eventually evict a disconnected player live with the room
// managers; this broker only answers "whose seat does this token open".
package reconnect

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

var (
	// ErrTokenUnknown covers both never-issued and already-consumed tokens.
	ErrTokenUnknown = errors.New("reconnect token unknown")
	// ErrTokenExpired means the token existed but its grace window passed.
	ErrTokenExpired = errors.New("reconnect token expired")
)

type entry struct {
	sid       types.SessionIdType
	expiresAt time.Time
}

// Broker is the process-wide token store. Critical sections are map-only and
// short; it is never held across I/O.
type Broker struct {
	mu     sync.Mutex
	grace  time.Duration
	tokens map[string]entry
	bySID  map[types.SessionIdType]string
	now    func() time.Time
}

// NewBroker builds a broker whose tokens live for the given grace window.
func NewBroker(grace time.Duration) *Broker {
	return &Broker{
		grace:  grace,
		tokens: make(map[string]entry),
		bySID:  make(map[types.SessionIdType]string),
		now:    time.Now,
	}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randBase36(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
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

// Issue mints a fresh token for a session, replacing any previous one. A
// session holds at most one valid token at a time, which is what makes
// rotation invalidate the pre-reconnect token.
func (b *Broker) Issue(sid types.SessionIdType) string {
	token := fmt.Sprintf("reconnect_%d_%s", b.now().UnixMilli(), randBase36(9))

	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.bySID[sid]; ok {
		delete(b.tokens, old)
	}
	b.tokens[token] = entry{sid: sid, expiresAt: b.now().Add(b.grace)}
	b.bySID[sid] = token
	return token
}

// Consume validates and deletes a token, returning the bound session id.
// A second call with the same token fails with ErrTokenUnknown; consumption
// is what makes tokens single-use.
func (b *Broker) Consume(token string) (types.SessionIdType, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.tokens[token]
	if !ok {
		return "", ErrTokenUnknown
	}
	delete(b.tokens, token)
	delete(b.bySID, e.sid)
	if b.now().After(e.expiresAt) {
		return "", ErrTokenExpired
	}
	return e.sid, nil
}

// Revoke drops a session's outstanding token, if any. Called on explicit
// leave and on grace expiry.
func (b *Broker) Revoke(sid types.SessionIdType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if token, ok := b.bySID[sid]; ok {
		delete(b.tokens, token)
		delete(b.bySID, sid)
	}
}

// Rekey moves a session's token binding to a new session id without rotating
// the token itself. Managers use it when a player object changes owner but
// the client keeps its credential.
func (b *Broker) Rekey(oldSID, newSID types.SessionIdType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if token, ok := b.bySID[oldSID]; ok {
		delete(b.bySID, oldSID)
		b.bySID[newSID] = token
		e := b.tokens[token]
		e.sid = newSID
		b.tokens[token] = e
	}
}

// Grace returns the configured grace window; managers size their disconnect
// timers from the same value.
func (b *Broker) Grace() time.Duration { return b.grace }

// Len reports outstanding tokens, for tests and stats.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tokens)
}
