package game

import (
	"errors"
	"sync"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

var (
	ErrAlreadyInRoom = errors.New("session already in a room")
)

// Entry records which room (and mode) currently owns a session.
type Entry struct {
	Mode types.ModeType
	Code types.RoomCodeType
}

// Index is the process-wide session→room mapping. Every mode manager binds
// here before seating a player, which is what keeps one session from
// occupying two rooms at once. The lock is held only for map access, never
// across I/O.
type Index struct {
	mu    sync.RWMutex
	bySID map[types.SessionIdType]Entry
}

func NewIndex() *Index {
	return &Index{
		bySID: make(map[types.SessionIdType]Entry),
	}
}

// Bind claims a session for a room. Binding the same session to the same
// room twice is a no-op; to a different room, ErrAlreadyInRoom.
func (ix *Index) Bind(sid types.SessionIdType, mode types.ModeType, code types.RoomCodeType) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if cur, ok := ix.bySID[sid]; ok {
		if cur.Code == code && cur.Mode == mode {
			return nil
		}
		return ErrAlreadyInRoom
	}
	ix.bySID[sid] = Entry{Mode: mode, Code: code}
	return nil
}

// Unbind releases a session, but only if it is still bound to the given
// room. A stale unbind from a torn-down room must not evict a fresh binding.
func (ix *Index) Unbind(sid types.SessionIdType, code types.RoomCodeType) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if cur, ok := ix.bySID[sid]; ok && cur.Code == code {
		delete(ix.bySID, sid)
	}
}

// Rekey moves a binding from one session id to another, preserving the room.
// Reconnects use this when a fresh socket adopts a seated player's identity.
func (ix *Index) Rekey(oldSID, newSID types.SessionIdType) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if cur, ok := ix.bySID[oldSID]; ok {
		delete(ix.bySID, oldSID)
		ix.bySID[newSID] = cur
	}
}

// Lookup returns the room a session is bound to, if any.
func (ix *Index) Lookup(sid types.SessionIdType) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	e, ok := ix.bySID[sid]
	return e, ok
}

// Len is the number of sessions currently seated in rooms.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.bySID)
}
