// Package persist mirrors public room summaries into an external document
// store. The store is write-through and non-authoritative: every failure is
// logged and swallowed, and the in-memory managers keep serving either way.
package persist

import (
	"context"
	"time"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// SummaryPlayer is one roster row of a stored room document.
type SummaryPlayer struct {
	ID       types.SessionIdType `json:"id"`
	Name     string              `json:"name"`
	IsHost   bool                `json:"isHost"`
	JoinedAt int64               `json:"joinedAt"`
}

// Summary is the stable-shape subset of a room that gets persisted. One
// document per room, keyed by code.
type Summary struct {
	Code       types.RoomCodeType `json:"code"`
	Name       string             `json:"name"`
	Mode       types.ModeType     `json:"mode"`
	HostName   string             `json:"hostName"`
	Status     types.RoomStatus   `json:"status"`
	Players    []SummaryPlayer    `json:"players"`
	MaxPlayers int                `json:"maxPlayers"`
	CreatedAt  int64              `json:"createdAt"`
	UpdatedAt  int64              `json:"updatedAt"`
}

// Store is the write-through interface the managers call on room-state
// transitions. Implementations must be safe for concurrent use and must not
// be called while holding a room lock.
type Store interface {
	SaveRoom(ctx context.Context, s Summary) error
	DeleteRoom(ctx context.Context, code types.RoomCodeType) error
	ListOpenRooms(ctx context.Context) ([]Summary, error)
	CleanupStale(ctx context.Context, olderThan time.Duration) (int, error)
	Close() error
}

// Noop is the store used when persistence is disabled; every call succeeds
// and nothing is remembered.
type Noop struct{}

func (Noop) SaveRoom(context.Context, Summary) error                  { return nil }
func (Noop) DeleteRoom(context.Context, types.RoomCodeType) error     { return nil }
func (Noop) ListOpenRooms(context.Context) ([]Summary, error)         { return nil, nil }
func (Noop) CleanupStale(context.Context, time.Duration) (int, error) { return 0, nil }
func (Noop) Close() error                                             { return nil }
