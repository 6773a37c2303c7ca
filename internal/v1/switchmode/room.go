// Package switchmode is the round-based score mode: a fixed number of timed
// rounds, client-reported points, and a winner by total at the end. The
// server owns the round clock; everything else is relayed state.
package switchmode

import (
	"sync"
	"time"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/game"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// tickRateHz drives the round clock; RoundSeconds×tickRateHz ticks per round.
const tickRateHz = 10

// Player is one switch-mode seat.
type Player struct {
	SID       types.SessionIdType
	Name      string
	Color     string
	Ready     bool
	Connected bool
	JoinedAt  time.Time

	Score      int
	RoundScore int

	graceTimer *time.Timer
}

// Room is one switch-mode lobby or match. All state behind mu.
type Room struct {
	mu sync.Mutex

	Code       types.RoomCodeType
	Name       string
	Public     bool
	HostSID    types.SessionIdType
	Status     types.RoomStatus
	CreatedAt  time.Time
	MaxPlayers int
	Seed       int64

	Tick  uint64
	Round int

	Players map[types.SessionIdType]*Player
	order   []types.SessionIdType

	loop        *game.Loop
	colorCursor int
}
