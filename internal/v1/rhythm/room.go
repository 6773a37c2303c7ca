// Package rhythm is the default mode: score-race rooms with no server-side
// simulation. The server owns the lobby lifecycle, the shared seed, and the
// ranked matchmaking queue; gameplay runs client-side against the seed, with
// score updates relayed through the room.
package rhythm

import (
	"sync"
	"time"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Player is one rhythm seat.
type Player struct {
	SID       types.SessionIdType
	Name      string
	Color     string
	Ready     bool
	Connected bool
	JoinedAt  time.Time

	// Points is the ranked rating carried in from the queue ticket.
	Points int

	Score    int
	Combo    int
	MaxCombo int
	Finished bool

	graceTimer *time.Timer
}

func (p *Player) resetRun() {
	p.Score = 0
	p.Combo = 0
	p.MaxCombo = 0
	p.Finished = false
}

// Room is one rhythm lobby or match. All state behind mu.
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

	// Ranked rooms are formed by the queue and skip the lobby phase.
	Ranked bool
	// VersusAI marks a ranked room whose opponent is the seed-driven AI.
	VersusAI bool

	Players map[types.SessionIdType]*Player
	order   []types.SessionIdType

	colorCursor int
}
