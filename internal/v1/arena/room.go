// Package arena is the voxel FPS mode. Rooms form exclusively through the
// FFA matchmaking queue; the server relays movement and shots, keeps the
// authoritative kill count, and ends the match at the kill target.
package arena

import (
	"sync"
	"time"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

const maxHP = 100

// Player is one arena combatant.
type Player struct {
	SID       types.SessionIdType
	Name      string
	Color     string
	Connected bool
	JoinedAt  time.Time

	X, Y, Z    float64
	Yaw, Pitch float64

	HP     int
	Dead   bool
	Kills  int
	Deaths int

	graceTimer *time.Timer
}

// Room is one FFA match. All state behind mu.
type Room struct {
	mu sync.Mutex

	Code       types.RoomCodeType
	HostSID    types.SessionIdType
	Status     types.RoomStatus
	CreatedAt  time.Time
	MaxPlayers int
	Seed       int64

	Players map[types.SessionIdType]*Player
	order   []types.SessionIdType

	colorCursor int
}
