// Package openworld is the shared voxel world mode. One persistent world per
// process: players join without a room code, stream chunks on demand, and see
// each other's movement and block edits within view distance. There is no
// match lifecycle; the world exists as long as the process does.
package openworld

import (
	"sync"
	"time"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/world"
)

// worldCode is the fixed room code the shared world occupies in the
// session→room index and the reconnect flow.
const worldCode = types.RoomCodeType("WORLD")

// Player is one inhabitant of the shared world.
type Player struct {
	SID       types.SessionIdType
	Name      string
	Color     string
	Connected bool
	JoinedAt  time.Time

	X, Y, Z    float64
	Yaw, Pitch float64

	graceTimer *time.Timer
}

// chunkPos returns the chunk coordinate the player stands in.
func (p *Player) chunkPos() (int, int) {
	return int(p.X) / world.ChunkW, int(p.Z) / world.ChunkD
}

// World is the single shared world. All state behind mu.
type World struct {
	mu sync.Mutex

	Seed   int64
	Voxels *world.ChunkedWorld

	SpawnX, SpawnY, SpawnZ int

	Players map[types.SessionIdType]*Player
	order   []types.SessionIdType

	colorCursor int
}

// chunkDist is the Chebyshev distance between two chunk coordinates.
func chunkDist(ax, az, bx, bz int) int {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dz := az - bz
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}
