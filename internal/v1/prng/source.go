// Package prng provides the deterministic random primitives every simulation
// draws from. Given identical seeds and identical call sequences, outputs are
// identical across processes and architectures, which keeps world generation
// and per-tick AI decisions replayable from a room seed alone.
package prng

import "math"

// Source is a small-state generator using a splitmix-style avalanche mix.
// It is not safe for concurrent use; each room owns its own Source.
type Source struct {
	state uint64
}

// New returns a Source seeded with the given value.
func New(seed int64) *Source {
	return &Source{state: uint64(seed)}
}

// Uint64 advances the state and returns the next 64-bit value.
func (s *Source) Uint64() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return z
}

// Uint32 returns the high 32 bits of the next value.
func (s *Source) Uint32() uint32 {
	return uint32(s.Uint64() >> 32)
}

// NextInt returns a value in [lo, hi). It panics if hi <= lo.
func (s *Source) NextInt(lo, hi int) int {
	if hi <= lo {
		panic("prng: NextInt requires hi > lo")
	}
	span := uint64(hi - lo)
	return lo + int(s.Uint64()%span)
}

// NextFloat returns a value in [lo, hi).
func (s *Source) NextFloat(lo, hi float64) float64 {
	f := float64(s.Uint64()>>11) / float64(1<<53)
	return lo + f*(hi-lo)
}

// Chance returns true with probability p. p <= 0 never fires, p >= 1 always.
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.NextFloat(0, 1) < p
}

// Fork derives an independent child stream. The child's sequence depends only
// on the parent seed and the salt, not on how far the parent has advanced
// after the fork point.
func (s *Source) Fork(salt uint64) *Source {
	return &Source{state: mix64(s.state ^ salt)}
}

// Seed31 returns a non-negative 31-bit value, the shape used for game seeds
// handed to clients.
func (s *Source) Seed31() int32 {
	return int32(s.Uint32() & math.MaxInt32)
}

// PositionHash collapses a grid coordinate and seed into a well-mixed 32-bit
// value, so per-cell decisions (ore placement, tree placement, drop rolls)
// stay reproducible without consuming the room's main stream.
func PositionHash(x, y int, seed int64) uint32 {
	h := uint32(x*73856093) ^ uint32(y*191152071) ^ uint32(seed)
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// CellSource builds a Source for one cell decision at one tick, seeded
// roomSeed ^ tick ^ positionHash.
func CellSource(roomSeed int64, tick uint64, x, y int) *Source {
	return &Source{state: mix64(uint64(roomSeed) ^ tick ^ uint64(PositionHash(x, y, roomSeed)))}
}

func mix64(z uint64) uint64 {
	z ^= z >> 33
	z *= 0xFF51AFD7ED558CCD
	z ^= z >> 33
	z *= 0xC4CEB9FE1A85EC53
	z ^= z >> 33
	return z
}
