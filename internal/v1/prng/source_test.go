package prng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceDeterminism(t *testing.T) {
	a := New(12345)
	b := New(12345)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestSourceDiffersBySeed(t *testing.T) {
	a := New(1)
	b := New(2)
	same := 0
	for i := 0; i < 100; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	assert.Zero(t, same)
}

func TestNextIntBounds(t *testing.T) {
	s := New(7)
	for i := 0; i < 10000; i++ {
		v := s.NextInt(6, 11)
		assert.GreaterOrEqual(t, v, 6)
		assert.Less(t, v, 11)
	}
}

func TestNextIntPanicsOnBadRange(t *testing.T) {
	s := New(7)
	assert.Panics(t, func() { s.NextInt(5, 5) })
}

func TestNextFloatBounds(t *testing.T) {
	s := New(99)
	for i := 0; i < 10000; i++ {
		v := s.NextFloat(-1, 1)
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 1.0)
	}
}

func TestChanceExtremes(t *testing.T) {
	s := New(3)
	for i := 0; i < 100; i++ {
		assert.False(t, s.Chance(0))
		assert.True(t, s.Chance(1))
	}
}

func TestChanceRoughProportion(t *testing.T) {
	s := New(42)
	hits := 0
	for i := 0; i < 10000; i++ {
		if s.Chance(0.3) {
			hits++
		}
	}
	assert.InDelta(t, 3000, hits, 300)
}

func TestForkIndependentOfParentPosition(t *testing.T) {
	a := New(555)
	b := New(555)
	// advance b so the parents diverge in position but not in state origin
	childA := a.Fork(0xBEEF)
	childB := b.Fork(0xBEEF)
	for i := 0; i < 100; i++ {
		assert.Equal(t, childA.Uint64(), childB.Uint64())
	}
}

func TestSeed31NonNegative(t *testing.T) {
	s := New(-9)
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, s.Seed31(), int32(0))
	}
}

func TestPositionHashStability(t *testing.T) {
	assert.Equal(t, PositionHash(10, 20, 77), PositionHash(10, 20, 77))
	assert.NotEqual(t, PositionHash(10, 20, 77), PositionHash(11, 20, 77))
	assert.NotEqual(t, PositionHash(10, 20, 77), PositionHash(10, 21, 77))
	assert.NotEqual(t, PositionHash(10, 20, 77), PositionHash(10, 20, 78))
}

func TestCellSourceReproducible(t *testing.T) {
	a := CellSource(9001, 42, 3, 4)
	b := CellSource(9001, 42, 3, 4)
	assert.Equal(t, a.Uint64(), b.Uint64())

	c := CellSource(9001, 43, 3, 4)
	assert.NotEqual(t, a.Uint64(), c.Uint64())
}
