package game

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

func TestNewCodeShape(t *testing.T) {
	for i := 0; i < 2000; i++ {
		code := string(NewCode())
		assert.Len(t, code, 5)
		for _, c := range code {
			assert.Contains(t, codeAlphabet, string(c))
		}
		// ambiguous glyphs never appear
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "I")
	}
}

func TestCodeAlphabetSize(t *testing.T) {
	assert.Len(t, codeAlphabet, 32)
	for _, bad := range "0O1I" {
		assert.False(t, strings.ContainsRune(codeAlphabet, bad))
	}
}

func TestUniqueCodeSkipsTaken(t *testing.T) {
	taken := map[types.RoomCodeType]bool{}
	first := UniqueCode(func(c types.RoomCodeType) bool { return taken[c] })
	taken[first] = true

	// pretend every draw collides a few times before landing free
	attempts := 0
	second := UniqueCode(func(c types.RoomCodeType) bool {
		attempts++
		return attempts <= 3
	})
	assert.NotEmpty(t, second)
	assert.Equal(t, 4, attempts)
}

func TestColorForSlotWraps(t *testing.T) {
	assert.Equal(t, Palette[0], ColorForSlot(0))
	assert.Equal(t, Palette[1], ColorForSlot(1))
	assert.Equal(t, Palette[0], ColorForSlot(len(Palette)))
	assert.Equal(t, Palette[2], ColorForSlot(len(Palette)+2))
	assert.NotPanics(t, func() { ColorForSlot(-3) })
}

func TestIndexSingleRoomPerSession(t *testing.T) {
	ix := NewIndex()

	assert.NoError(t, ix.Bind("player_1_a", types.ModeBoard, "AAAAA"))
	// same binding again is fine
	assert.NoError(t, ix.Bind("player_1_a", types.ModeBoard, "AAAAA"))
	// a different room is not
	assert.ErrorIs(t, ix.Bind("player_1_a", types.ModeRhythm, "BBBBB"), ErrAlreadyInRoom)

	e, ok := ix.Lookup("player_1_a")
	assert.True(t, ok)
	assert.Equal(t, types.RoomCodeType("AAAAA"), e.Code)
	assert.Equal(t, 1, ix.Len())
}

func TestIndexUnbindIgnoresStaleRoom(t *testing.T) {
	ix := NewIndex()
	assert.NoError(t, ix.Bind("player_1_a", types.ModeBoard, "AAAAA"))

	// an unbind from a room the session is not in must not evict it
	ix.Unbind("player_1_a", "ZZZZZ")
	_, ok := ix.Lookup("player_1_a")
	assert.True(t, ok)

	ix.Unbind("player_1_a", "AAAAA")
	_, ok = ix.Lookup("player_1_a")
	assert.False(t, ok)
	assert.Equal(t, 0, ix.Len())
}

func TestIndexRekey(t *testing.T) {
	ix := NewIndex()
	assert.NoError(t, ix.Bind("player_1_old", types.ModeWarfront, "CCCCC"))

	ix.Rekey("player_1_old", "player_2_new")

	_, ok := ix.Lookup("player_1_old")
	assert.False(t, ok)
	e, ok := ix.Lookup("player_2_new")
	assert.True(t, ok)
	assert.Equal(t, types.RoomCodeType("CCCCC"), e.Code)

	// rekey of an unknown session is a no-op
	ix.Rekey("player_9_x", "player_9_y")
	assert.Equal(t, 1, ix.Len())
}

func TestLoopTicksAndStops(t *testing.T) {
	var ticks atomic.Int64
	l := StartLoop("board", 100, func() bool {
		ticks.Add(1)
		return true
	})

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 },
		time.Second, 5*time.Millisecond)

	l.Stop()
	after := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no ticks after Stop")

	// Stop twice is safe
	l.Stop()
}

func TestLoopEndsWhenTickReturnsFalse(t *testing.T) {
	var ticks atomic.Int64
	l := StartLoop("board", 200, func() bool {
		return ticks.Add(1) < 3
	})

	assert.Eventually(t, func() bool {
		select {
		case <-l.done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, int64(3), ticks.Load())
}

func TestLoopSurvivesPanic(t *testing.T) {
	var ticks atomic.Int64
	l := StartLoop("board", 200, func() bool {
		if ticks.Add(1) == 1 {
			panic("boom")
		}
		return true
	})
	defer l.Stop()

	// the loop keeps ticking after the panicked tick
	assert.Eventually(t, func() bool { return ticks.Load() >= 3 },
		time.Second, 5*time.Millisecond)
}
