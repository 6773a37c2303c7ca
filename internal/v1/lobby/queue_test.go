package lobby

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

type matchRecorder struct {
	mu       sync.Mutex
	pairs    [][2]Ticket
	timeouts []Ticket
}

func (r *matchRecorder) onMatch(a, b Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs = append(r.pairs, [2]Ticket{a, b})
}

func (r *matchRecorder) onTimeout(t Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeouts = append(r.timeouts, t)
}

func (r *matchRecorder) pairCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pairs)
}

func (r *matchRecorder) timeoutCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timeouts)
}

func TestEnqueueMatchesImmediately(t *testing.T) {
	rec := &matchRecorder{}
	q := NewQueue(QueueOptions{Name: "test", Retry: time.Hour, OnMatch: rec.onMatch})
	defer q.Close()

	q.Enqueue(Ticket{SID: "player_1_a", Name: "A"})
	assert.Equal(t, 0, rec.pairCount())

	q.Enqueue(Ticket{SID: "player_2_b", Name: "B"})
	require.Equal(t, 1, rec.pairCount())
	assert.Equal(t, 0, q.Len())

	rec.mu.Lock()
	assert.Equal(t, types.SessionIdType("player_1_a"), rec.pairs[0][0].SID)
	assert.Equal(t, types.SessionIdType("player_2_b"), rec.pairs[0][1].SID)
	rec.mu.Unlock()
}

func TestPointRangeKeepsDistantTicketsApart(t *testing.T) {
	rec := &matchRecorder{}
	q := NewQueue(QueueOptions{Name: "test", PointRange: 200, Retry: time.Hour, OnMatch: rec.onMatch})
	defer q.Close()

	q.Enqueue(Ticket{SID: "player_1_a", Points: 1000})
	q.Enqueue(Ticket{SID: "player_2_b", Points: 2000})
	assert.Equal(t, 0, rec.pairCount())
	assert.Equal(t, 2, q.Len())

	// a third ticket inside range of the first pairs with it
	q.Enqueue(Ticket{SID: "player_3_c", Points: 1100})
	require.Equal(t, 1, rec.pairCount())
	assert.Equal(t, 1, q.Len())
}

func TestDuplicateEnqueueRefreshesTicket(t *testing.T) {
	rec := &matchRecorder{}
	q := NewQueue(QueueOptions{Name: "test", PointRange: 100, Retry: time.Hour, OnMatch: rec.onMatch})
	defer q.Close()

	q.Enqueue(Ticket{SID: "player_1_a", Points: 1000})
	q.Enqueue(Ticket{SID: "player_1_a", Points: 1500})
	assert.Equal(t, 1, q.Len())

	q.Enqueue(Ticket{SID: "player_2_b", Points: 1450})
	require.Equal(t, 1, rec.pairCount())
	rec.mu.Lock()
	assert.Equal(t, 1500, rec.pairs[0][0].Points, "refreshed points carried into the match")
	rec.mu.Unlock()
}

func TestCancelRemovesTicket(t *testing.T) {
	rec := &matchRecorder{}
	q := NewQueue(QueueOptions{Name: "test", Retry: time.Hour, OnMatch: rec.onMatch})
	defer q.Close()

	q.Enqueue(Ticket{SID: "player_1_a"})
	assert.True(t, q.Cancel("player_1_a"))
	assert.False(t, q.Cancel("player_1_a"))

	q.Enqueue(Ticket{SID: "player_2_b"})
	assert.Equal(t, 0, rec.pairCount())
	assert.Equal(t, 1, q.Len())
}

func TestTimeoutFiresFallback(t *testing.T) {
	rec := &matchRecorder{}
	q := NewQueue(QueueOptions{
		Name:      "test",
		Timeout:   30 * time.Millisecond,
		Retry:     10 * time.Millisecond,
		OnMatch:   rec.onMatch,
		OnTimeout: rec.onTimeout,
	})
	defer q.Close()

	q.Enqueue(Ticket{SID: "player_1_a", Name: "A"})
	require.Eventually(t, func() bool { return rec.timeoutCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, q.Len())
	rec.mu.Lock()
	assert.Equal(t, types.SessionIdType("player_1_a"), rec.timeouts[0].SID)
	rec.mu.Unlock()
}

func TestZeroTimeoutWaitsForever(t *testing.T) {
	rec := &matchRecorder{}
	q := NewQueue(QueueOptions{
		Name:      "test",
		Retry:     5 * time.Millisecond,
		OnMatch:   rec.onMatch,
		OnTimeout: rec.onTimeout,
	})
	defer q.Close()

	q.Enqueue(Ticket{SID: "player_1_a"})
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, rec.timeoutCount())
	assert.Equal(t, 1, q.Len())
}

func TestScanLoopPairsLateArrivals(t *testing.T) {
	rec := &matchRecorder{}
	q := NewQueue(QueueOptions{Name: "test", Retry: 10 * time.Millisecond, OnMatch: rec.onMatch})
	defer q.Close()

	// seed tickets directly so the immediate attempt never ran
	q.mu.Lock()
	q.tickets = append(q.tickets,
		Ticket{SID: "player_1_a", QueuedAt: time.Now()},
		Ticket{SID: "player_2_b", QueuedAt: time.Now()},
	)
	q.mu.Unlock()

	require.Eventually(t, func() bool { return rec.pairCount() == 1 }, time.Second, 5*time.Millisecond)
}
