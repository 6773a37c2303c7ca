package lobby

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/metrics"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Ticket is one queued player.
type Ticket struct {
	SID      types.SessionIdType
	Name     string
	Points   int
	QueuedAt time.Time
}

// QueueOptions tune one matchmaking queue.
type QueueOptions struct {
	// Name labels metrics and logs.
	Name string
	// PointRange caps the points gap between matched tickets; 0 matches any
	// pair regardless of points.
	PointRange int
	// Timeout is how long a ticket waits before the AI fallback fires;
	// 0 disables the fallback and tickets wait indefinitely.
	Timeout time.Duration
	// Retry is the scan interval for pairing tickets that missed their
	// immediate attempt.
	Retry time.Duration
	// OnMatch receives a compatible pair, in queue order.
	OnMatch func(a, b Ticket)
	// OnTimeout receives a ticket whose wait expired; nil with a nonzero
	// Timeout simply drops the ticket.
	OnTimeout func(t Ticket)
}

// Queue is a per-mode matchmaking line. Enqueue tries to match immediately;
// a low-frequency scan pairs the rest and expires the overdue.
type Queue struct {
	opts QueueOptions

	mu      sync.Mutex
	tickets []Ticket

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	now      func() time.Time
}

// NewQueue builds a queue and starts its scan loop.
func NewQueue(opts QueueOptions) *Queue {
	if opts.Retry <= 0 {
		opts.Retry = 2 * time.Second
	}
	q := &Queue{
		opts: opts,
		stop: make(chan struct{}),
		done: make(chan struct{}),
		now:  time.Now,
	}
	go q.scanLoop()
	return q
}

// Enqueue adds a player and attempts an immediate match. A session already
// in the queue has its ticket refreshed rather than duplicated.
func (q *Queue) Enqueue(t Ticket) {
	t.QueuedAt = q.now()

	q.mu.Lock()
	replaced := false
	for i := range q.tickets {
		if q.tickets[i].SID == t.SID {
			q.tickets[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		q.tickets = append(q.tickets, t)
	}
	depth := len(q.tickets)
	q.mu.Unlock()

	metrics.QueueDepth.WithLabelValues(q.opts.Name).Set(float64(depth))
	q.tryMatch()
}

// Cancel removes a session's ticket; returns false when it was not queued.
func (q *Queue) Cancel(sid types.SessionIdType) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.tickets {
		if q.tickets[i].SID == sid {
			q.tickets = append(q.tickets[:i], q.tickets[i+1:]...)
			metrics.QueueDepth.WithLabelValues(q.opts.Name).Set(float64(len(q.tickets)))
			return true
		}
	}
	return false
}

// Len reports waiting tickets.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tickets)
}

func (q *Queue) compatible(a, b Ticket) bool {
	if q.opts.PointRange <= 0 {
		return true
	}
	diff := a.Points - b.Points
	if diff < 0 {
		diff = -diff
	}
	return diff <= q.opts.PointRange
}

// tryMatch pairs the earliest compatible tickets. Matches fire outside the
// lock so OnMatch may re-enter the queue.
func (q *Queue) tryMatch() {
	var pairs [][2]Ticket

	q.mu.Lock()
	for {
		found := false
		for i := 0; i < len(q.tickets) && !found; i++ {
			for j := i + 1; j < len(q.tickets); j++ {
				if q.compatible(q.tickets[i], q.tickets[j]) {
					pairs = append(pairs, [2]Ticket{q.tickets[i], q.tickets[j]})
					q.tickets = append(q.tickets[:j], q.tickets[j+1:]...)
					q.tickets = append(q.tickets[:i], q.tickets[i+1:]...)
					found = true
					break
				}
			}
		}
		if !found {
			break
		}
	}
	depth := len(q.tickets)
	q.mu.Unlock()

	metrics.QueueDepth.WithLabelValues(q.opts.Name).Set(float64(depth))
	for _, p := range pairs {
		metrics.MatchesFormed.WithLabelValues(q.opts.Name, "peer").Inc()
		logging.Info(context.Background(), "Matchmaking pair formed",
			zap.String("queue", q.opts.Name),
			zap.String("a", string(p[0].SID)),
			zap.String("b", string(p[1].SID)))
		q.opts.OnMatch(p[0], p[1])
	}
}

func (q *Queue) expireOverdue() {
	if q.opts.Timeout <= 0 {
		return
	}
	cutoff := q.now().Add(-q.opts.Timeout)

	var expired []Ticket
	q.mu.Lock()
	kept := q.tickets[:0]
	for _, t := range q.tickets {
		if t.QueuedAt.Before(cutoff) {
			expired = append(expired, t)
		} else {
			kept = append(kept, t)
		}
	}
	q.tickets = kept
	depth := len(q.tickets)
	q.mu.Unlock()

	metrics.QueueDepth.WithLabelValues(q.opts.Name).Set(float64(depth))
	for _, t := range expired {
		if q.opts.OnTimeout != nil {
			metrics.MatchesFormed.WithLabelValues(q.opts.Name, "ai").Inc()
			q.opts.OnTimeout(t)
		}
	}
}

func (q *Queue) scanLoop() {
	defer close(q.done)
	ticker := time.NewTicker(q.opts.Retry)
	defer ticker.Stop()

	for {
		select {
		case <-q.stop:
			return
		case <-ticker.C:
			q.tryMatch()
			q.expireOverdue()
		}
	}
}

// Close stops the scan loop and waits for it.
func (q *Queue) Close() {
	q.stopOnce.Do(func() { close(q.stop) })
	<-q.done
}
