// Package lobby owns what happens before a room starts playing: the
// host-started countdown and the matchmaking queues that form rooms on their
// own. Managers hand it closures instead of back-pointers, so the lobby never
// touches room state directly.
package lobby

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Orchestrator runs countdowns on their own goroutines and tracks them so a
// graceful shutdown can wait for the stragglers.
type Orchestrator struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	stopped  bool
	stop     chan struct{}
	interval time.Duration
}

// NewOrchestrator builds an orchestrator beating at 1 Hz.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		stop:     make(chan struct{}),
		interval: time.Second,
	}
}

// StartCountdown announces count beats from seconds down to 1, one per
// second, then calls begin. Clients cannot cancel a countdown; only server
// shutdown interrupts it, in which case begin never runs.
func (o *Orchestrator) StartCountdown(code types.RoomCodeType, seconds int, announce func(count int), begin func()) {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.wg.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()

		for count := seconds; count >= 1; count-- {
			announce(count)
			select {
			case <-o.stop:
				logging.Info(context.Background(), "Countdown interrupted by shutdown",
					zap.String("roomCode", string(code)))
				return
			case <-ticker.C:
			}
		}
		begin()
	}()
}

// Shutdown interrupts running countdowns and waits for their goroutines.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	if !o.stopped {
		o.stopped = true
		close(o.stop)
	}
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
