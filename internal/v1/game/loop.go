package game

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/metrics"
)

// Loop drives one room's fixed-rate simulation on its own goroutine. The
// tick callback runs under the room's own lock (taken inside the callback)
// and returns false when the room is done, which ends the goroutine. A
// panicking tick is logged and skipped; one bad tick must not kill the room.
type Loop struct {
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// StartLoop begins ticking at hz and returns a handle to stop it. The mode
// string labels the tick-duration metric.
func StartLoop(mode string, hz int, tick func() bool) *Loop {
	if hz <= 0 {
		hz = 10
	}
	l := &Loop{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	interval := time.Second / time.Duration(hz)
	go func() {
		defer close(l.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-l.stop:
				return
			case <-ticker.C:
				if !l.runTick(mode, tick) {
					return
				}
			}
		}
	}()
	return l
}

func (l *Loop) runTick(mode string, tick func() bool) (keepGoing bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(context.Background(), "tick panicked",
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			keepGoing = true
		}
	}()

	start := time.Now()
	keepGoing = tick()
	metrics.TickDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	return keepGoing
}

// Stop ends the loop and waits for the goroutine to exit. Safe to call more
// than once and safe to call from outside the tick callback.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

// StopAsync ends the loop without waiting. Tick callbacks that decide to
// stop their own room return false instead of calling Stop, so this exists
// for teardown paths that already hold the room lock.
func (l *Loop) StopAsync() {
	l.stopOnce.Do(func() { close(l.stop) })
}
