package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistration(t *testing.T) {
	// promauto registers against the default registry at import time, so the
	// real check is that labels resolve and values move without panicking.

	t.Run("ActiveConnections", func(t *testing.T) {
		before := testutil.ToFloat64(ActiveConnections)
		IncConnection()
		if got := testutil.ToFloat64(ActiveConnections); got != before+1 {
			t.Errorf("Expected connections gauge %v, got %v", before+1, got)
		}
		DecConnection()
		if got := testutil.ToFloat64(ActiveConnections); got != before {
			t.Errorf("Expected connections gauge back at %v, got %v", before, got)
		}
	})

	t.Run("RoomGauges", func(t *testing.T) {
		ActiveRooms.WithLabelValues("board").Inc()
		RoomPlayers.WithLabelValues("board").Add(2)
		if got := testutil.ToFloat64(ActiveRooms.WithLabelValues("board")); got < 1 {
			t.Errorf("Expected board rooms gauge >= 1, got %v", got)
		}
	})

	t.Run("MessagesReceived", func(t *testing.T) {
		MessagesReceived.WithLabelValues("mc_move", "ok").Inc()
		val := testutil.ToFloat64(MessagesReceived.WithLabelValues("mc_move", "ok"))
		if val < 1 {
			t.Errorf("Expected messages counter at least 1, got %v", val)
		}
	})

	t.Run("Histograms", func(t *testing.T) {
		MessageProcessingDuration.WithLabelValues("mc_move").Observe(0.002)
		TickDuration.WithLabelValues("board").Observe(0.001)
		RedisOperationDuration.WithLabelValues("save_room").Observe(0.01)
	})

	t.Run("RedisOperationsTotal", func(t *testing.T) {
		RedisOperationsTotal.WithLabelValues("save_room", "success").Inc()
		val := testutil.ToFloat64(RedisOperationsTotal.WithLabelValues("save_room", "success"))
		if val < 1 {
			t.Errorf("Expected RedisOperationsTotal to be at least 1, got %v", val)
		}
	})

	t.Run("MatchmakingAndLimits", func(t *testing.T) {
		QueueDepth.WithLabelValues("ranked").Set(3)
		MatchesFormed.WithLabelValues("ranked", "ai").Inc()
		RateLimitHits.WithLabelValues("ip").Inc()
		CircuitBreakerState.Set(0)
		if got := testutil.ToFloat64(QueueDepth.WithLabelValues("ranked")); got != 3 {
			t.Errorf("Expected queue depth 3, got %v", got)
		}
	})
}
