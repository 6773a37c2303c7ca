package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the multiplayer game server.
//
// Naming convention: namespace_subsystem_name
// - namespace: multiplayer (application-level grouping)
// - subsystem: websocket, room, matchmaking, persist (feature-level grouping)
// - name: specific metric (connections_active, messages_total, etc.)
//
// Metric Types:
// - Gauge: Current state (connections, rooms, queue depth)
// - Counter: Cumulative events (messages processed, reconnects, errors)
// - Histogram: Latency distributions (message handling, tick duration)
//
// Per-room labels are deliberately avoided: room codes are unbounded, the
// mode label is not.

var (
	// ActiveConnections tracks the current number of live WebSocket sessions
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "multiplayer",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of active WebSocket connections",
	})

	// ActiveRooms tracks the current number of rooms per game mode
	ActiveRooms = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "multiplayer",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active rooms",
	}, []string{"mode"})

	// RoomPlayers tracks the number of seated players per game mode
	RoomPlayers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "multiplayer",
		Subsystem: "room",
		Name:      "players_count",
		Help:      "Number of players seated in rooms",
	}, []string{"mode"})

	// MessagesReceived counts processed inbound frames by tag and outcome
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "multiplayer",
		Subsystem: "websocket",
		Name:      "messages_total",
		Help:      "Total WebSocket messages processed",
	}, []string{"event_type", "status"})

	// MessageProcessingDuration tracks the time spent handling a frame
	MessageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "multiplayer",
		Subsystem: "websocket",
		Name:      "message_processing_seconds",
		Help:      "Time spent processing WebSocket messages",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"event_type"})

	// Disconnects counts session terminations by reason
	Disconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "multiplayer",
		Subsystem: "websocket",
		Name:      "disconnects_total",
		Help:      "Total disconnects by reason",
	}, []string{"reason"})

	// Reconnects counts token-based reconnect attempts by outcome
	Reconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "multiplayer",
		Subsystem: "websocket",
		Name:      "reconnects_total",
		Help:      "Total reconnect attempts",
	}, []string{"status"})

	// TickDuration tracks simulation tick cost per game mode
	TickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "multiplayer",
		Subsystem: "room",
		Name:      "tick_seconds",
		Help:      "Time spent running one simulation tick",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
	}, []string{"mode"})

	// QueueDepth tracks waiting players per matchmaking queue
	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "multiplayer",
		Subsystem: "matchmaking",
		Name:      "queue_depth",
		Help:      "Players currently waiting in a matchmaking queue",
	}, []string{"queue"})

	// MatchesFormed counts completed matches; kind is "peer" or "ai"
	MatchesFormed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "multiplayer",
		Subsystem: "matchmaking",
		Name:      "matches_total",
		Help:      "Total matches formed",
	}, []string{"queue", "kind"})

	// RedisOperationsTotal counts persistence calls by operation and outcome
	RedisOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "multiplayer",
		Subsystem: "persist",
		Name:      "redis_operations_total",
		Help:      "Total Redis persistence operations",
	}, []string{"operation", "status"})

	// RedisOperationDuration tracks persistence call latency
	RedisOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "multiplayer",
		Subsystem: "persist",
		Name:      "redis_operation_seconds",
		Help:      "Time spent on Redis persistence operations",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation"})

	// CircuitBreakerState exposes the persistence breaker state
	// (0 = closed, 1 = half-open, 2 = open)
	CircuitBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "multiplayer",
		Subsystem: "persist",
		Name:      "circuit_breaker_state",
		Help:      "Persistence circuit breaker state (0 closed, 1 half-open, 2 open)",
	})

	// RateLimitHits counts rejected work by limiter scope
	RateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "multiplayer",
		Subsystem: "websocket",
		Name:      "rate_limit_hits_total",
		Help:      "Total rate limited connections and messages",
	}, []string{"scope"})
)

func IncConnection() {
	ActiveConnections.Inc()
}

func DecConnection() {
	ActiveConnections.Dec()
}
