package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// StatsSource supplies the live counters the endpoints report. The session
// registry and the game index both satisfy parts of this; main wires them
// together.
type StatsSource interface {
	ConnectionCount() int
	RoomCount() int
}

// Handler manages the health and stats endpoints
type Handler struct {
	src     StatsSource
	started time.Time
}

// NewHandler creates a new health check handler
func NewHandler(src StatsSource) *Handler {
	return &Handler{
		src:     src,
		started: time.Now(),
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

// Health handles the health probe endpoint
// GET /health
// Returns 200 whenever the process can serve traffic; the counters ride
// along for dashboards that only scrape this endpoint.
func (h *Handler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Connections: h.src.ConnectionCount(),
		Rooms:       h.src.RoomCount(),
	}

	c.JSON(http.StatusOK, response)
}

// MemoryStats is the memory section of GET /stats
type MemoryStats struct {
	AllocBytes      uint64 `json:"allocBytes"`
	TotalAllocBytes uint64 `json:"totalAllocBytes"`
	SysBytes        uint64 `json:"sysBytes"`
	NumGC           uint32 `json:"numGC"`
	Goroutines      int    `json:"goroutines"`
}

// StatsResponse is the body of GET /stats
type StatsResponse struct {
	Connections   int         `json:"connections"`
	Rooms         int         `json:"rooms"`
	UptimeSeconds float64     `json:"uptimeSeconds"`
	Memory        MemoryStats `json:"memory"`
}

// Stats handles the operational stats endpoint
// GET /stats
func (h *Handler) Stats(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response := StatsResponse{
		Connections:   h.src.ConnectionCount(),
		Rooms:         h.src.RoomCount(),
		UptimeSeconds: time.Since(h.started).Seconds(),
		Memory: MemoryStats{
			AllocBytes:      mem.Alloc,
			TotalAllocBytes: mem.TotalAlloc,
			SysBytes:        mem.Sys,
			NumGC:           mem.NumGC,
			Goroutines:      runtime.NumGoroutine(),
		},
	}

	c.JSON(http.StatusOK, response)
}
