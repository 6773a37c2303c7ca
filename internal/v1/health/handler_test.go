package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	connections int
	rooms       int
}

func (s *stubSource) ConnectionCount() int { return s.connections }
func (s *stubSource) RoomCount() int       { return s.rooms }

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/stats", h.Stats)
	return r
}

func TestHealthEndpoint(t *testing.T) {
	h := NewHandler(&stubSource{connections: 7, rooms: 3})
	r := newTestRouter(h)

	req, _ := http.NewRequest("GET", "/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 7, body.Connections)
	assert.Equal(t, 3, body.Rooms)

	ts, err := time.Parse(time.RFC3339, body.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
}

func TestStatsEndpoint(t *testing.T) {
	h := NewHandler(&stubSource{connections: 2, rooms: 1})
	r := newTestRouter(h)

	req, _ := http.NewRequest("GET", "/stats", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var body StatsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Connections)
	assert.Equal(t, 1, body.Rooms)
	assert.GreaterOrEqual(t, body.UptimeSeconds, float64(0))
	assert.Greater(t, body.Memory.AllocBytes, uint64(0))
	assert.Greater(t, body.Memory.Goroutines, 0)
}

func TestStatsCountersTrackSource(t *testing.T) {
	src := &stubSource{}
	h := NewHandler(src)
	r := newTestRouter(h)

	src.connections = 42
	src.rooms = 9

	req, _ := http.NewRequest("GET", "/stats", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var body StatsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 42, body.Connections)
	assert.Equal(t, 9, body.Rooms)
}
