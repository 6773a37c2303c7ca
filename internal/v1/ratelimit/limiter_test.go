package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/config"
)

func newTestLimiter(t *testing.T, ipRate, msgRate string) *Limiter {
	t.Helper()
	rl, err := New(&config.Config{
		RateLimitWsIp:  ipRate,
		RateLimitWsMsg: msgRate,
	}, nil)
	require.NoError(t, err)
	return rl
}

func TestNewRejectsBadRates(t *testing.T) {
	_, err := New(&config.Config{RateLimitWsIp: "garbage", RateLimitWsMsg: "10-M"}, nil)
	assert.Error(t, err)

	_, err = New(&config.Config{RateLimitWsIp: "10-M", RateLimitWsMsg: ""}, nil)
	assert.Error(t, err)
}

func TestConnectMiddlewareEnforcesLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := newTestLimiter(t, "2-M", "100-M")

	r := gin.New()
	r.Use(rl.ConnectMiddleware())
	r.GET("/ws", func(c *gin.Context) { c.Status(http.StatusOK) })

	status := func() int {
		req, _ := http.NewRequest("GET", "/ws", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp.Code
	}

	assert.Equal(t, http.StatusOK, status())
	assert.Equal(t, http.StatusOK, status())
	assert.Equal(t, http.StatusTooManyRequests, status())
}

func TestConnectMiddlewareSetsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := newTestLimiter(t, "5-M", "100-M")

	r := gin.New()
	r.Use(rl.ConnectMiddleware())
	r.GET("/ws", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("GET", "/ws", nil)
	req.RemoteAddr = "10.9.9.9:5555"
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, "5", resp.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", resp.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header().Get("X-RateLimit-Reset"))
}

func TestAllowMessageFloodCutoff(t *testing.T) {
	rl := newTestLimiter(t, "100-M", "3-M")
	ctx := context.Background()

	assert.True(t, rl.AllowMessage(ctx, "player_1_a"))
	assert.True(t, rl.AllowMessage(ctx, "player_1_a"))
	assert.True(t, rl.AllowMessage(ctx, "player_1_a"))
	assert.False(t, rl.AllowMessage(ctx, "player_1_a"))

	// other sessions are unaffected
	assert.True(t, rl.AllowMessage(ctx, "player_2_b"))
}
