// Package ratelimit implements rate limiting using Redis or local memory.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/config"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/metrics"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Limiter guards the two abuse surfaces of a WebSocket server: upgrade
// attempts per IP and message flood per session. Store failures fail open;
// availability wins over enforcement.
type Limiter struct {
	wsIP  *limiter.Limiter
	wsMsg *limiter.Limiter
	store limiter.Store
}

// New creates a Limiter from the configured rates. With a Redis client the
// limits are shared across instances, otherwise they live in process memory.
func New(cfg *config.Config, redisClient *redis.Client) (*Limiter, error) {
	ipRate, err := limiter.NewRateFromFormatted(cfg.RateLimitWsIp)
	if err != nil {
		return nil, fmt.Errorf("invalid WS IP rate: %w", err)
	}

	msgRate, err := limiter.NewRateFromFormatted(cfg.RateLimitWsMsg)
	if err != nil {
		return nil, fmt.Errorf("invalid WS message rate: %w", err)
	}

	var store limiter.Store
	if redisClient != nil {
		s, err := sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: "limiter:v1:",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", err)
		}
		store = s
		logging.Info(context.Background(), "✅ Rate limiter using Redis store")
	} else {
		store = memory.NewStore()
		logging.Warn(context.Background(), "⚠️  Rate limiter using Memory store (Redis disabled or unavailable)")
	}

	return &Limiter{
		wsIP:  limiter.New(store, ipRate),
		wsMsg: limiter.New(store, msgRate),
		store: store,
	}, nil
}

// ConnectMiddleware limits WebSocket upgrade attempts per client IP.
func (rl *Limiter) ConnectMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		lctx, err := rl.wsIP.Get(ctx, c.ClientIP())
		if err != nil {
			// Fail open: a broken store must not take the service down.
			logging.Error(ctx, "Rate limiter store failed", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			metrics.RateLimitHits.WithLabelValues("ip").Inc()
			c.Header("Retry-After", strconv.FormatInt(lctx.Reset-time.Now().Unix(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"retry_after": lctx.Reset,
			})
			return
		}

		c.Next()
	}
}

// AllowMessage reports whether a session may process another inbound frame.
// The dispatcher drops the frame when this returns false.
func (rl *Limiter) AllowMessage(ctx context.Context, sid types.SessionIdType) bool {
	lctx, err := rl.wsMsg.Get(ctx, string(sid))
	if err != nil {
		logging.Error(ctx, "Rate limiter store failed", zap.Error(err))
		return true
	}
	if lctx.Reached {
		metrics.RateLimitHits.WithLabelValues("session").Inc()
		return false
	}
	return true
}
