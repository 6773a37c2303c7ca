package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/metrics"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

const (
	docKeyPrefix = "multiplayer_rooms:"
	indexKey     = "multiplayer_rooms:index"
)

// RedisStore keeps one JSON document per room plus a ZSET scored by
// updatedAt millis, which is what makes the stale sweep a range delete.
type RedisStore struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker
}

// NewRedisStore connects and pings; a dead Redis at boot disables
// persistence rather than failing startup at the caller's discretion.
func NewRedisStore(addr, password string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	st := gobreaker.Settings{
		Name:        "persist",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     15 * time.Second,
		OnStateChange: func(name string, from, to gobreaker.State) {
			var stateVal float64
			switch to {
			case gobreaker.StateClosed:
				stateVal = 0
			case gobreaker.StateHalfOpen:
				stateVal = 1
			case gobreaker.StateOpen:
				stateVal = 2
			}
			metrics.CircuitBreakerState.Set(stateVal)
		},
	}

	logging.Info(context.Background(), "✅ Room persistence connected to Redis", zap.String("addr", addr))
	return &RedisStore{client: rdb, cb: gobreaker.NewCircuitBreaker(st)}, nil
}

func docKey(code types.RoomCodeType) string {
	return docKeyPrefix + string(code)
}

// execute wraps one store call in the breaker and records metrics. Breaker
// rejections degrade to a silent drop; persistence is best-effort.
func (s *RedisStore) execute(op string, fn func() error) error {
	start := time.Now()
	_, err := s.cb.Execute(func() (any, error) { return nil, fn() })
	metrics.RedisOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			metrics.RedisOperationsTotal.WithLabelValues(op, "breaker_open").Inc()
			logging.Warn(context.Background(), "Persistence breaker open - dropping operation", zap.String("operation", op))
			return nil
		}
		metrics.RedisOperationsTotal.WithLabelValues(op, "error").Inc()
		return err
	}
	metrics.RedisOperationsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

// SaveRoom upserts the room document and refreshes its index score.
func (s *RedisStore) SaveRoom(ctx context.Context, sum Summary) error {
	return s.execute("save", func() error {
		data, err := json.Marshal(sum)
		if err != nil {
			return fmt.Errorf("marshal room summary: %w", err)
		}
		pipe := s.client.TxPipeline()
		pipe.Set(ctx, docKey(sum.Code), data, 0)
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(sum.UpdatedAt), Member: string(sum.Code)})
		_, err = pipe.Exec(ctx)
		return err
	})
}

// DeleteRoom removes the document and its index entry.
func (s *RedisStore) DeleteRoom(ctx context.Context, code types.RoomCodeType) error {
	return s.execute("delete", func() error {
		pipe := s.client.TxPipeline()
		pipe.Del(ctx, docKey(code))
		pipe.ZRem(ctx, indexKey, string(code))
		_, err := pipe.Exec(ctx)
		return err
	})
}

// ListOpenRooms returns every stored summary still in waiting status.
func (s *RedisStore) ListOpenRooms(ctx context.Context) ([]Summary, error) {
	var out []Summary
	err := s.execute("list", func() error {
		codes, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
		if err != nil {
			return err
		}
		for _, code := range codes {
			data, err := s.client.Get(ctx, docKeyPrefix+code).Bytes()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return err
			}
			var sum Summary
			if err := json.Unmarshal(data, &sum); err != nil {
				logging.Warn(ctx, "Skipping unreadable room document", zap.String("code", code), zap.Error(err))
				continue
			}
			if sum.Status == types.StatusWaiting {
				out = append(out, sum)
			}
		}
		return nil
	})
	return out, err
}

// CleanupStale deletes documents whose updatedAt is older than the cutoff
// and returns how many went.
func (s *RedisStore) CleanupStale(ctx context.Context, olderThan time.Duration) (int, error) {
	var removed int
	err := s.execute("cleanup", func() error {
		cutoff := time.Now().Add(-olderThan).UnixMilli()
		codes, err := s.client.ZRangeByScore(ctx, indexKey, &redis.ZRangeBy{
			Min: "-inf",
			Max: fmt.Sprintf("%d", cutoff),
		}).Result()
		if err != nil {
			return err
		}
		if len(codes) == 0 {
			return nil
		}
		pipe := s.client.TxPipeline()
		for _, code := range codes {
			pipe.Del(ctx, docKeyPrefix+code)
			pipe.ZRem(ctx, indexKey, code)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		removed = len(codes)
		return nil
	})
	return removed, err
}

// Close shuts the connection pool down.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
