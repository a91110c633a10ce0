package throttle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for cool-off tracking.
var (
	cooloffsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtsync_throttle_cooloffs_total",
		Help: "Total number of cool-off windows recorded after 429 responses",
	})

	waitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtsync_throttle_waits_total",
		Help: "Total number of requests delayed by an active cool-off",
	})
)

// Tracker stores and consults the shared cool-off state.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a new cool-off tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the current cool-off state from Redis.
// Returns a zero state if no worker has been rate limited.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	state := &State{}

	untilUnix, err := t.redis.Get(ctx, RedisKeyCooloffUntil).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get cooloff until: %w", err)
	}
	if err == nil {
		state.CooloffUntil = time.Unix(untilUnix, 0)
	}

	lastStr, err := t.redis.Get(ctx, RedisKeyLastLimited).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last limited: %w", err)
	}
	if err == nil && lastStr != "" {
		if err := json.Unmarshal([]byte(lastStr), &state.LastLimited); err != nil {
			return nil, fmt.Errorf("parse last limited: %w", err)
		}
	}

	count, err := t.redis.Get(ctx, RedisKeyLimitedCount).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get limited count: %w", err)
	}
	state.LimitedCount = count

	return state, nil
}

// RecordRateLimited stores a cool-off window after a 429 response.
// retryAfter is the raw Retry-After header value, possibly empty.
func (t *Tracker) RecordRateLimited(ctx context.Context, retryAfter string) error {
	now := time.Now()

	window := ParseRetryAfter(retryAfter, now)
	if window <= 0 {
		window = DefaultCooloff
	}
	if window > MaxCooloff {
		window = MaxCooloff
	}
	until := now.Add(window)

	lastJSON, err := json.Marshal(now)
	if err != nil {
		return fmt.Errorf("marshal last limited: %w", err)
	}

	// Store in Redis atomically. The cool-off key expires with the
	// window, so state cleans itself up.
	pipe := t.redis.Pipeline()
	pipe.Set(ctx, RedisKeyCooloffUntil, until.Unix(), window)
	pipe.Set(ctx, RedisKeyLastLimited, lastJSON, 0)
	pipe.Incr(ctx, RedisKeyLimitedCount)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store cool-off state in redis: %w", err)
	}

	cooloffsTotal.Inc()

	t.logger.Warn().
		Dur("window", window).
		Time("until", until).
		Str("retry_after", retryAfter).
		Msg("Rate limited, recording shared cool-off")

	return nil
}

// Wait blocks until any active cool-off window has passed. Redis being
// unreachable does not stall fetching; the gate simply opens.
func (t *Tracker) Wait(ctx context.Context) error {
	state, err := t.GetState(ctx)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Cool-off state unavailable, proceeding without gate")
		return nil
	}

	remaining := state.Remaining()
	if remaining <= 0 {
		return nil
	}

	waitsTotal.Inc()

	t.logger.Warn().
		Dur("remaining", remaining).
		Time("until", state.CooloffUntil).
		Msg("Rate limit cool-off active, waiting")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(remaining):
		return nil
	}
}

// Reset clears all cool-off state. Used by the reset command.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.redis.Del(ctx, RedisKeyCooloffUntil, RedisKeyLastLimited, RedisKeyLimitedCount).Err(); err != nil {
		return fmt.Errorf("clear cool-off state: %w", err)
	}

	t.logger.Info().Msg("Cool-off state cleared")
	return nil
}
