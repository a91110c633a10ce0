package throttle

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// setupTestRedis creates a test Redis client. Tests skip when no local
// Redis is reachable; tests/integration covers the same paths against a
// containerized instance.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestTracker_GetState_Empty(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, testLogger())
	ctx := context.Background()

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}

	if state.CoolingOff() {
		t.Error("Empty state should not be cooling off")
	}
	if state.LimitedCount != 0 {
		t.Errorf("LimitedCount = %d, want 0", state.LimitedCount)
	}
}

func TestTracker_RecordRateLimited(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, testLogger())
	ctx := context.Background()

	if err := tracker.RecordRateLimited(ctx, "30"); err != nil {
		t.Fatalf("RecordRateLimited() error = %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}

	if !state.CoolingOff() {
		t.Error("State should be cooling off after RecordRateLimited")
	}

	remaining := state.Remaining()
	if remaining < 25*time.Second || remaining > 31*time.Second {
		t.Errorf("Remaining() = %v, want approximately 30s", remaining)
	}

	if state.LimitedCount != 1 {
		t.Errorf("LimitedCount = %d, want 1", state.LimitedCount)
	}

	if state.LastLimited.IsZero() {
		t.Error("LastLimited should be set")
	}
}

func TestTracker_RecordRateLimited_NoHeader(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, testLogger())
	ctx := context.Background()

	// Without a Retry-After value the default window applies
	if err := tracker.RecordRateLimited(ctx, ""); err != nil {
		t.Fatalf("RecordRateLimited() error = %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}

	remaining := state.Remaining()
	if remaining <= 0 || remaining > DefaultCooloff {
		t.Errorf("Remaining() = %v, want within default window %v", remaining, DefaultCooloff)
	}
}

func TestTracker_RecordRateLimited_CapsWindow(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, testLogger())
	ctx := context.Background()

	// An hour-long Retry-After is capped
	if err := tracker.RecordRateLimited(ctx, "3600"); err != nil {
		t.Fatalf("RecordRateLimited() error = %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}

	if state.Remaining() > MaxCooloff {
		t.Errorf("Remaining() = %v, want <= %v", state.Remaining(), MaxCooloff)
	}
}

func TestTracker_Wait_NoCooloff(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, testLogger())
	ctx := context.Background()

	start := time.Now()
	if err := tracker.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Wait() took %v, want immediate return without cool-off", elapsed)
	}
}

func TestTracker_Wait_ActiveCooloff(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, testLogger())
	ctx := context.Background()

	if err := tracker.RecordRateLimited(ctx, "1"); err != nil {
		t.Fatalf("RecordRateLimited() error = %v", err)
	}

	start := time.Now()
	if err := tracker.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if elapsed := time.Since(start); elapsed < 500*time.Millisecond {
		t.Errorf("Wait() took %v, want to wait out the cool-off window", elapsed)
	}
}

func TestTracker_Wait_ContextCancelled(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, testLogger())
	ctx := context.Background()

	if err := tracker.RecordRateLimited(ctx, "30"); err != nil {
		t.Fatalf("RecordRateLimited() error = %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	err := tracker.Wait(waitCtx)
	if err == nil {
		t.Error("Wait() should return the context error when cancelled mid cool-off")
	}
}

func TestTracker_Reset(t *testing.T) {
	client := setupTestRedis(t)
	tracker := NewTracker(client, testLogger())
	ctx := context.Background()

	if err := tracker.RecordRateLimited(ctx, "60"); err != nil {
		t.Fatalf("RecordRateLimited() error = %v", err)
	}

	if err := tracker.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}

	if state.CoolingOff() {
		t.Error("State should not be cooling off after Reset")
	}
	if state.LimitedCount != 0 {
		t.Errorf("LimitedCount = %d, want 0 after Reset", state.LimitedCount)
	}
}
