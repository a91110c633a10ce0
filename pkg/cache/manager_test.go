package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client for testing. Unit tests skip
// when no local Redis is reachable; tests/integration runs the same paths
// against a containerized instance.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	// Ping to check connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	// Flush test DB before each test
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewManager(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	manager := NewManager(client)
	if manager == nil {
		t.Fatal("NewManager returned nil")
	}
	if manager.redis != client {
		t.Error("Manager redis client not set correctly")
	}
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil redis client")
		}
	}()
	NewManager(nil)
}

func TestManager_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := Key{
		Endpoint: "https://www.courtlistener.com/api/rest/v3/opinions/",
	}

	entry := NewEntry([]byte(`{"results": [], "next": null}`), 5*time.Minute)

	// Set entry
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Get entry
	retrieved, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Verify body
	if string(retrieved.Body) != string(entry.Body) {
		t.Errorf("Body mismatch: got %s, want %s", retrieved.Body, entry.Body)
	}
}

func TestManager_Get_CacheMiss(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := Key{
		Endpoint: "https://www.courtlistener.com/api/rest/v3/nonexistent/",
	}

	_, err := manager.Get(ctx, key)
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_Get_ExpiredEntry(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := Key{
		Endpoint: "https://www.courtlistener.com/api/rest/v3/opinions/",
	}

	// Create already expired entry
	entry := &Entry{
		Body:      []byte(`{"results": []}`),
		FetchedAt: time.Now().Add(-2 * time.Hour),
		Expires:   time.Now().Add(-1 * time.Hour), // Already expired
	}

	// Set should not cache expired entries
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Get should return cache miss
	_, err := manager.Get(ctx, key)
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := Key{
		Endpoint: "https://www.courtlistener.com/api/rest/v3/opinions/",
	}

	entry := NewEntry([]byte(`{"results": []}`), 5*time.Minute)

	// Set entry
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Verify it exists
	if _, err := manager.Get(ctx, key); err != nil {
		t.Fatalf("Get after Set failed: %v", err)
	}

	// Delete entry
	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Verify it's gone
	_, err := manager.Get(ctx, key)
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestManager_Purge(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	keys := []Key{
		{Endpoint: "https://www.courtlistener.com/api/rest/v3/opinions/"},
		{Endpoint: "https://www.courtlistener.com/api/rest/v3/opinions/?page=2"},
		{Endpoint: "https://www.courtlistener.com/api/rest/v3/dockets/"},
	}

	for _, key := range keys {
		entry := NewEntry([]byte(`{"results": []}`), 5*time.Minute)
		if err := manager.Set(ctx, key, entry); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	deleted, err := manager.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if deleted != len(keys) {
		t.Errorf("Purge deleted %d entries, want %d", deleted, len(keys))
	}

	for _, key := range keys {
		if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
			t.Errorf("Expected ErrCacheMiss after Purge for %s, got %v", key.String(), err)
		}
	}
}

func TestManager_Purge_Empty(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	deleted, err := manager.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Purge deleted %d entries, want 0", deleted)
	}
}
