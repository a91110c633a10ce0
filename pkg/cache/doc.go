// Package cache provides an optional page cache with a Redis backend.
//
// The cache stores raw result-page bodies keyed by request URL, so a hit
// replays the exact bytes the API served. Features:
//
// - Configurable TTL per entry
// - Automatic expiry through Redis TTLs plus an expiry check on read
// - Prometheus metrics for observability
// - Deterministic cache key generation
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Create cache key
//	key := cache.Key{
//		Endpoint: "https://www.courtlistener.com/api/rest/v3/opinions/",
//		Params:   url.Values{"page_size": []string{"10"}},
//	}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from the API
//	}
//
//	// Store a fetched body for ten minutes
//	if err := manager.Set(ctx, key, cache.NewEntry(body, 10*time.Minute)); err != nil {
//		return err
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - courtsync_cache_hits_total - Cache hits
//   - courtsync_cache_misses_total - Cache misses
//   - courtsync_cache_errors_total{operation} - Cache operation errors
package cache
