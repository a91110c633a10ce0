package cache

import (
	"time"
)

// Entry represents a cached result page body.
type Entry struct {
	// Body is the raw response body as served by the API.
	Body []byte `json:"body"`

	// FetchedAt is when the page was fetched from the API.
	FetchedAt time.Time `json:"fetched_at"`

	// Expires is when the cache entry becomes stale.
	Expires time.Time `json:"expires"`
}

// NewEntry creates an entry for a freshly fetched body with the given TTL.
func NewEntry(body []byte, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Body:      body,
		FetchedAt: now,
		Expires:   now.Add(ttl),
	}
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
