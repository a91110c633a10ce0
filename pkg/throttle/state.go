// Package throttle implements cross-process 429 cool-off tracking. When
// any worker is rate limited, it records a cool-off window in Redis; other
// workers wait out the remainder before issuing new requests. The window
// comes from the Retry-After response header when present. This gate sits
// outside the retry loop and never changes its deterministic backoff
// arithmetic.
package throttle

import (
	"net/http"
	"strconv"
	"time"
)

// Redis keys for cool-off state storage.
const (
	RedisKeyCooloffUntil = "courtsync:throttle:cooloff_until"
	RedisKeyLastLimited  = "courtsync:throttle:last_429"
	RedisKeyLimitedCount = "courtsync:throttle:429_count"
)

// Cool-off bounds.
const (
	// DefaultCooloff is the window recorded when the server sends no
	// Retry-After header.
	DefaultCooloff = 10 * time.Second

	// MaxCooloff caps the window so a hostile or broken Retry-After value
	// cannot stall workers indefinitely.
	MaxCooloff = 5 * time.Minute
)

// State represents the shared cool-off state. It is stored in Redis and
// visible to every worker.
type State struct {
	// CooloffUntil is when requests may resume. Zero means no cool-off
	// is active.
	CooloffUntil time.Time `json:"cooloff_until"`

	// LastLimited is when the most recent 429 was observed.
	LastLimited time.Time `json:"last_limited"`

	// LimitedCount is the total number of 429 responses observed.
	LimitedCount int `json:"limited_count"`
}

// CoolingOff returns true while the cool-off window is active.
func (s *State) CoolingOff() bool {
	return time.Now().Before(s.CooloffUntil)
}

// Remaining returns the duration until requests may resume.
// Returns 0 if no cool-off is active.
func (s *State) Remaining() time.Duration {
	remaining := time.Until(s.CooloffUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ParseRetryAfter interprets a Retry-After header value, either delay
// seconds or an HTTP date. Returns 0 for an empty or unparseable value.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		delay := at.Sub(now)
		if delay < 0 {
			return 0
		}
		return delay
	}

	return 0
}
