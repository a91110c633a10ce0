package client

import (
	"math"
	"time"
)

// DefaultBackoffFactor is the base delay before the first retry.
const DefaultBackoffFactor = 1500 * time.Millisecond

// BackoffPolicy computes deterministic exponential retry delays.
// There is no jitter and no cap: identical inputs always produce the
// identical delay series, which keeps retry timing reproducible.
type BackoffPolicy struct {
	// Factor is the base delay. The delay after failed attempt n is
	// Factor * 2^(n-1), so the default series is 1.5s, 3s, 6s, 12s, ...
	Factor time.Duration
}

// DefaultBackoffPolicy returns the standard backoff policy.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{Factor: DefaultBackoffFactor}
}

// Delay returns the wait duration after the given failed attempt.
// Attempts are numbered from 1. Non-positive attempts return 0.
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return time.Duration(float64(p.Factor) * math.Pow(2, float64(attempt-1)))
}
