// Package client provides the CourtListener HTTP client with deterministic
// retry, failure classification, and page decoding.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/courtsync/courtsync/pkg/cache"
	"github.com/courtsync/courtsync/pkg/throttle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtsync_requests_total",
		Help: "Total HTTP attempts by outcome",
	}, []string{"outcome"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "courtsync_request_duration_seconds",
		Help:    "HTTP attempt duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtsync_retries_total",
		Help: "Total retry attempts by reason",
	}, []string{"reason"})

	retryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "courtsync_retry_backoff_seconds",
		Help:    "Backoff delay before each retry in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtsync_retry_exhausted_total",
		Help: "Requests that exhausted the attempt budget",
	})
)

// Defaults for the client configuration.
const (
	// DefaultBaseURL is the production CourtListener API root.
	DefaultBaseURL = "https://www.courtlistener.com/api/rest/v3"

	// DefaultUserAgent identifies this client to the API. Production
	// deployments should override it with a contact address.
	DefaultUserAgent = "courtsync/1.0 (set COURTLISTENER_UA with name/email)"

	// DefaultMaxRetries is the total attempt budget per page.
	DefaultMaxRetries = 6

	// DefaultRequestTimeout bounds each individual attempt.
	DefaultRequestTimeout = 60 * time.Second
)

// EndpointOpinions is the court opinions listing endpoint.
const EndpointOpinions = "/opinions/"

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root endpoint paths are resolved against.
	BaseURL string

	// UserAgent header sent with every request (REQUIRED by the API).
	UserAgent string

	// AuthToken, when set, is sent as "Authorization: Token <value>".
	AuthToken string

	// MaxRetries is the total attempt budget per page, counting the
	// first attempt.
	MaxRetries int

	// RequestTimeout bounds each individual attempt, including reading
	// the response body.
	RequestTimeout time.Duration

	// Backoff computes the delay between attempts.
	Backoff BackoffPolicy

	// Redis, when set, enables the shared 429 cool-off tracker and the
	// page cache.
	Redis *redis.Client

	// CacheTTL is how long fetched pages stay cached. Zero disables
	// caching even when Redis is set.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      DefaultUserAgent,
		MaxRetries:     DefaultMaxRetries,
		RequestTimeout: DefaultRequestTimeout,
		Backoff:        DefaultBackoffPolicy(),
	}
}

// Client is the CourtListener HTTP client.
type Client struct {
	httpClient *http.Client
	throttle   *throttle.Tracker
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("max_retries must be >= 1 (got %d)", cfg.MaxRetries)
	}

	if cfg.Backoff.Factor <= 0 {
		return nil, fmt.Errorf("backoff factor must be positive (got %s)", cfg.Backoff.Factor)
	}

	// Initialize logger
	logger := log.With().Str("component", "courtlistener-client").Logger()

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		config: cfg,
		logger: logger,
		sleep:  sleepContext,
	}

	// Redis-backed extras are optional; without them the client is a pure
	// retrying fetcher.
	if cfg.Redis != nil {
		c.throttle = throttle.NewTracker(cfg.Redis, logger)
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

// GetPage fetches one result page. rawurl may be an endpoint path relative
// to the configured base URL (e.g. "/opinions/") or an absolute URL as
// returned in a page's Next field. params, when non-empty, are encoded
// into the query string; continuation URLs are already parameterized and
// must be passed with nil params.
//
// Each call runs its own attempt loop: up to MaxRetries attempts with
// deterministic exponential backoff between retryable failures. A fatal
// failure returns immediately; spending the whole budget returns an error
// wrapping ErrRetryExhausted.
func (c *Client) GetPage(ctx context.Context, rawurl string, params url.Values) (*Page, error) {
	target, err := c.buildURL(rawurl, params)
	if err != nil {
		return nil, err
	}

	// Step 1: Honor the shared rate limit cool-off
	if c.throttle != nil {
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, err)
		}
	}

	// Step 2: Check cache
	key := cache.Key{Endpoint: target}
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("url", target).Msg("Cache get error")
		}
		if entry != nil {
			c.logger.Debug().Str("url", target).Msg("Serving page from cache")
			return decodePage(entry.Body)
		}
	}

	// Step 3: Attempt loop with deterministic backoff
	var lastErr error
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 1 {
			delay := c.config.Backoff.Delay(attempt - 1)
			retriesTotal.WithLabelValues(retryReason(lastErr)).Inc()
			retryBackoffSeconds.Observe(delay.Seconds())

			c.logger.Debug().
				Str("url", target).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Backing off before retry")

			if err := c.sleep(ctx, delay); err != nil {
				c.logger.Warn().
					Str("url", target).
					Int("attempt", attempt).
					Msg("Context cancelled during retry backoff")
				return nil, fmt.Errorf("%w: %v", ErrContextCancelled, err)
			}
		}

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, err)
		}

		page, body, outcome, err := c.doAttempt(ctx, target)
		switch outcome {
		case OutcomeSuccess:
			if attempt > 1 {
				c.logger.Info().
					Str("url", target).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}

			// Step 4: Update cache on success
			if c.cache != nil && c.config.CacheTTL > 0 {
				if err := c.cache.Set(ctx, key, cache.NewEntry(body, c.config.CacheTTL)); err != nil {
					c.logger.Warn().Err(err).Str("url", target).Msg("Failed to cache page")
				}
			}

			return page, nil

		case OutcomeFatal:
			c.logger.Error().
				Str("url", target).
				Int("attempt", attempt).
				Err(err).
				Msg("Fatal request failure")
			return nil, err
		}

		lastErr = err
		c.logger.Warn().
			Str("url", target).
			Int("attempt", attempt).
			Int("max_retries", c.config.MaxRetries).
			Err(err).
			Msg("Retryable request failure")
	}

	// All attempts exhausted
	retryExhaustedTotal.Inc()
	c.logger.Error().
		Str("url", target).
		Int("max_retries", c.config.MaxRetries).
		Err(lastErr).
		Msg("Retry attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, c.config.MaxRetries, lastErr)
}

// doAttempt executes a single HTTP attempt and classifies the result. On
// success it returns the decoded page together with the raw body for
// caching.
func (c *Client) doAttempt(ctx context.Context, target string) (page *Page, body []byte, outcome Outcome, err error) {
	startTime := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(startTime).Seconds())
		requestsTotal.WithLabelValues(outcome.String()).Inc()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, OutcomeFatal, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.config.AuthToken != "" {
		req.Header.Set("Authorization", "Token "+c.config.AuthToken)
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		if ctx.Err() != nil {
			return nil, nil, OutcomeFatal, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		}

		outcome = ClassifyErr(doErr)
		return nil, nil, outcome, &RequestError{
			Outcome: outcome,
			URL:     target,
			Message: "request failed",
			Err:     doErr,
		}
	}
	defer resp.Body.Close()

	outcome = ClassifyStatus(resp.StatusCode)
	if outcome != OutcomeSuccess {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)

		if outcome == OutcomeRetryable && resp.StatusCode == http.StatusTooManyRequests && c.throttle != nil {
			if err := c.throttle.RecordRateLimited(ctx, resp.Header.Get("Retry-After")); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to record rate limit cool-off")
			}
		}

		return nil, nil, outcome, &RequestError{
			StatusCode: resp.StatusCode,
			Outcome:    outcome,
			URL:        target,
			Message:    resp.Status,
		}
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		// A fault while streaming the body counts as a transport fault,
		// not a malformed page.
		outcome = ClassifyErr(readErr)
		if outcome == OutcomeSuccess {
			outcome = OutcomeFatal
		}
		return nil, nil, outcome, &RequestError{
			StatusCode: resp.StatusCode,
			Outcome:    outcome,
			URL:        target,
			Message:    "read response body",
			Err:        readErr,
		}
	}

	page, decodeErr := decodePage(body)
	if decodeErr != nil {
		// A 2xx response with an undecodable body will not improve on
		// retry.
		return nil, nil, OutcomeFatal, decodeErr
	}

	return page, body, OutcomeSuccess, nil
}

// buildURL resolves rawurl against the configured base and encodes params
// into the query string. Absolute URLs without params pass through
// verbatim, which keeps server-issued continuation URLs untouched.
func (c *Client) buildURL(rawurl string, params url.Values) (string, error) {
	abs := strings.HasPrefix(rawurl, "http://") || strings.HasPrefix(rawurl, "https://")
	if !abs {
		rawurl = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(rawurl, "/")
	}

	u, err := url.Parse(rawurl)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawurl, err)
	}

	if abs && len(params) == 0 {
		return rawurl, nil
	}

	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// retryReason labels a retryable failure for metrics.
func retryReason(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
		return "status"
	}
	return "network"
}

// sleepContext waits for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Close closes the client and releases resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetSleepFunc replaces the backoff sleep (for testing).
func (c *Client) SetSleepFunc(fn func(ctx context.Context, d time.Duration) error) {
	c.sleep = fn
}

// Throttle returns the cool-off tracker, or nil when Redis is not
// configured (for testing).
func (c *Client) Throttle() *throttle.Tracker {
	return c.throttle
}

// Cache returns the page cache manager, or nil when Redis is not
// configured (for testing).
func (c *Client) Cache() *cache.Manager {
	return c.cache
}
