// Package testutil provides testing utilities for the CourtListener
// fetcher.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// APIPrefix is the path prefix the mock serves, matching the real API.
const APIPrefix = "/api/rest/v3"

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockCourtListener is a configurable mock CourtListener API server.
type MockCourtListener struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	failRemaining int
	failStatus    int

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
	LastQuery         url.Values
	RequestedURLs     []string
}

// NewMockCourtListener creates a new mock API server.
func NewMockCourtListener() *MockCourtListener {
	mock := &MockCourtListener{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.LastQuery = r.URL.Query()
		mock.RequestedURLs = append(mock.RequestedURLs, r.URL.String())

		// Scripted failures run before any handler
		if mock.failRemaining > 0 {
			mock.failRemaining--
			status := mock.failStatus
			mock.mu.Unlock()
			w.WriteHeader(status)
			return
		}
		mock.mu.Unlock()

		// Check for custom handler
		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		// Default handler
		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCourtListener) URL() string {
	return m.server.URL
}

// BaseURL returns the API root the client should be configured with.
func (m *MockCourtListener) BaseURL() string {
	return m.server.URL + APIPrefix
}

// Close shuts down the mock server.
func (m *MockCourtListener) Close() {
	m.server.Close()
}

// Reset clears all tracking counters and scripted failures.
func (m *MockCourtListener) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.LastQuery = nil
	m.RequestedURLs = nil
	m.failRemaining = 0
}

// SetHandler sets a custom handler for a specific path.
func (m *MockCourtListener) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockCourtListener) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// FailNext makes the next n requests return the given status before any
// handler runs, for retry tests.
func (m *MockCourtListener) FailNext(n, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRemaining = n
	m.failStatus = status
}

// ScriptOpinions serves the given pages from the opinions endpoint,
// chained through cursor continuation URLs the way the real API pages
// results.
func (m *MockCourtListener) ScriptOpinions(pages ...[]map[string]any) {
	total := 0
	for _, p := range pages {
		total += len(p)
	}

	m.SetHandler(APIPrefix+"/opinions/", func(w http.ResponseWriter, r *http.Request) {
		idx := 0
		if cursor := r.URL.Query().Get("cursor"); cursor != "" {
			fmt.Sscanf(cursor, "p%d", &idx)
		}

		if idx >= len(pages) {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		envelope := map[string]any{
			"count":   total,
			"results": pages[idx],
			"next":    nil,
		}
		if idx+1 < len(pages) {
			envelope["next"] = fmt.Sprintf("%s/opinions/?cursor=p%d", m.BaseURL(), idx+1)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(envelope)
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockCourtListener) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// defaultHandler serves a valid empty result page.
func (m *MockCourtListener) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"count": 0, "next": null, "results": []}`))
}

// Opinion builds a minimal opinion record for scripted pages.
func Opinion(id int, dateFiled string) map[string]any {
	return map[string]any{
		"id":           id,
		"absolute_url": fmt.Sprintf("/opinion/%d/case-%d/", id, id),
		"date_filed":   dateFiled,
		"plain_text":   fmt.Sprintf("Opinion text for case %d.", id),
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(retryAfter string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"detail": "Request was throttled."}`,
		Headers: map[string]string{
			"Retry-After":  retryAfter,
			"Content-Type": "application/json",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"detail": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}
