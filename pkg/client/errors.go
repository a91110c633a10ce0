package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when the attempt budget is spent on
	// retryable failures.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled before
	// an attempt or during a backoff sleep.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrMalformedResponse is returned when a 2xx response body is not a
	// JSON object carrying a results array.
	ErrMalformedResponse = errors.New("malformed response body")
)

// RequestError describes a failed HTTP attempt with its classification.
type RequestError struct {
	StatusCode int
	Outcome    Outcome
	URL        string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("courtlistener %s error (status %d): %s: %v",
			e.Outcome, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("courtlistener %s error (status %d): %s",
		e.Outcome, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}
