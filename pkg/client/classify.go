package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
)

// Outcome classifies the result of a single HTTP attempt.
type Outcome int

const (
	// OutcomeSuccess means the attempt produced a decodable 2xx response.
	OutcomeSuccess Outcome = iota

	// OutcomeRetryable means the attempt failed in a way another attempt
	// may resolve: rate limiting, transient server errors, connection
	// faults, or timeouts.
	OutcomeRetryable

	// OutcomeFatal means further attempts cannot succeed: client errors,
	// malformed bodies, or non-transient transport faults.
	OutcomeFatal
)

// String returns the outcome's metric and log label.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// retryableStatuses are the HTTP status codes worth another attempt.
var retryableStatuses = map[int]struct{}{
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

// ClassifyStatus classifies an HTTP status code. Any 2xx is a success,
// 429 and the transient 5xx family are retryable, everything else is
// fatal.
func ClassifyStatus(code int) Outcome {
	if code >= 200 && code < 300 {
		return OutcomeSuccess
	}
	if _, ok := retryableStatuses[code]; ok {
		return OutcomeRetryable
	}
	return OutcomeFatal
}

// ClassifyErr classifies a transport fault from an attempt that produced
// no usable response. Timeouts, connection faults, DNS failures, and
// truncated transfers are retryable. Context cancellation and anything
// unrecognized is fatal.
func ClassifyErr(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}

	if errors.Is(err, context.Canceled) {
		return OutcomeFatal
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeRetryable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return OutcomeRetryable
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return OutcomeRetryable
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return OutcomeRetryable
	}

	// A transfer cut off mid-body is a connection fault.
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return OutcomeRetryable
	}

	return OutcomeFatal
}
