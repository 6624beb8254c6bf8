package dexscreener

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fetch failure for retry decisions.
type ErrorKind int

const (
	// KindTimeout covers request timeouts and transport-level failures.
	KindTimeout ErrorKind = iota
	// KindRateLimited is HTTP 429.
	KindRateLimited
	// KindServerError is any 5xx, plus the CDN edge statuses (403/404/530)
	// the feed is known to return transiently.
	KindServerError
	// KindClientError is a non-transient 4xx (malformed request, auth).
	KindClientError
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindClientError:
		return "client_error"
	}
	return "unknown"
}

// FetchError is a classified feed failure.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed (%s, status %d)", e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch failed (%s)", e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth another attempt.
// Client errors are final; everything else is transient.
func (e *FetchError) Retryable() bool {
	return e.Kind != KindClientError
}

// edge cache statuses the upstream intermittently serves for valid URLs
var edgeStatuses = map[int]bool{403: true, 404: true, 530: true}

func classifyStatus(code int) *FetchError {
	switch {
	case code == 429:
		return &FetchError{Kind: KindRateLimited, StatusCode: code}
	case code >= 500, edgeStatuses[code]:
		return &FetchError{Kind: KindServerError, StatusCode: code}
	default:
		return &FetchError{Kind: KindClientError, StatusCode: code}
	}
}

// classifyTransport maps transport-level failures (client timeout, DNS,
// reset connections) to KindTimeout: all of them mean "no usable HTTP
// response inside the deadline" and all are retryable.
func classifyTransport(err error) *FetchError {
	return &FetchError{Kind: KindTimeout, Err: err}
}

// IsRetryable is the retry predicate for feed requests; non-FetchError
// values (context cancellation during a pass) are not retried.
func IsRetryable(err error) bool {
	var ferr *FetchError
	if errors.As(err, &ferr) {
		return ferr.Retryable()
	}
	return false
}
