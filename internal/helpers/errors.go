package helpers

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// TimeoutError is raised when a call did not complete within its own
// timeout. It is kept apart from NetworkError so callers can decide whether
// the timeout is tolerable.
type TimeoutError struct {
	Verb  HttpCallerVerb
	Url   string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Request timed out after %ds.", int(math.Round(e.After.Seconds())))
}

// HttpError is a non-2xx response. Detail is the best human readable
// message the server gave us.
type HttpError struct {
	Verb       HttpCallerVerb
	Url        string
	StatusCode int
	Detail     string
}

func (e *HttpError) Error() string {
	return e.Detail
}

// NetworkError covers every transport failure that is not a timeout.
type NetworkError struct {
	Verb HttpCallerVerb
	Url  string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("Could not reach %s: %s", e.host(), e.reason())
}

func (e *NetworkError) host() string {
	if parsed, err := url.Parse(e.Url); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	if e.Url != "" {
		return e.Url
	}
	return "the server"
}

func (e *NetworkError) reason() string {
	var dnsErr *net.DNSError
	switch {
	case e.Err == nil:
		return "unknown error"
	case errors.Is(e.Err, syscall.ECONNREFUSED):
		return "connection refused"
	case errors.Is(e.Err, syscall.ECONNRESET):
		return "connection reset"
	case errors.Is(e.Err, syscall.ENETUNREACH), errors.Is(e.Err, syscall.EHOSTUNREACH):
		return "network unreachable"
	case errors.As(e.Err, &dnsErr):
		return "host not found"
	}

	// innermost message, without the verb and url the transport prepends
	cause := e.Err
	for next := errors.Unwrap(cause); next != nil; next = errors.Unwrap(cause) {
		cause = next
	}
	return cause.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

func IsUnauthorized(err error) bool {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

func AsHttpError(err error) (*HttpError, bool) {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
