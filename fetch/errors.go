package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind is the closed set of call failure categories
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindDNS
	KindRateLimited
	KindHTTP
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindDNS:
		return "dns"
	case KindRateLimited:
		return "rate_limited"
	case KindHTTP:
		return "http"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is a categorized call failure
type Error struct {
	Err        error  // underlying error, if any
	RetryAfter string // Retry-After header of a 429 response
	Kind       Kind
	Status     int // HTTP status, 0 if no response was received
}

func (e *Error) Error() string {
	msg := e.Kind.String()

	if e.Status != 0 {
		msg = fmt.Sprintf("%s, status %d", msg, e.Status)
	}

	if e.RetryAfter != "" {
		msg = fmt.Sprintf("%s, retry after %ss", msg, e.RetryAfter)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Blocked returns true if the upstream answered with an error status (>= 400)
func (e *Error) Blocked() bool {
	return e.Status >= http.StatusBadRequest
}

// AsError extracts the categorized failure from err.
// Uncategorized errors are reported as KindUnknown
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var fErr *Error
	if errors.As(err, &fErr) {
		return fErr
	}

	return &Error{
		Kind: KindUnknown,
		Err:  err,
	}
}

// classifyTransport categorizes a failure that produced no response
func classifyTransport(err error) *Error {
	kind := KindUnknown

	var (
		netErr net.Error
		dnsErr *net.DNSError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	case errors.As(err, &dnsErr):
		kind = KindDNS
	}

	return &Error{
		Kind: kind,
		Err:  err,
	}
}

// classifyStatus categorizes a non-2xx response
func classifyStatus(resp *http.Response) *Error {
	out := &Error{
		Kind:   KindUnknown,
		Status: resp.StatusCode,
		Err:    fmt.Errorf("unexpected status: %s", resp.Status),
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		out.Kind = KindRateLimited
		out.RetryAfter = resp.Header.Get("Retry-After")
	case resp.StatusCode >= http.StatusBadRequest:
		out.Kind = KindHTTP
	}

	return out
}
