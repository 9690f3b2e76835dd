package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError marks a dataset download failure as retryable and
// carries the HTTP status that caused it, when one exists. The fetch
// client wraps 429 and 5xx responses this way so the retry loop can tell
// them apart from permanent failures like a 404 for a bad town code.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps err as retryable with an optional HTTP status.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether a download failure is worth another
// attempt: an explicit TransientError anywhere in the chain, a network
// timeout, a dropped connection, or a temporary DNS failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	// DNS before the generic net.Error check: a missing host is permanent,
	// a resolver timeout is not.
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// net/http flattens some connection failures to strings before they
	// reach us.
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection reset by peer",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether an HTTP status from a dataset
// host warrants a retry. Rate limiting and server-side errors do; client
// errors are permanent.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
