// Package errs defines the error taxonomy shared by the pipeline and
// failover packages and by the public client.
package errs

import (
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/pkg/errors"
)

// Kind classifies a ClientError the way spec's error taxonomy does: by what
// happened, not by Go type, so callers can switch on it without importing
// package internals.
type Kind string

const (
	InvalidArgument Kind = "invalid_argument"
	InvalidDigest   Kind = "invalid_digest"
	Expected        Kind = "expected"
	Transport       Kind = "transport"
	MidStream       Kind = "mid_stream"
	VoluntaryAbort  Kind = "voluntary_abort"
	Exhausted       Kind = "exhausted"
	Internal        Kind = "internal"
)

// ClientError is the single error type surfaced by every PublicAPI verb.
// Op names the failing step (e.g. "put", "keygen"), Cause is the
// underlying error (possibly nil for pure protocol errors), and Retryable
// mirrors spec §4.5's outcome table.
type ClientError struct {
	Kind       Kind
	Op         string
	Cause      error
	Retryable  bool
	StatusCode int // only meaningful when Kind == Expected or Transport(5xx)
	// Fatal is set on Transport/MidStream errors whose Cause was classified
	// by IsFatalTransport as a broken-socket error rather than a timeout or
	// other transient condition. It doesn't change Retryable (spec §4.5's
	// outcome table is keyed on pre-stream vs mid-stream, not on fatality),
	// but log sinks use it to tell a dead connection apart from a slow one.
	Fatal bool
}

func (e *ClientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sclient: %s %s: status %d", e.Op, e.Kind, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("sclient: %s %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("sclient: %s %s", e.Op, e.Kind)
}

func (e *ClientError) Unwrap() error { return e.Cause }

// New builds a ClientError, wrapping cause with context via pkg/errors so
// log sinks retain both the classification and the original stack.
func New(kind Kind, op string, retryable bool, cause error) *ClientError {
	if cause != nil {
		cause = errors.Wrapf(cause, "%s", op)
	}
	return &ClientError{Kind: kind, Op: op, Cause: cause, Retryable: retryable}
}

// NewExpected builds a non-retryable error carrying a definite HTTP status
// (404, other 4xx, or a DELETE reply other than 423/200).
func NewExpected(op string, status int) *ClientError {
	return &ClientError{Kind: Expected, Op: op, Retryable: false, StatusCode: status}
}

// NewUnexpected classifies a 5xx or socket-level failure that arrived after
// a response was already in flight; always retryable per spec §4.5.
func NewUnexpected(op string, status int, cause error) *ClientError {
	e := New(Transport, op, true, cause)
	e.StatusCode = status
	return e
}

// IsRetryable reports whether err (if a *ClientError) should trigger
// failover per spec §4.6.
func IsRetryable(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// IsFatalTransport reports whether a raw transport-level error indicates a
// broken socket that should never be retried on the same connection —
// grounded on the teacher's isFatalTransport predicate in cluster/errors.go,
// generalized from the teacher's custom frame errors to net/http's.
func IsFatalTransport(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return !nerr.Timeout()
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	return false
}
