package transport

import (
	"errors"
	"net"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// ErrKind classifies a transport failure so callers can decide whether
// to retry, surface a user-facing message, or treat it as fatal.
type ErrKind int

const (
	ErrKindOther ErrKind = iota
	ErrKindRefused
	ErrKindHostNotFound
	ErrKindTimeout
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindRefused:
		return "connection refused"
	case ErrKindHostNotFound:
		return "host not found"
	case ErrKindTimeout:
		return "timeout"
	default:
		return "transport error"
	}
}

// classify maps the underlying net error into an ErrKind and wraps it
// with a message naming host and port, per SPEC_FULL.md §4.2.
func classify(cfg Config, err error) error {
	if err == nil {
		return nil
	}

	kind := ErrKindOther
	var dnsErr *net.DNSError
	var opErr *net.OpError
	switch {
	case errors.As(err, &dnsErr):
		kind = ErrKindHostNotFound
	case errors.As(err, &opErr):
		if opErr.Timeout() {
			kind = ErrKindTimeout
		} else if isRefused(opErr) {
			kind = ErrKindRefused
		}
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = ErrKindTimeout
		}
	}

	return &Error{
		Kind: kind,
		Host: cfg.Host,
		Port: cfg.Port,
		err:  err,
	}
}

func isRefused(opErr *net.OpError) bool {
	return opErr.Op == "dial" && opErr.Err != nil && strings.Contains(opErr.Err.Error(), "refused")
}

// Error is the wrapped, classified transport failure.
type Error struct {
	Kind ErrKind
	Host string
	Port int
	err  error
}

func (e *Error) Error() string {
	return pkgerrors.Wrapf(e.err, "rdbg server %s:%d: %s", e.Host, e.Port, e.Kind).Error()
}

func (e *Error) Unwrap() error {
	return e.err
}
