package api

import (
	"fmt"

	"github.com/tphakala/retinascan/internal/errors"
)

// FailureKind tells transport problems apart from backend rejections.
type FailureKind int

const (
	// TransportFailure means no usable response arrived.
	TransportFailure FailureKind = iota
	// ApplicationFailure means a non-2xx status or an invalid success body.
	ApplicationFailure
)

func (k FailureKind) String() string {
	switch k {
	case TransportFailure:
		return "transport"
	case ApplicationFailure:
		return "application"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Failure is the error returned by every Client call.
type Failure struct {
	Kind       FailureKind
	Operation  string
	StatusCode int    // 0 for transport failures
	Message    string // server supplied error text, may be empty
	Err        error
}

func (f *Failure) Error() string {
	switch {
	case f.Kind == TransportFailure:
		return fmt.Sprintf("%s: transport failure: %v", f.Operation, f.Err)
	case f.Message != "":
		return fmt.Sprintf("%s: status %d: %s", f.Operation, f.StatusCode, f.Message)
	default:
		return fmt.Sprintf("%s: status %d: %v", f.Operation, f.StatusCode, f.Err)
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// ServerMessage returns the backend's error text carried by err, if any.
func ServerMessage(err error) string {
	if f, ok := AsFailure(err); ok && f.Kind == ApplicationFailure {
		return f.Message
	}
	return ""
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	f, ok := AsFailure(err)
	return ok && f.Kind == TransportFailure
}

func transportFailure(op string, err error) *Failure {
	return &Failure{
		Kind:      TransportFailure,
		Operation: op,
		Err: errors.New(err).
			Component("api").
			Category(errors.CategoryNetwork).
			Context("operation", op).
			Build(),
	}
}

func applicationFailure(op string, status int, message string, cause error) *Failure {
	if cause == nil {
		cause = fmt.Errorf("unexpected status %d", status)
	}
	return &Failure{
		Kind:       ApplicationFailure,
		Operation:  op,
		StatusCode: status,
		Message:    message,
		Err: errors.New(cause).
			Component("api").
			Category(errors.CategoryHTTP).
			Context("operation", op).
			Context("status_code", status).
			Build(),
	}
}
