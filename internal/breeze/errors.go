package breeze

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel kinds. Every error returned by a Client satisfies errors.Is with
// exactly one of ErrNotFound or ErrUpstream, or is a transport error.
var (
	ErrNotFound           = errors.New("breeze: not found")
	ErrUpstream           = errors.New("breeze: upstream rejected request")
	ErrMissingCredentials = errors.New("breeze: base url and api key are required")
)

// APIError is a failure reported by the Breeze API itself, either through an
// HTTP status or an error payload in an otherwise successful response.
type APIError struct {
	Op      string
	Status  int
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap exposes the kind for errors.Is.
func (e *APIError) Unwrap() error { return e.Kind }

func newAPIError(op string, status int, kind error, msg string) *APIError {
	if msg == "" {
		msg = kind.Error()
	}
	return &APIError{Op: op, Status: status, Message: msg, Kind: kind}
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRejected reports whether err came back from Breeze rather than from the
// transport (DNS, TLS, timeouts).
func IsRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
