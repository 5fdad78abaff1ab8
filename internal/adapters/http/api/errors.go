package api

import (
	"errors"

	"github.com/okian/breezeapi/internal/breeze"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("upstream failure")
)

// Error carries the operation that failed and the kind used to pick the
// HTTP status. Err is the cause and may be nil.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Kind == nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// WrapKind annotates err with op and kind. A nil err stays nil.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// publicMessage is the text placed in an error response body: the innermost
// cause for facade errors, the Breeze message for upstream rejections.
func publicMessage(err error) string {
	var apiErr *breeze.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Err != nil {
			return publicMessage(e.Err)
		}
		if e.Kind != nil {
			return e.Kind.Error()
		}
	}
	return err.Error()
}
