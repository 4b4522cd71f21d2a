package templates

import (
	"errors"
	"fmt"
)

const (
	OpFetch  = "fetch"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

var (
	ErrNameRequired = errors.New("template name is required")
	ErrInvalidID    = errors.New("template id must be positive")
)

type (
	// StatusError is a non-2xx response to a template request. The body is
	// never inspected.
	StatusError struct {
		StatusCode int
	}

	// DecodeError is a 2xx response whose body could not be decoded.
	DecodeError struct {
		Err error
	}

	// OpError tags a failure with the store operation that produced it, so
	// a failed create can be told apart from a failed listing.
	OpError struct {
		Op  string
		Err error
	}
)

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error %d", e.StatusCode)
}

func (e *DecodeError) Error() string {
	return "decode response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *OpError) Error() string {
	return e.Op + " templates: " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsOp reports whether err came from the store operation op.
func IsOp(err error, op string) bool {
	var opErr *OpError
	return errors.As(err, &opErr) && opErr.Op == op
}

// message is the human-readable text recorded on a status scope.
func message(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}
