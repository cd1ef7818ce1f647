package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure reported by the meal API or by the transport.
// Status is zero for network/timeout failures.
type Error struct {
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("meal api: %v", e.Err)
	case e.Detail != "":
		return fmt.Sprintf("meal api: %d: %s", e.Status, e.Detail)
	default:
		return fmt.Sprintf("meal api: status %d", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the text to surface to the user: the server's detail for
// validation-class failures, generic wording otherwise.
func (e *Error) Message() string {
	switch {
	case e.Status == 0:
		return "Could not reach the meal service. Please try again."
	case e.Status >= 500:
		return "The meal service had a problem. Please try again."
	case e.Detail != "":
		return e.Detail
	default:
		return "Request failed. Please try again."
	}
}

// IsUnauthorized reports whether err is a 401-class authorization failure,
// the only error class that forces a logout.
func IsUnauthorized(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// IsNetwork reports whether err never produced an HTTP response
// (connection refused, DNS failure, timeout).
func IsNetwork(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == 0
}

// UserMessage extracts a user-facing message from any error returned by the
// client; non-API errors collapse to a generic failure line.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message()
	}
	return "Request failed. Please try again."
}
