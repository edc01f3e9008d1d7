package repository

import (
	"errors"
	"fmt"
)

// errMalformedBody marks a 2xx response whose body could not be decoded.
var errMalformedBody = errors.New("malformed response body")

// APIError describes a failed call to the remote API. Status is 0 when no response arrived
// (connection refused, DNS failure, timeout).
type APIError struct {
	Operation string
	Status    int
	Code      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d (%s): %s", e.Operation, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Operation, e.Status, msg)
}

// Unwrap returns the transport error, if any.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
