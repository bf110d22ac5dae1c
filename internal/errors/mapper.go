// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// StatusError carries an HTTP status alongside the message the client sees.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// Map converts repo/infra errors into HTTP-friendly status errors.
// Keeps service and handler layers clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &StatusError{Status: http.StatusNotFound, Message: "record not found"}

	case errors.Is(err, context.DeadlineExceeded):
		return &StatusError{Status: http.StatusGatewayTimeout, Message: "request timed out"}

	case errors.Is(err, context.Canceled):
		// 499: client closed request (nginx convention)
		return &StatusError{Status: 499, Message: "request was canceled"}

	default:
		// fallback → bubble up error message for debugging
		return &StatusError{Status: http.StatusInternalServerError, Message: err.Error()}
	}
}

// StatusOf extracts the HTTP status for an error, defaulting to 500.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return http.StatusInternalServerError
}

// InvalidArgument creates a 400 error.
// Use this in the handler layer for bad input validation.
func InvalidArgument(msg string) error {
	return &StatusError{Status: http.StatusBadRequest, Message: msg}
}
