package pipeline

import (
	"errors"
	"net/http"
)

// Domain errors for pipeline operations.
var (
	ErrEmptyContent  = errors.New("content cannot be empty")
	ErrNoAgent       = errors.New("no agent registered for format")
	ErrInvalidUpload = errors.New("file must be text or PDF format")
)

// MapHTTPStatus maps pipeline domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmptyContent), errors.Is(err, ErrInvalidUpload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
