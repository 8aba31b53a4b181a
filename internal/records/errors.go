package records

import (
	"errors"
	"net/http"
)

// Domain errors for record operations.
var (
	ErrNotFound = errors.New("record not found")
)

// MapHTTPStatus maps record domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
