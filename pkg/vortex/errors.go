package vortex

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidAPIKey is returned when the API key cannot be used for signing
var ErrInvalidAPIKey = errors.New("invalid Vortex API key")

// APIError is a non-2xx response from the Vortex API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("vortex API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("vortex API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an upstream 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
