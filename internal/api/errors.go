package api

import (
	"errors"
	"fmt"
	nethttp "net/http"
)

// ErrNotFound indicates the requested map, entry, or resource file does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized indicates the management API rejected the credentials.
var ErrUnauthorized = errors.New("unauthorized: check username and password")

// APIError is returned when the management API answers with an unexpected status code.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Is lets errors.Is match status-derived sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == nethttp.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == nethttp.StatusUnauthorized
	}
	return false
}

// IsNotFound reports whether err is a 404 from the management API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode extracts the HTTP status from an *APIError, or 0 if err is not one.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
