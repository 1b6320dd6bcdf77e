package caldav

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an unexpected CalDAV response status.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("caldav: %s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("caldav: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a missing resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates rejected credentials.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}
