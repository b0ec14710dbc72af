package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx response decoded from the backend's error body.
// Malformed bodies still produce an Error carrying the status code.
type Error struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// IsUnauthorized reports whether err is a 401 the client could not
// recover from.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}
