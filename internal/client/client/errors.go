package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoData is returned when a successful response carries no payload.
	ErrNoData = errors.New("response carries no data")
)

// APIError is an application-level failure reported by the backend.
// Message is empty when the backend did not provide one.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "" && e.Code != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
}

// Is makes a 401 APIError match ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// MessageOf returns the server-provided message carried by err, if any.
func MessageOf(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}
