package state

import (
	"errors"

	"github.com/dmitrijs2005/todoclient/internal/client/client"
)

// ErrValidation is returned when input is rejected before any network call.
var ErrValidation = errors.New("validation failed")

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

func invalid(msg string) error {
	return &validationError{msg: msg}
}

// fallbacks are the messages shown when the server gives none.
type fallbacks struct {
	rejected string // the server answered but reported failure
	failed   string // no usable answer
}

var (
	loginMessages  = fallbacks{"Login failed", "An error occurred during login"}
	fetchMessages  = fallbacks{"Failed to fetch todos", "An error occurred while fetching todos"}
	createMessages = fallbacks{"Failed to create todo", "An error occurred while creating todo"}
	updateMessages = fallbacks{"Failed to update todo", "An error occurred while updating todo"}
	deleteMessages = fallbacks{"Failed to delete todo", "An error occurred while deleting todo"}
)

// message turns an operation error into the text stored as the current error.
func (f fallbacks) message(err error) string {
	var verr *validationError
	if errors.As(err, &verr) {
		return verr.msg
	}
	if msg, ok := client.MessageOf(err); ok {
		return msg
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 200 && apiErr.Status < 300 {
		return f.rejected
	}
	if errors.Is(err, client.ErrNoData) {
		return f.rejected
	}
	return f.failed
}
