package hazard

import (
	"errors"
	"strings"
)

var (
	// ErrNotAuthenticated is returned when an operation needs credentials and none are stored.
	ErrNotAuthenticated = errors.New("login required")

	// ErrUnauthorized is returned when the server rejects the stored token.
	ErrUnauthorized = errors.New("server rejected credentials")

	// ErrNotFound is returned when a detail query yields no record.
	ErrNotFound = errors.New("no data found")

	// ErrInvalidID is returned before any I/O when an ID is not an integer.
	ErrInvalidID = errors.New("id must be an integer")

	// ErrMissingLoginFields is returned when email or password is blank.
	ErrMissingLoginFields = errors.New("Email and password are required.")
)

// APIError carries the messages of a structured error response.
type APIError struct {
	Messages []string
}

func (e *APIError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// IsUserFacing reports whether err carries a message that may be shown verbatim.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) ||
		errors.Is(err, ErrMissingLoginFields) ||
		errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrNotFound)
}
