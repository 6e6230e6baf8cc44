package session

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/projectforge/forge/internal/coach"
)

// ErrEmptyInput is returned when a submit carries only whitespace. The
// session is left untouched.
var ErrEmptyInput = errors.New("empty input")

// ValidationError rejects input before any network call.
type ValidationError struct {
	MinLength int
	Length    int
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("Please provide at least %d characters for a full critique.", e.MinLength)
}

// ErrorMessage converts an error into the single human-readable line shown
// in the session. It returns "" for a nil error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *coach.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
