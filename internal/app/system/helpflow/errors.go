// internal/app/system/helpflow/errors.go
package helpflow

import (
	"errors"
	"strings"

	"github.com/artisanbridge/artisanbridge/internal/app/system/inputval"
)

// Errors returned by Service. Their messages are safe to show to callers.
var (
	ErrNotFound        = errors.New("Help request not found")
	ErrProfileNotFound = errors.New("NGO profile not found for this user")
	ErrAtCapacity      = errors.New("You have reached your maximum capacity for this month")
	ErrAlreadyAssigned = errors.New("This request is already assigned to another NGO")
	ErrNotAvailable    = errors.New("This request is no longer available for assignment")
	ErrStatusChanged   = errors.New("The request was changed by someone else; reload and try again")
	ErrRequestClosed   = errors.New("This request is already closed")
	ErrNotInProgress   = errors.New("Request not found or not in progress")
)

// ValidationError carries field-level input errors.
type ValidationError struct {
	Errors []inputval.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, ", ")
}

func invalid(field, msg string) error {
	return &ValidationError{Errors: []inputval.FieldError{{Field: field, Message: msg}}}
}

// IsConflict reports whether err is one of the 409-class outcomes.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAtCapacity) ||
		errors.Is(err, ErrAlreadyAssigned) ||
		errors.Is(err, ErrNotAvailable) ||
		errors.Is(err, ErrStatusChanged) ||
		errors.Is(err, ErrRequestClosed)
}
