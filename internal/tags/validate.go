package tags

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MinNameLength is the shortest accepted tag name, in characters.
const MinNameLength = 3

// MsgNameTooShort is shown next to the name field when validation fails.
const MsgNameTooShort = "Minimum 3 characters."

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("invalid tag")

// ValidationError reports a user-visible problem with a single form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrInvalid).
func (e *ValidationError) Unwrap() error { return ErrInvalid }

// ValidateName checks that name has at least MinNameLength characters. The
// name is accepted as typed; it is never trimmed or rewritten.
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) < MinNameLength {
		return &ValidationError{Field: "name", Message: MsgNameTooShort}
	}
	return nil
}
