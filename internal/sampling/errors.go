package sampling

import (
	"errors"
	"fmt"
)

// ValidationError marks a caller-correctable input failure: invalid
// statistical parameters, missing method-specific inputs, a degenerate
// resolved size, or an unsupported method. The engine is deterministic and
// pure, so there is never anything to retry — the message is surfaced
// verbatim to the caller's UI.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// errValidation builds a ValidationError with a formatted message.
func errValidation(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
