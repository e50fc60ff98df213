package ingest

import (
	"errors"
	"fmt"
)

// ErrStore marks a reading that could not be persisted.
var ErrStore = errors.New("reading store unavailable")

// ValidationError describes a malformed reading. Nothing is stored or evaluated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid reading: %s", e.Reason)
	}
	return fmt.Sprintf("invalid reading: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
