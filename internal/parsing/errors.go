package parsing

import (
	"fmt"

	"github.com/jmorrow/designdeck/internal/schemas"
)

// ErrorKind classifies parse failures.
type ErrorKind string

const (
	// KindStructural means no valid JSON object could be recovered from the
	// text, even after repair and field scanning.
	KindStructural ErrorKind = "structural"
	// KindValidation means an object was decoded but violates the fixed
	// response shape.
	KindValidation ErrorKind = "validation"
)

// ParseError describes why a response could not be parsed. It travels
// inside the parse Result; the parse path recovers every failure locally
// and never lets one escape as a panic.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Fields  []schemas.FieldError
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error (%s): %s", e.Kind, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
