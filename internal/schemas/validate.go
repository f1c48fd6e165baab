// Package schemas provides JSON Schema validation for the fixed assistant
// response shape. The shape is code-defined and compiled once; there is no
// per-call schema loading.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed response.schema.json
var responseSchemaJSON string

// MaxResponseChars is the hard ceiling on response size. Larger inputs are
// rejected before any parse or validation attempt.
const MaxResponseChars = 500000

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors compiling the schema itself.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchemaJSON))
	})
	if schemaErr != nil {
		return nil, &SchemaLoadError{
			Path:    "response.schema.json",
			Message: "failed to compile embedded schema",
			Cause:   schemaErr,
		}
	}
	return schema, nil
}

// WithinSizeLimit reports whether a document is small enough to validate.
// Byte length bounds rune count from above, so the rune count only needs
// checking for oversized byte lengths.
func WithinSizeLimit(s string) bool {
	return len(s) <= MaxResponseChars || utf8.RuneCountInString(s) <= MaxResponseChars
}

// ValidateResponse validates a JSON document against the fixed response
// shape. A nil return means the document is valid. Violations come back as
// a *ValidationError carrying one human-readable message per field.
func ValidateResponse(jsonContent string) error {
	if !WithinSizeLimit(jsonContent) {
		return &ValidationError{Errors: []FieldError{{
			Field:   "(root)",
			Message: fmt.Sprintf("response exceeds maximum size of %d characters", MaxResponseChars),
		}}}
	}

	s, err := compiledSchema()
	if err != nil {
		return err
	}

	result, err := s.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{
			Field:   "(root)",
			Message: fmt.Sprintf("document is not valid JSON: %v", err),
		}}}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
