package types

import (
	"github.com/go-playground/validator/v10"
)

// TurnRequest carries one raw assistant response for a project turn.
type TurnRequest struct {
	Raw string `json:"raw" validate:"required,min=1"`
}

// PreviewRequest carries accumulated partial response text for a preview.
type PreviewRequest struct {
	Partial string `json:"partial" validate:"required,min=1"`
}

// Validate validates the TurnRequest using the validator.
func (r *TurnRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the PreviewRequest using the validator.
func (r *PreviewRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
