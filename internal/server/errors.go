// Package server provides the HTTP API over the response parsing and
// artifact lifecycle engine.
package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jmorrow/designdeck/internal/parsing"
)

// ErrArtifactNotFound indicates the artifact does not exist
type ErrArtifactNotFound struct {
	ArtifactID string
}

func (e *ErrArtifactNotFound) Error() string {
	return fmt.Sprintf("artifact not found: %s", e.ArtifactID)
}

// ErrStateNotFound indicates no pipeline state has been saved for the project
type ErrStateNotFound struct {
	ProjectID uuid.UUID
}

func (e *ErrStateNotFound) Error() string {
	return fmt.Sprintf("pipeline state not found for project: %s", e.ProjectID)
}

// ErrPreviewNotApprovable indicates the approval target is an ephemeral
// preview record
type ErrPreviewNotApprovable struct {
	ArtifactID string
}

func (e *ErrPreviewNotApprovable) Error() string {
	return fmt.Sprintf("preview artifacts cannot be approved: %s", e.ArtifactID)
}

// ErrParse indicates the raw response text could not be parsed
type ErrParse struct {
	Result parsing.Result
}

func (e *ErrParse) Error() string {
	return e.Result.Error
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrArtifactNotFound, *ErrStateNotFound:
		return http.StatusNotFound
	case *ErrPreviewNotApprovable, *ErrParse:
		return http.StatusUnprocessableEntity
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
