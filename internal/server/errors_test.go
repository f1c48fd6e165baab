package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jmorrow/designdeck/internal/parsing"
)

func TestErrArtifactNotFound(t *testing.T) {
	err := &ErrArtifactNotFound{ArtifactID: "abc-123"}
	assert.Equal(t, "artifact not found: abc-123", err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrStateNotFound(t *testing.T) {
	projectID := uuid.New()
	err := &ErrStateNotFound{ProjectID: projectID}
	assert.Equal(t, "pipeline state not found for project: "+projectID.String(), err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrPreviewNotApprovable(t *testing.T) {
	err := &ErrPreviewNotApprovable{ArtifactID: "preview-phase_1_contract"}
	assert.Equal(t, "preview artifacts cannot be approved: preview-phase_1_contract", err.Error())
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(err))
}

func TestErrParse(t *testing.T) {
	err := &ErrParse{Result: parsing.Result{Error: "parse error (structural): candidate text is not valid JSON"}}
	assert.Equal(t, "parse error (structural): candidate text is not valid JSON", err.Error())
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "mode", Message: "must be STANDARD or QUICK"}
	assert.Equal(t, "validation error: mode - must be STANDARD or QUICK", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "ErrArtifactNotFound",
			err:      &ErrArtifactNotFound{ArtifactID: "abc"},
			expected: http.StatusNotFound,
		},
		{
			name:     "ErrStateNotFound",
			err:      &ErrStateNotFound{ProjectID: uuid.New()},
			expected: http.StatusNotFound,
		},
		{
			name:     "ErrPreviewNotApprovable",
			err:      &ErrPreviewNotApprovable{ArtifactID: "preview-x"},
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "ErrParse",
			err:      &ErrParse{},
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "ErrValidation",
			err:      &ErrValidation{Field: "mode", Message: "unknown"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "Unknown error",
			err:      assert.AnError,
			expected: http.StatusInternalServerError,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}
