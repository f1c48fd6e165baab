package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmorrow/designdeck/internal/preview"
)

// handleTurnStream consumes a model response as it streams in, emitting a
// merged preview frame per chunk, then runs the full turn once the body
// ends. The complete event carries the persisted outcome; clients discard
// the turn's preview state when they see it.
func (s *Server) handleTurnStream(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	// Previews merge over the set as it stood when the stream opened. The
	// final reconcile rereads, so a stale set here only affects preview
	// frames, never persistence.
	existing, err := s.store.ListArtifacts(r.Context(), projectID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var accumulated strings.Builder
	buf := make([]byte, 4096)
	for {
		n, readErr := r.Body.Read(buf)
		if n > 0 {
			accumulated.Write(buf[:n])
			if utf8.RuneCountInString(accumulated.String()) >= preview.MinPartialChars {
				sse.WritePreview(s.previews.Build(accumulated.String(), existing))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			s.logger.Warn("response stream aborted", zap.Error(readErr))
			sse.WriteError("stream read failed: " + readErr.Error())
			return
		}
	}

	turn, err := s.runTurn(r.Context(), projectID, accumulated.String())
	if err != nil {
		var pe *ErrParse
		if errors.As(err, &pe) {
			sse.WriteEvent("error", parseFailureBody(pe.Result)) //nolint:errcheck
			return
		}
		sse.WriteError(err.Error())
		return
	}
	sse.WriteComplete(turn)
}
