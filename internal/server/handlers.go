package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jmorrow/designdeck/internal/approval"
	"github.com/jmorrow/designdeck/internal/parsing"
	"github.com/jmorrow/designdeck/internal/pipeline"
	"github.com/jmorrow/designdeck/internal/types"
)

// TurnResponse is the payload for a successfully processed turn.
type TurnResponse struct {
	Message     string               `json:"message"`
	Artifact    *types.Artifact      `json:"artifact,omitempty"`
	State       *types.PipelineState `json:"state,omitempty"`
	NextActions []string             `json:"next_actions,omitempty"`
	NextPhase   string               `json:"next_phase,omitempty"`
	Strategy    string               `json:"strategy"`
}

// ApproveRequest is the optional body for the approve endpoint.
type ApproveRequest struct {
	Mode string `json:"mode,omitempty"`
}

// handleTurn processes one complete model response for a project
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req types.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "raw is required")
		return
	}

	turn, err := s.runTurn(r.Context(), projectID, req.Raw)
	if err != nil {
		s.turnError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, turn)
}

// runTurn parses raw response text and persists whatever it carries. The
// artifact reconcile and the state save run in parallel; the turn fails if
// either does. Once the parse succeeds the turn has arrived, so persistence
// runs on a context detached from the client connection and is never
// half-dropped on disconnect.
func (s *Server) runTurn(ctx context.Context, projectID uuid.UUID, raw string) (*TurnResponse, error) {
	start := time.Now()
	result := s.parser.Parse(raw)
	s.metrics.RecordParse(string(result.Strategy), result.OK, time.Since(start))
	if !result.OK {
		return nil, &ErrParse{Result: result}
	}
	resp := result.Response

	ctx = context.WithoutCancel(ctx)
	existing, err := s.store.ListArtifacts(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	var (
		saved *types.Artifact
		state *types.PipelineState
	)
	g, gctx := errgroup.WithContext(ctx)
	if resp.Artifact != nil {
		g.Go(func() error {
			var err error
			saved, err = s.reconciler.ReconcileAndSave(gctx, projectID, *resp.Artifact, existing)
			return err
		})
	}
	if resp.State != nil {
		g.Go(func() error {
			var err error
			state, err = s.sessions.SaveParsedState(gctx, projectID, resp.State)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if saved != nil {
		s.metrics.RecordArtifactSave(saved.ArtifactType, saved.Status)
	}

	turn := &TurnResponse{
		Message:     resp.Message,
		Artifact:    saved,
		State:       state,
		NextActions: resp.NextActions,
		Strategy:    string(result.Strategy),
	}

	// The next-phase hint follows this turn's mode when it carried one, the
	// stored mode otherwise. No state row at all just means STANDARD.
	mode := ""
	if state != nil {
		mode = state.Mode
	} else if stored, err := s.store.GetPipelineState(ctx, projectID); err == nil && stored != nil {
		mode = stored.Mode
	}
	if next, ok := pipeline.Next(mode, mergeSaved(existing, saved)); ok {
		turn.NextPhase = next
	}
	return turn, nil
}

// mergeSaved returns the artifact set with saved replacing its type's entry.
func mergeSaved(existing []types.Artifact, saved *types.Artifact) []types.Artifact {
	if saved == nil {
		return existing
	}
	out := append([]types.Artifact(nil), existing...)
	for i := range out {
		if out[i].ArtifactType == saved.ArtifactType {
			out[i] = *saved
			return out
		}
	}
	return append(out, *saved)
}

// turnError writes the failure for a turn. Parse failures carry the
// diagnostic and the raw text so clients can show it and retry explicitly.
func (s *Server) turnError(w http.ResponseWriter, err error) {
	var pe *ErrParse
	if errors.As(err, &pe) {
		s.jsonResponse(w, http.StatusUnprocessableEntity, parseFailureBody(pe.Result))
		return
	}
	s.errorResponse(w, HTTPStatus(err), err.Error())
}

func parseFailureBody(result parsing.Result) map[string]any {
	body := map[string]any{
		"error":       result.Error,
		"raw_content": result.Raw,
	}
	if result.Err != nil {
		body["kind"] = string(result.Err.Kind)
		if len(result.Err.Fields) > 0 {
			body["fields"] = result.Err.Fields
		}
	}
	return body
}

// handlePreview builds a merged preview for partial streamed text
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req types.PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "partial is required")
		return
	}

	existing, err := s.store.ListArtifacts(r.Context(), projectID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	merged := s.previews.Build(req.Partial, existing)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"artifacts": merged,
		"count":     len(merged),
	})
}

// handleListArtifacts returns the persisted artifacts for a project
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	artifacts, err := s.store.ListArtifacts(r.Context(), projectID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"artifacts": artifacts,
		"count":     len(artifacts),
	})
}

// handleGetState returns the pipeline state for a project
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	state, err := s.store.GetPipelineState(r.Context(), projectID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if state == nil {
		serr := &ErrStateNotFound{ProjectID: projectID}
		s.errorResponse(w, HTTPStatus(serr), serr.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, state)
}

// handleListVersions returns the immutable version history of an artifact
func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	artifactID := r.PathValue("artifact_id")
	if artifactID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Artifact ID is required")
		return
	}

	artifact, err := s.store.GetArtifact(r.Context(), artifactID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if artifact == nil {
		serr := &ErrArtifactNotFound{ArtifactID: artifactID}
		s.errorResponse(w, HTTPStatus(serr), serr.Error())
		return
	}

	versions, err := s.store.ListVersions(r.Context(), artifactID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"artifact_id": artifactID,
		"versions":    versions,
		"count":       len(versions),
	})
}

// handleApprove approves an artifact and everything before it in the active
// pipeline order
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	artifactID := r.PathValue("artifact_id")
	if artifactID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Artifact ID is required")
		return
	}
	// Previews are refused before any store hit.
	if types.IsPreviewID(artifactID) {
		serr := &ErrPreviewNotApprovable{ArtifactID: artifactID}
		s.metrics.RecordApproval(0, serr)
		s.errorResponse(w, HTTPStatus(serr), serr.Error())
		return
	}

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Mode != "" && !types.ValidMode(req.Mode) {
		serr := &ErrValidation{Field: "mode", Message: "must be STANDARD or QUICK"}
		s.errorResponse(w, HTTPStatus(serr), serr.Error())
		return
	}

	target, err := s.store.GetArtifact(r.Context(), artifactID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if target == nil {
		serr := &ErrArtifactNotFound{ArtifactID: artifactID}
		s.metrics.RecordApproval(0, serr)
		s.errorResponse(w, HTTPStatus(serr), serr.Error())
		return
	}

	existing, err := s.store.ListArtifacts(r.Context(), target.ProjectID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	mode := req.Mode
	if mode == "" {
		if state, err := s.store.GetPipelineState(r.Context(), target.ProjectID); err == nil && state != nil {
			mode = state.Mode
		}
	}

	approvedBy := s.identity.ApproverName(r)
	set := approval.NewSet(existing)
	ids, err := s.approver.Approve(r.Context(), set, artifactID, approvedBy, mode)
	s.metrics.RecordApproval(len(ids), err)
	if err != nil {
		switch {
		case errors.Is(err, approval.ErrPreviewArtifact):
			s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, approval.ErrArtifactNotFound):
			s.errorResponse(w, http.StatusNotFound, err.Error())
		default:
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if ids == nil {
		ids = []string{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"approved_ids": ids,
		"approved_by":  approvedBy,
		"artifacts":    set.Items(),
	})
}
