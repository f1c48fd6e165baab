// Package reconcile applies parsed artifacts to the persisted artifact set.
// For each (project, artifact type) pair at most one live record exists; the
// reconciler decides between create, update, and no-op, and keeps an
// append-only version history of every content overwrite.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmorrow/designdeck/internal/db"
	"github.com/jmorrow/designdeck/internal/types"
)

// Reconciler persists parsed artifacts.
type Reconciler struct {
	store  db.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewReconciler creates a reconciler backed by the given store.
func NewReconciler(store db.Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:  store,
		logger: logger.With(zap.String("component", "reconciler")),
		now:    time.Now,
	}
}

// ReconcileAndSave folds one parsed artifact into the project's persisted
// set. existing is the current full set for the project; the caller loads it
// once per turn. The returned record is the live row after the call:
//
//   - no record of parsed.Type exists: insert it at version 1, status draft;
//   - the existing record has identical content: return it unchanged;
//   - otherwise: append a history row holding the previous content, then
//     bump the version and overwrite. An approved record turns stale with a
//     reason; drafts and stale records return to draft.
//
// Artifacts are never hard-deleted here.
func (r *Reconciler) ReconcileAndSave(ctx context.Context, projectID uuid.UUID, parsed types.ParsedArtifact, existing []types.Artifact) (*types.Artifact, error) {
	var current *types.Artifact
	for i := range existing {
		if existing[i].ArtifactType == parsed.Type {
			current = &existing[i]
			break
		}
	}

	now := r.now().UTC()

	if current == nil {
		created := &types.Artifact{
			ID:           types.NewArtifactID(),
			ProjectID:    projectID,
			ArtifactType: parsed.Type,
			Title:        parsed.Title,
			Content:      parsed.Content,
			Status:       types.StatusDraft,
			Version:      1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.store.InsertArtifact(ctx, created); err != nil {
			return nil, fmt.Errorf("failed to save new %s artifact: %w", parsed.Type, err)
		}
		r.logger.Info("artifact created",
			zap.String("artifact_id", created.ID),
			zap.String("artifact_type", created.ArtifactType))
		return created, nil
	}

	if current.Content == parsed.Content {
		r.logger.Debug("artifact content unchanged",
			zap.String("artifact_id", current.ID),
			zap.String("artifact_type", current.ArtifactType),
			zap.Int("version", current.Version))
		return current.Clone(), nil
	}

	// The history row captures the record as it was before this overwrite.
	snapshot := &types.ArtifactVersion{
		ID:         types.NewArtifactID(),
		ArtifactID: current.ID,
		Version:    current.Version,
		Title:      current.Title,
		Content:    current.Content,
		CreatedAt:  now,
	}
	if err := r.store.AppendVersion(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to record version history for %s: %w", current.ID, err)
	}

	updated := current.Clone()
	updated.Title = parsed.Title
	updated.Content = parsed.Content
	updated.Version = current.Version + 1
	updated.UpdatedAt = now
	if current.Status == types.StatusApproved {
		reason := types.StaleReasonContentUpdated
		updated.Status = types.StatusStale
		updated.StaleReason = &reason
	} else {
		updated.Status = types.StatusDraft
		updated.StaleReason = nil
	}

	if err := r.store.UpdateArtifact(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update %s artifact: %w", parsed.Type, err)
	}
	r.logger.Info("artifact updated",
		zap.String("artifact_id", updated.ID),
		zap.String("artifact_type", updated.ArtifactType),
		zap.Int("version", updated.Version),
		zap.String("status", updated.Status))
	return updated, nil
}
