// Package approval implements cascading artifact approval. Approving a phase
// approves every earlier unapproved phase in the active pipeline order with
// one batched write, so an approved later phase can never sit above an
// unapproved earlier one.
package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jmorrow/designdeck/internal/db"
	"github.com/jmorrow/designdeck/internal/pipeline"
	"github.com/jmorrow/designdeck/internal/types"
)

// Precondition failures. Both are checked before any mutation and are
// distinct from persistence errors.
var (
	// ErrPreviewArtifact is returned when the target ID carries the preview
	// prefix. Previews exist only in streaming state and are never approvable.
	ErrPreviewArtifact = errors.New("preview artifacts cannot be approved")

	// ErrArtifactNotFound is returned when the target ID is not in the set.
	ErrArtifactNotFound = errors.New("artifact not found")
)

// Approver coordinates the cascade.
type Approver struct {
	store  db.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewApprover creates an approver backed by the given store.
func NewApprover(store db.Store, logger *zap.Logger) *Approver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Approver{
		store:  store,
		logger: logger.With(zap.String("component", "approver")),
		now:    time.Now,
	}
}

// Approve approves the target artifact and every artifact at or before its
// position in the active mode's order that has content and is not already
// approved. The whole batch shares one timestamp and approver. The set is
// updated optimistically; if the persistence call fails, the set is restored
// to its exact prior state and the error is returned. A target whose type
// falls outside the mode's order is approved alone.
//
// Returns the IDs that were approved, in pipeline order.
func (a *Approver) Approve(ctx context.Context, set *Set, artifactID, approvedBy, mode string) ([]string, error) {
	if types.IsPreviewID(artifactID) {
		return nil, ErrPreviewArtifact
	}
	target := set.find(artifactID)
	if target == nil {
		return nil, ErrArtifactNotFound
	}

	ids := collectCascade(set, target, mode)
	if len(ids) == 0 {
		// Everything at or before the target is already approved.
		return nil, nil
	}

	approvedAt := a.now().UTC()
	err := applyOptimistic(
		set.snapshot,
		set.restore,
		func() { set.markApproved(ids, approvedBy, approvedAt) },
		func() error { return a.store.ApproveArtifacts(ctx, ids, approvedBy, approvedAt) },
	)
	if err != nil {
		a.logger.Error("approval cascade rolled back",
			zap.String("artifact_id", artifactID),
			zap.Int("cascade_size", len(ids)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to persist approval: %w", err)
	}

	a.logger.Info("artifacts approved",
		zap.String("artifact_id", artifactID),
		zap.String("artifact_type", target.ArtifactType),
		zap.Strings("approved_ids", ids),
		zap.String("approved_by", approvedBy))
	return ids, nil
}

// collectCascade gathers the IDs to approve, in pipeline order. Previews and
// artifacts without content never enter the batch.
func collectCascade(set *Set, target *types.Artifact, mode string) []string {
	phases := pipeline.UpTo(mode, target.ArtifactType)
	if phases == nil {
		if target.Status == types.StatusApproved {
			return nil
		}
		return []string{target.ID}
	}

	var ids []string
	for _, phase := range phases {
		for j := range set.items {
			a := &set.items[j]
			if a.ArtifactType != phase {
				continue
			}
			if types.IsPreviewID(a.ID) || a.Content == "" || a.Status == types.StatusApproved {
				continue
			}
			ids = append(ids, a.ID)
		}
	}
	return ids
}
