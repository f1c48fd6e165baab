// Package session tracks per-project pipeline state. State metadata rides
// along in model responses, with or without an artifact, and is persisted
// with upsert semantics so concurrent saves cannot race into duplicate rows.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmorrow/designdeck/internal/db"
	"github.com/jmorrow/designdeck/internal/parsing"
	"github.com/jmorrow/designdeck/internal/types"
)

// Tracker extracts and persists pipeline state.
type Tracker struct {
	parser *parsing.Parser
	store  db.Store
	logger *zap.Logger
}

// NewTracker creates a tracker backed by the given parser and store.
func NewTracker(parser *parsing.Parser, store db.Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		parser: parser,
		store:  store,
		logger: logger.With(zap.String("component", "session")),
	}
}

// ExtractAndSaveState parses raw text and persists any state block it
// carries. Absence of state is not an error: unparseable text and responses
// without a state block both return (nil, nil). Last write wins.
func (t *Tracker) ExtractAndSaveState(ctx context.Context, projectID uuid.UUID, raw string) (*types.PipelineState, error) {
	result := t.parser.Parse(raw)
	if !result.OK || result.Response.State == nil {
		return nil, nil
	}
	return t.SaveParsedState(ctx, projectID, result.Response.State)
}

// SaveParsedState persists an already-parsed state block. Callers that have
// run the parser themselves use this to avoid a second parse of the same
// text. A nil state returns (nil, nil).
func (t *Tracker) SaveParsedState(ctx context.Context, projectID uuid.UUID, parsed *types.ParsedState) (*types.PipelineState, error) {
	if parsed == nil {
		return nil, nil
	}

	stored, err := t.store.UpsertPipelineState(ctx, &types.PipelineState{
		ProjectID:        projectID,
		Mode:             parsed.Mode,
		PipelineStage:    parsed.PipelineStage,
		ThresholdPercent: parsed.ThresholdPercent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save pipeline state: %w", err)
	}

	t.logger.Info("pipeline state saved",
		zap.String("project_id", projectID.String()),
		zap.String("mode", stored.Mode),
		zap.String("pipeline_stage", stored.PipelineStage))
	return stored, nil
}
