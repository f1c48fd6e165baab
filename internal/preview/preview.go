// Package preview derives best-effort artifact previews from in-progress
// streamed text. Previews are UI-only: they are merged over the persisted
// set, never written to it, and the final parse of the turn supersedes them.
package preview

import (
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jmorrow/designdeck/internal/parsing"
	"github.com/jmorrow/designdeck/internal/types"
)

// MinPartialChars is the accumulated-text floor below which no preview is
// attempted. Near-empty fragments cannot yield anything renderable.
const MinPartialChars = 50

// Builder computes merged preview views.
type Builder struct {
	parser *parsing.Parser
	logger *zap.Logger
}

// NewBuilder creates a preview builder using the given parser.
func NewBuilder(parser *parsing.Parser, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		parser: parser,
		logger: logger.With(zap.String("component", "preview")),
	}
}

// Build merges whatever artifact the partial text yields over the persisted
// set and returns the merged view. existing is never mutated; the result is
// always a fresh copy. Fragments under MinPartialChars, and fragments that
// yield no artifact, return the persisted set unchanged.
//
// An artifact whose type already exists overlays that record's title and
// content, keeping its real ID; a brand-new type appends a synthetic record
// with the reserved preview ID prefix. Both are flagged Preview so nothing
// downstream can mistake them for persisted rows.
func (b *Builder) Build(partial string, existing []types.Artifact) []types.Artifact {
	merged := types.CloneArtifacts(existing)
	if utf8.RuneCountInString(partial) < MinPartialChars {
		return merged
	}

	result := b.parser.Parse(partial)
	if !result.OK || result.Response.Artifact == nil {
		return merged
	}
	parsed := result.Response.Artifact

	for i := range merged {
		if merged[i].ArtifactType == parsed.Type {
			merged[i].Title = parsed.Title
			merged[i].Content = parsed.Content
			merged[i].Preview = true
			b.logger.Debug("preview overlaid",
				zap.String("artifact_type", parsed.Type),
				zap.String("strategy", string(result.Strategy)))
			return merged
		}
	}

	now := time.Now().UTC()
	synthetic := types.Artifact{
		ID:           types.PreviewIDPrefix + parsed.Type,
		ArtifactType: parsed.Type,
		Title:        parsed.Title,
		Content:      parsed.Content,
		Status:       types.StatusDraft,
		Version:      1,
		Preview:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(merged) > 0 {
		synthetic.ProjectID = merged[0].ProjectID
	}
	b.logger.Debug("synthetic preview appended",
		zap.String("artifact_type", parsed.Type),
		zap.String("strategy", string(result.Strategy)))
	return append(merged, synthetic)
}
