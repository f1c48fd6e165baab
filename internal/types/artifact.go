package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Persisted artifact lifecycle statuses.
const (
	StatusDraft    = "draft"
	StatusApproved = "approved"
	StatusStale    = "stale"
)

// StaleReasonContentUpdated is recorded when a newer parse replaces the
// content of an approved artifact.
const StaleReasonContentUpdated = "Content updated"

// PreviewIDPrefix marks ephemeral preview artifacts. Records carrying this
// prefix exist only in merged preview views and must never be persisted or
// approved.
const PreviewIDPrefix = "preview-"

// IsPreviewID reports whether id belongs to an ephemeral preview artifact.
func IsPreviewID(id string) bool {
	return strings.HasPrefix(id, PreviewIDPrefix)
}

// Artifact is a persisted design deliverable. Exactly one live record exists
// per (project, artifact type) pair; re-parses update it in place and the
// prior content moves to version history. Live artifacts are never deleted.
type Artifact struct {
	ID           string     `json:"id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	ArtifactType string     `json:"artifact_type"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Status       string     `json:"status"`
	Version      int        `json:"version"`
	StaleReason  *string    `json:"stale_reason,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApprovedBy   *string    `json:"approved_by,omitempty"`
	Preview      bool       `json:"preview,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Clone returns a deep copy of the artifact, including pointer fields.
func (a *Artifact) Clone() *Artifact {
	out := *a
	if a.StaleReason != nil {
		v := *a.StaleReason
		out.StaleReason = &v
	}
	if a.ApprovedAt != nil {
		v := *a.ApprovedAt
		out.ApprovedAt = &v
	}
	if a.ApprovedBy != nil {
		v := *a.ApprovedBy
		out.ApprovedBy = &v
	}
	return &out
}

// CloneArtifacts returns a deep copy of a slice of artifacts.
func CloneArtifacts(in []Artifact) []Artifact {
	if in == nil {
		return nil
	}
	out := make([]Artifact, len(in))
	for i := range in {
		out[i] = *in[i].Clone()
	}
	return out
}

// NewArtifactID returns a fresh identifier for a persisted artifact.
func NewArtifactID() string {
	return uuid.New().String()
}

// ArtifactVersion is an immutable history row recording the content an
// artifact held before an overwrite. History rows are append-only.
type ArtifactVersion struct {
	ID         string    `json:"id"`
	ArtifactID string    `json:"artifact_id"`
	Version    int       `json:"version"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
