// Package db provides persistence for artifacts, artifact version history,
// and per-project pipeline state. The PostgreSQL implementation backs
// production deployments; the in-memory implementation backs tests and
// single-process development.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jmorrow/designdeck/internal/types"
)

// ErrStoreClosed is returned by operations on a store after Close.
var ErrStoreClosed = errors.New("store is closed")

// Store is the persistence contract shared by the PostgreSQL and in-memory
// backends. Lookups return (nil, nil) when no record exists; errors are
// reserved for infrastructure failures.
type Store interface {
	// ListArtifacts returns all artifacts for a project, oldest first.
	ListArtifacts(ctx context.Context, projectID uuid.UUID) ([]types.Artifact, error)

	// GetArtifact returns the artifact with the given ID, or (nil, nil) if
	// none exists.
	GetArtifact(ctx context.Context, id string) (*types.Artifact, error)

	// InsertArtifact stores a new artifact row.
	InsertArtifact(ctx context.Context, artifact *types.Artifact) error

	// UpdateArtifact overwrites the mutable fields of an existing artifact.
	UpdateArtifact(ctx context.Context, artifact *types.Artifact) error

	// ApproveArtifacts marks every listed artifact approved in one write,
	// stamping all of them with the same approver and timestamp.
	ApproveArtifacts(ctx context.Context, ids []string, approvedBy string, approvedAt time.Time) error

	// AppendVersion records an immutable history row. Version rows are never
	// updated or deleted.
	AppendVersion(ctx context.Context, version *types.ArtifactVersion) error

	// ListVersions returns the history rows for an artifact, oldest first.
	ListVersions(ctx context.Context, artifactID string) ([]types.ArtifactVersion, error)

	// UpsertPipelineState creates or updates the single state row for a
	// project and returns the stored record.
	UpsertPipelineState(ctx context.Context, state *types.PipelineState) (*types.PipelineState, error)

	// GetPipelineState returns the state row for a project, or (nil, nil) if
	// the project has none yet.
	GetPipelineState(ctx context.Context, projectID uuid.UUID) (*types.PipelineState, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close()
}
