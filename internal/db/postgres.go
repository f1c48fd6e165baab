package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmorrow/designdeck/internal/types"
)

// Postgres implements Store on top of a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to PostgreSQL and verifies it with a
// ping before returning.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Ping verifies the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

const artifactColumns = `id, project_id, artifact_type, title, content, status, version,
	stale_reason, approved_at, approved_by, created_at, updated_at`

// ListArtifacts returns all artifacts for a project, oldest first.
func (p *Postgres) ListArtifacts(ctx context.Context, projectID uuid.UUID) ([]types.Artifact, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []types.Artifact
	for rows.Next() {
		var a types.Artifact
		if err := rows.Scan(
			&a.ID, &a.ProjectID, &a.ArtifactType, &a.Title, &a.Content, &a.Status,
			&a.Version, &a.StaleReason, &a.ApprovedAt, &a.ApprovedBy,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// GetArtifact returns the artifact with the given ID, or (nil, nil) if none
// exists.
func (p *Postgres) GetArtifact(ctx context.Context, id string) (*types.Artifact, error) {
	var a types.Artifact
	err := p.pool.QueryRow(ctx, `
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE id = $1
	`, id).Scan(
		&a.ID, &a.ProjectID, &a.ArtifactType, &a.Title, &a.Content, &a.Status,
		&a.Version, &a.StaleReason, &a.ApprovedAt, &a.ApprovedBy,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return &a, nil
}

// InsertArtifact stores a new artifact row.
func (p *Postgres) InsertArtifact(ctx context.Context, artifact *types.Artifact) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO artifacts (id, project_id, artifact_type, title, content, status, version,
			stale_reason, approved_at, approved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		artifact.ID, artifact.ProjectID, artifact.ArtifactType, artifact.Title,
		artifact.Content, artifact.Status, artifact.Version, artifact.StaleReason,
		artifact.ApprovedAt, artifact.ApprovedBy, artifact.CreatedAt, artifact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert artifact %s: %w", artifact.ArtifactType, err)
	}
	return nil
}

// UpdateArtifact overwrites the mutable fields of an existing artifact.
func (p *Postgres) UpdateArtifact(ctx context.Context, artifact *types.Artifact) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE artifacts
		SET title = $2, content = $3, status = $4, version = $5,
			stale_reason = $6, approved_at = $7, approved_by = $8, updated_at = $9
		WHERE id = $1
	`,
		artifact.ID, artifact.Title, artifact.Content, artifact.Status,
		artifact.Version, artifact.StaleReason, artifact.ApprovedAt,
		artifact.ApprovedBy, artifact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update artifact %s: %w", artifact.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("artifact not found: %s", artifact.ID)
	}
	return nil
}

// ApproveArtifacts marks every listed artifact approved in one write.
func (p *Postgres) ApproveArtifacts(ctx context.Context, ids []string, approvedBy string, approvedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := p.pool.Exec(ctx, `
		UPDATE artifacts
		SET status = $1, approved_at = $2, approved_by = $3, stale_reason = NULL, updated_at = $2
		WHERE id = ANY($4)
	`, types.StatusApproved, approvedAt, approvedBy, ids)
	if err != nil {
		return fmt.Errorf("failed to approve artifacts: %w", err)
	}
	return nil
}

// AppendVersion records an immutable history row.
func (p *Postgres) AppendVersion(ctx context.Context, version *types.ArtifactVersion) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO artifact_versions (id, artifact_id, version, title, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, version.ID, version.ArtifactID, version.Version, version.Title, version.Content, version.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append artifact version: %w", err)
	}
	return nil
}

// ListVersions returns the history rows for an artifact, oldest first.
func (p *Postgres) ListVersions(ctx context.Context, artifactID string) ([]types.ArtifactVersion, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, artifact_id, version, title, content, created_at
		FROM artifact_versions
		WHERE artifact_id = $1
		ORDER BY version ASC
	`, artifactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifact versions: %w", err)
	}
	defer rows.Close()

	var versions []types.ArtifactVersion
	for rows.Next() {
		var v types.ArtifactVersion
		if err := rows.Scan(&v.ID, &v.ArtifactID, &v.Version, &v.Title, &v.Content, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// UpsertPipelineState creates or updates the single state row for a project.
func (p *Postgres) UpsertPipelineState(ctx context.Context, state *types.PipelineState) (*types.PipelineState, error) {
	var stored types.PipelineState
	err := p.pool.QueryRow(ctx, `
		INSERT INTO pipeline_states (project_id, mode, pipeline_stage, threshold_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (project_id) DO UPDATE
		SET mode = $2, pipeline_stage = $3, threshold_percent = $4, updated_at = NOW()
		RETURNING project_id, mode, COALESCE(pipeline_stage, ''), threshold_percent, created_at, updated_at
	`, state.ProjectID, state.Mode, state.PipelineStage, state.ThresholdPercent).Scan(
		&stored.ProjectID, &stored.Mode, &stored.PipelineStage,
		&stored.ThresholdPercent, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert pipeline state: %w", err)
	}
	return &stored, nil
}

// GetPipelineState returns the state row for a project, or (nil, nil) if the
// project has none yet.
func (p *Postgres) GetPipelineState(ctx context.Context, projectID uuid.UUID) (*types.PipelineState, error) {
	var s types.PipelineState
	err := p.pool.QueryRow(ctx, `
		SELECT project_id, mode, COALESCE(pipeline_stage, ''), threshold_percent, created_at, updated_at
		FROM pipeline_states
		WHERE project_id = $1
	`, projectID).Scan(
		&s.ProjectID, &s.Mode, &s.PipelineStage, &s.ThresholdPercent,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline state: %w", err)
	}
	return &s, nil
}

var _ Store = (*Postgres)(nil)
