package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmorrow/designdeck/internal/types"
)

// Memory is an in-memory implementation of Store. Suitable for development
// and testing. Data is lost on restart.
type Memory struct {
	mu       sync.RWMutex
	closed   bool
	failErr  error
	order    []string
	items    map[string]*types.Artifact
	versions map[string][]types.ArtifactVersion
	states   map[uuid.UUID]*types.PipelineState
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items:    make(map[string]*types.Artifact),
		versions: make(map[string][]types.ArtifactVersion),
		states:   make(map[uuid.UUID]*types.PipelineState),
	}
}

// FailWith forces every subsequent write to fail with err until reset with
// nil. Reads are unaffected. Used to exercise persistence-failure paths.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Close marks the store closed.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// Ping reports whether the store is open.
func (m *Memory) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrStoreClosed
	}
	return nil
}

// ListArtifacts returns all artifacts for a project in insertion order.
func (m *Memory) ListArtifacts(ctx context.Context, projectID uuid.UUID) ([]types.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	var artifacts []types.Artifact
	for _, id := range m.order {
		a := m.items[id]
		if a.ProjectID == projectID {
			artifacts = append(artifacts, *a.Clone())
		}
	}
	return artifacts, nil
}

// GetArtifact returns a copy of the artifact with the given ID, or (nil, nil)
// if none exists.
func (m *Memory) GetArtifact(ctx context.Context, id string) (*types.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	a, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

// InsertArtifact stores a copy of the artifact.
func (m *Memory) InsertArtifact(ctx context.Context, artifact *types.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writable(); err != nil {
		return err
	}

	if _, ok := m.items[artifact.ID]; ok {
		return fmt.Errorf("artifact already exists: %s", artifact.ID)
	}
	m.items[artifact.ID] = artifact.Clone()
	m.order = append(m.order, artifact.ID)
	return nil
}

// UpdateArtifact overwrites an existing artifact with a copy of the given one.
func (m *Memory) UpdateArtifact(ctx context.Context, artifact *types.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writable(); err != nil {
		return err
	}

	if _, ok := m.items[artifact.ID]; !ok {
		return fmt.Errorf("artifact not found: %s", artifact.ID)
	}
	m.items[artifact.ID] = artifact.Clone()
	return nil
}

// ApproveArtifacts marks every listed artifact approved with a shared
// approver and timestamp.
func (m *Memory) ApproveArtifacts(ctx context.Context, ids []string, approvedBy string, approvedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writable(); err != nil {
		return err
	}

	for _, id := range ids {
		a, ok := m.items[id]
		if !ok {
			return fmt.Errorf("artifact not found: %s", id)
		}
		a.Status = types.StatusApproved
		a.StaleReason = nil
		at := approvedAt
		by := approvedBy
		a.ApprovedAt = &at
		a.ApprovedBy = &by
		a.UpdatedAt = approvedAt
	}
	return nil
}

// AppendVersion records a history row.
func (m *Memory) AppendVersion(ctx context.Context, version *types.ArtifactVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writable(); err != nil {
		return err
	}

	m.versions[version.ArtifactID] = append(m.versions[version.ArtifactID], *version)
	return nil
}

// ListVersions returns the history rows for an artifact, oldest first.
func (m *Memory) ListVersions(ctx context.Context, artifactID string) ([]types.ArtifactVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	stored := m.versions[artifactID]
	if len(stored) == 0 {
		return nil, nil
	}
	out := make([]types.ArtifactVersion, len(stored))
	copy(out, stored)
	return out, nil
}

// UpsertPipelineState creates or updates the state row for a project.
func (m *Memory) UpsertPipelineState(ctx context.Context, state *types.PipelineState) (*types.PipelineState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writable(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stored := state.Clone()
	stored.UpdatedAt = now
	if existing, ok := m.states[state.ProjectID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	m.states[state.ProjectID] = stored
	return stored.Clone(), nil
}

// GetPipelineState returns a copy of the state row for a project, or
// (nil, nil) if the project has none yet.
func (m *Memory) GetPipelineState(ctx context.Context, projectID uuid.UUID) (*types.PipelineState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	s, ok := m.states[projectID]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

// writable is called with the write lock held.
func (m *Memory) writable() error {
	if m.closed {
		return ErrStoreClosed
	}
	return m.failErr
}

var _ Store = (*Memory)(nil)
