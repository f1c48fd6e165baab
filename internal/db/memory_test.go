package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorrow/designdeck/internal/types"
)

func newTestArtifact(projectID uuid.UUID, artifactType string) *types.Artifact {
	now := time.Now().UTC()
	return &types.Artifact{
		ID:           types.NewArtifactID(),
		ProjectID:    projectID,
		ArtifactType: artifactType,
		Title:        "Test Title",
		Content:      "Content long enough to pass the length floor.",
		Status:       types.StatusDraft,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryInsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	projectID := uuid.New()

	artifact := newTestArtifact(projectID, types.TypePhase1Contract)
	require.NoError(t, store.InsertArtifact(ctx, artifact))

	got, err := store.GetArtifact(ctx, artifact.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, artifact.ID, got.ID)
	assert.Equal(t, artifact.Content, got.Content)

	// Mutating the returned copy must not touch the stored record.
	got.Content = "tampered"
	again, err := store.GetArtifact(ctx, artifact.ID)
	require.NoError(t, err)
	assert.Equal(t, artifact.Content, again.Content)
}

func TestMemoryGetMissingReturnsNilNil(t *testing.T) {
	store := NewMemory()

	got, err := store.GetArtifact(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryInsertDuplicateFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	artifact := newTestArtifact(uuid.New(), types.TypePhase1Contract)
	require.NoError(t, store.InsertArtifact(ctx, artifact))
	assert.Error(t, store.InsertArtifact(ctx, artifact))
}

func TestMemoryUpdateMissingFails(t *testing.T) {
	store := NewMemory()

	artifact := newTestArtifact(uuid.New(), types.TypePhase1Contract)
	err := store.UpdateArtifact(context.Background(), artifact)
	assert.Error(t, err)
}

func TestMemoryListFiltersByProject(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	projectA := uuid.New()
	projectB := uuid.New()

	first := newTestArtifact(projectA, types.TypePhase1Contract)
	second := newTestArtifact(projectA, types.TypePhase2Discovery)
	other := newTestArtifact(projectB, types.TypePhase1Contract)
	require.NoError(t, store.InsertArtifact(ctx, first))
	require.NoError(t, store.InsertArtifact(ctx, other))
	require.NoError(t, store.InsertArtifact(ctx, second))

	artifacts, err := store.ListArtifacts(ctx, projectA)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, first.ID, artifacts[0].ID)
	assert.Equal(t, second.ID, artifacts[1].ID)
}

func TestMemoryApproveBatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	projectID := uuid.New()

	first := newTestArtifact(projectID, types.TypePhase1Contract)
	reason := types.StaleReasonContentUpdated
	first.Status = types.StatusStale
	first.StaleReason = &reason
	second := newTestArtifact(projectID, types.TypePhase2Discovery)
	require.NoError(t, store.InsertArtifact(ctx, first))
	require.NoError(t, store.InsertArtifact(ctx, second))

	approvedAt := time.Now().UTC()
	err := store.ApproveArtifacts(ctx, []string{first.ID, second.ID}, "reviewer@example.com", approvedAt)
	require.NoError(t, err)

	for _, id := range []string{first.ID, second.ID} {
		got, err := store.GetArtifact(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, types.StatusApproved, got.Status)
		assert.Nil(t, got.StaleReason)
		require.NotNil(t, got.ApprovedAt)
		assert.True(t, got.ApprovedAt.Equal(approvedAt))
		require.NotNil(t, got.ApprovedBy)
		assert.Equal(t, "reviewer@example.com", *got.ApprovedBy)
	}
}

func TestMemoryApproveUnknownIDFails(t *testing.T) {
	store := NewMemory()

	err := store.ApproveArtifacts(context.Background(), []string{"ghost"}, "reviewer", time.Now())
	assert.Error(t, err)
}

func TestMemoryVersionHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	artifactID := types.NewArtifactID()

	for i := 1; i <= 3; i++ {
		v := &types.ArtifactVersion{
			ID:         types.NewArtifactID(),
			ArtifactID: artifactID,
			Version:    i,
			Title:      "Title",
			Content:    "Snapshot content for the version row.",
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, store.AppendVersion(ctx, v))
	}

	versions, err := store.ListVersions(ctx, artifactID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, 3, versions[2].Version)

	none, err := store.ListVersions(ctx, "no-history")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryPipelineState(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	projectID := uuid.New()

	missing, err := store.GetPipelineState(ctx, projectID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	threshold := 80.0
	stored, err := store.UpsertPipelineState(ctx, &types.PipelineState{
		ProjectID:        projectID,
		Mode:             types.ModeStandard,
		PipelineStage:    "discovery",
		ThresholdPercent: &threshold,
	})
	require.NoError(t, err)
	createdAt := stored.CreatedAt

	// A second upsert replaces fields but keeps the original creation time.
	updated, err := store.UpsertPipelineState(ctx, &types.PipelineState{
		ProjectID: projectID,
		Mode:      types.ModeQuick,
	})
	require.NoError(t, err)
	assert.Equal(t, types.ModeQuick, updated.Mode)
	assert.Nil(t, updated.ThresholdPercent)
	assert.True(t, updated.CreatedAt.Equal(createdAt))

	got, err := store.GetPipelineState(ctx, projectID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.ModeQuick, got.Mode)
}

func TestMemoryFailWith(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	projectID := uuid.New()

	artifact := newTestArtifact(projectID, types.TypePhase1Contract)
	require.NoError(t, store.InsertArtifact(ctx, artifact))

	boom := errors.New("disk on fire")
	store.FailWith(boom)

	assert.ErrorIs(t, store.UpdateArtifact(ctx, artifact), boom)
	assert.ErrorIs(t, store.ApproveArtifacts(ctx, []string{artifact.ID}, "reviewer", time.Now()), boom)

	// Reads keep working while writes fail.
	got, err := store.GetArtifact(ctx, artifact.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	store.FailWith(nil)
	assert.NoError(t, store.UpdateArtifact(ctx, artifact))
}

func TestMemoryClosed(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	store.Close()

	assert.ErrorIs(t, store.Ping(ctx), ErrStoreClosed)
	_, err := store.ListArtifacts(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, store.InsertArtifact(ctx, newTestArtifact(uuid.New(), types.TypePhase1Contract)), ErrStoreClosed)
}
