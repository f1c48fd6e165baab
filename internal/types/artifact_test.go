package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidArtifactType(t *testing.T) {
	for _, known := range ArtifactTypes {
		assert.True(t, ValidArtifactType(known), "expected %s to be valid", known)
	}

	assert.False(t, ValidArtifactType(""))
	assert.False(t, ValidArtifactType("phase_10_launch"))
	assert.False(t, ValidArtifactType("PHASE_1_CONTRACT"))
}

func TestArtifactTypes_CountAndOrder(t *testing.T) {
	require.Len(t, ArtifactTypes, 9)
	assert.Equal(t, TypePhase1Contract, ArtifactTypes[0])
	assert.Equal(t, TypePhase9HandoffSpec, ArtifactTypes[8])
}

func TestIsPreviewID(t *testing.T) {
	assert.True(t, IsPreviewID("preview-phase_1_contract"))
	assert.False(t, IsPreviewID(uuid.New().String()))
	assert.False(t, IsPreviewID(""))
	assert.False(t, IsPreviewID("a-preview-id"))
}

func TestArtifact_Clone(t *testing.T) {
	reason := StaleReasonContentUpdated
	approvedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	approvedBy := "reviewer"

	original := Artifact{
		ID:           NewArtifactID(),
		ProjectID:    uuid.New(),
		ArtifactType: TypePhase2Discovery,
		Title:        "Discovery Notes",
		Content:      "content that is long enough",
		Status:       StatusApproved,
		Version:      3,
		StaleReason:  &reason,
		ApprovedAt:   &approvedAt,
		ApprovedBy:   &approvedBy,
	}

	clone := original.Clone()
	require.Equal(t, original, *clone)

	// Mutating the clone's pointer fields must not reach the original.
	*clone.StaleReason = "something else"
	*clone.ApprovedBy = "someone else"
	*clone.ApprovedAt = approvedAt.Add(time.Hour)

	assert.Equal(t, StaleReasonContentUpdated, *original.StaleReason)
	assert.Equal(t, "reviewer", *original.ApprovedBy)
	assert.Equal(t, approvedAt, *original.ApprovedAt)
}

func TestCloneArtifacts(t *testing.T) {
	assert.Nil(t, CloneArtifacts(nil))

	by := "alice"
	set := []Artifact{
		{ID: "a", ArtifactType: TypePhase1Contract, Status: StatusApproved, ApprovedBy: &by},
		{ID: "b", ArtifactType: TypePhase2Discovery, Status: StatusDraft},
	}

	out := CloneArtifacts(set)
	require.Len(t, out, 2)
	require.Equal(t, set, out)

	*out[0].ApprovedBy = "mallory"
	out[1].Status = StatusApproved

	assert.Equal(t, "alice", *set[0].ApprovedBy)
	assert.Equal(t, StatusDraft, set[1].Status)
}

func TestValidMode(t *testing.T) {
	assert.True(t, ValidMode(ModeStandard))
	assert.True(t, ValidMode(ModeQuick))
	assert.False(t, ValidMode("standard"))
	assert.False(t, ValidMode(""))
}
