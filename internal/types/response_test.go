package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedResponse_JSONRoundTrip(t *testing.T) {
	raw := `{
		"message": "Here is the contract draft.",
		"artifact": {
			"type": "phase_1_contract",
			"title": "Project Contract",
			"content": "Scope, constraints and success criteria.",
			"status": "ready_for_review"
		},
		"state": {
			"mode": "QUICK",
			"pipeline_stage": "contract_review",
			"threshold_percent": 40
		},
		"next_actions": ["review the contract", "confirm scope"]
	}`

	var resp ParsedResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	assert.Equal(t, "Here is the contract draft.", resp.Message)
	require.NotNil(t, resp.Artifact)
	assert.Equal(t, TypePhase1Contract, resp.Artifact.Type)
	assert.Equal(t, ParsedStatusReadyForReview, resp.Artifact.Status)
	require.NotNil(t, resp.State)
	assert.Equal(t, ModeQuick, resp.State.Mode)
	require.NotNil(t, resp.State.ThresholdPercent)
	assert.Equal(t, 40.0, *resp.State.ThresholdPercent)
	assert.Len(t, resp.NextActions, 2)
}

func TestParsedResponse_OptionalBlocksOmitted(t *testing.T) {
	var resp ParsedResponse
	require.NoError(t, json.Unmarshal([]byte(`{"message":"just chatting"}`), &resp))

	assert.Equal(t, "just chatting", resp.Message)
	assert.Nil(t, resp.Artifact)
	assert.Nil(t, resp.State)
	assert.Nil(t, resp.NextActions)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"just chatting"}`, string(out))
}

func TestTurnRequest_Validation(t *testing.T) {
	valid := TurnRequest{Raw: `{"message":"hi"}`}
	assert.NoError(t, valid.Validate())

	empty := TurnRequest{}
	assert.Error(t, empty.Validate())
}

func TestPreviewRequest_Validation(t *testing.T) {
	valid := PreviewRequest{Partial: "partial text"}
	assert.NoError(t, valid.Validate())

	empty := PreviewRequest{}
	assert.Error(t, empty.Validate())
}
