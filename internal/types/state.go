package types

import (
	"time"

	"github.com/google/uuid"
)

// Pipeline modes. STANDARD walks all nine phases; QUICK walks a five-phase
// subsequence.
const (
	ModeStandard = "STANDARD"
	ModeQuick    = "QUICK"
)

// ValidMode reports whether m is a known pipeline mode.
func ValidMode(m string) bool {
	return m == ModeStandard || m == ModeQuick
}

// PipelineState is the per-project session state row. At most one exists per
// project; saves are upserts with last-write-wins semantics.
type PipelineState struct {
	ProjectID        uuid.UUID `json:"project_id"`
	Mode             string    `json:"mode"`
	PipelineStage    string    `json:"pipeline_stage,omitempty"`
	ThresholdPercent *float64  `json:"threshold_percent,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the state.
func (s *PipelineState) Clone() *PipelineState {
	if s == nil {
		return nil
	}
	out := *s
	if s.ThresholdPercent != nil {
		v := *s.ThresholdPercent
		out.ThresholdPercent = &v
	}
	return &out
}
