// Package types provides type definitions for structured data used throughout the designdeck engine.
package types

// Artifact type identifiers for the nine design-pipeline phases.
const (
	TypePhase1Contract     = "phase_1_contract"
	TypePhase2Discovery    = "phase_2_discovery"
	TypePhase3Personas     = "phase_3_personas"
	TypePhase4JourneyMaps  = "phase_4_journey_maps"
	TypePhase5InfoArch     = "phase_5_information_architecture"
	TypePhase6UserFlows    = "phase_6_user_flows"
	TypePhase7Wireframes   = "phase_7_wireframes"
	TypePhase8DesignSystem = "phase_8_design_system"
	TypePhase9HandoffSpec  = "phase_9_handoff_spec"
)

// ArtifactTypes lists every known artifact type identifier in phase order.
var ArtifactTypes = []string{
	TypePhase1Contract,
	TypePhase2Discovery,
	TypePhase3Personas,
	TypePhase4JourneyMaps,
	TypePhase5InfoArch,
	TypePhase6UserFlows,
	TypePhase7Wireframes,
	TypePhase8DesignSystem,
	TypePhase9HandoffSpec,
}

// ValidArtifactType reports whether t is one of the fixed artifact type identifiers.
func ValidArtifactType(t string) bool {
	for _, known := range ArtifactTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Statuses an artifact may carry inside a parsed response. Persisted
// lifecycle statuses are a separate set; see artifact.go.
const (
	ParsedStatusDraft          = "draft"
	ParsedStatusReadyForReview = "ready_for_review"
)

// MinContentChars is the minimum accepted artifact content length. Shorter
// content is treated as truncated output and rejected.
const MinContentChars = 20

// MaxTitleChars is the maximum accepted artifact title length.
const MaxTitleChars = 200

// ParsedResponse is the structured payload extracted from one raw assistant response.
type ParsedResponse struct {
	Message     string          `json:"message"`
	Artifact    *ParsedArtifact `json:"artifact,omitempty"`
	State       *ParsedState    `json:"state,omitempty"`
	NextActions []string        `json:"next_actions,omitempty"`
}

// ParsedArtifact is a candidate deliverable carried by a response. It is not
// persisted directly; the reconciler decides what happens to it.
type ParsedArtifact struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status,omitempty"`
}

// ParsedState is a pipeline metadata block carried by a response. It may
// appear with or without an artifact.
type ParsedState struct {
	Mode             string   `json:"mode"`
	PipelineStage    string   `json:"pipeline_stage,omitempty"`
	ThresholdPercent *float64 `json:"threshold_percent,omitempty"`
}
