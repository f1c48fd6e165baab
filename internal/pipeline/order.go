// Package pipeline defines the fixed phase orders a project can walk and
// position arithmetic over them. Approval cascades and generation prompting
// both key off these orders.
package pipeline

import (
	"github.com/jmorrow/designdeck/internal/types"
)

var standardOrder = []string{
	types.TypePhase1Contract,
	types.TypePhase2Discovery,
	types.TypePhase3Personas,
	types.TypePhase4JourneyMaps,
	types.TypePhase5InfoArch,
	types.TypePhase6UserFlows,
	types.TypePhase7Wireframes,
	types.TypePhase8DesignSystem,
	types.TypePhase9HandoffSpec,
}

// quickOrder is a strict subsequence of standardOrder.
var quickOrder = []string{
	types.TypePhase1Contract,
	types.TypePhase2Discovery,
	types.TypePhase3Personas,
	types.TypePhase7Wireframes,
	types.TypePhase9HandoffSpec,
}

// Order returns the artifact types the given mode walks, in order. Unknown
// or empty modes fall back to STANDARD.
func Order(mode string) []string {
	if mode == types.ModeQuick {
		return append([]string(nil), quickOrder...)
	}
	return append([]string(nil), standardOrder...)
}

// Position returns the 1-based position of artifactType in the mode's
// order, or false when the type is not part of that order.
func Position(mode, artifactType string) (int, bool) {
	order := standardOrder
	if mode == types.ModeQuick {
		order = quickOrder
	}
	for i, t := range order {
		if t == artifactType {
			return i + 1, true
		}
	}
	return 0, false
}

// UpTo returns the prefix of the mode's order up to and including
// artifactType. The result is nil when the type is not part of the order.
func UpTo(mode, artifactType string) []string {
	pos, ok := Position(mode, artifactType)
	if !ok {
		return nil
	}
	return Order(mode)[:pos]
}

// Next returns the first type in the mode's order that has no artifact yet,
// for "what should we generate next" prompting. The second return is false
// once every phase in the order has an artifact.
func Next(mode string, existing []types.Artifact) (string, bool) {
	have := make(map[string]bool, len(existing))
	for i := range existing {
		have[existing[i].ArtifactType] = true
	}
	for _, t := range Order(mode) {
		if !have[t] {
			return t, true
		}
	}
	return "", false
}
