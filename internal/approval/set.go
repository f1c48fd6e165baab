package approval

import (
	"time"

	"github.com/jmorrow/designdeck/internal/types"
)

// Set is the caller-owned in-memory view of one project's artifacts. The
// approver mutates it optimistically and restores it verbatim when
// persistence fails, so the caller never observes a partial cascade.
type Set struct {
	items []types.Artifact
}

// NewSet copies the given artifacts into a fresh set.
func NewSet(artifacts []types.Artifact) *Set {
	return &Set{items: types.CloneArtifacts(artifacts)}
}

// Items returns a copy of the current view.
func (s *Set) Items() []types.Artifact {
	return types.CloneArtifacts(s.items)
}

// Get returns a copy of the artifact with the given ID.
func (s *Set) Get(id string) (*types.Artifact, bool) {
	a := s.find(id)
	if a == nil {
		return nil, false
	}
	return a.Clone(), true
}

func (s *Set) find(id string) *types.Artifact {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i]
		}
	}
	return nil
}

func (s *Set) snapshot() []types.Artifact {
	return types.CloneArtifacts(s.items)
}

func (s *Set) restore(snapshot []types.Artifact) {
	s.items = snapshot
}

func (s *Set) markApproved(ids []string, approvedBy string, approvedAt time.Time) {
	for _, id := range ids {
		a := s.find(id)
		if a == nil {
			continue
		}
		at := approvedAt
		by := approvedBy
		a.Status = types.StatusApproved
		a.StaleReason = nil
		a.ApprovedAt = &at
		a.ApprovedBy = &by
		a.UpdatedAt = approvedAt
	}
}
