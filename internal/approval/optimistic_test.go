package approval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOptimisticKeepsMutationOnSuccess(t *testing.T) {
	state := []int{1, 2, 3}

	err := applyOptimistic(
		func() []int { out := make([]int, len(state)); copy(out, state); return out },
		func(snap []int) { state = snap },
		func() { state = append(state, 4) },
		func() error { return nil },
	)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, state)
}

func TestApplyOptimisticRestoresOnFailure(t *testing.T) {
	state := []int{1, 2, 3}
	boom := errors.New("persist failed")

	err := applyOptimistic(
		func() []int { out := make([]int, len(state)); copy(out, state); return out },
		func(snap []int) { state = snap },
		func() { state = append(state[:0:0], 9, 9, 9) },
		func() error { return boom },
	)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2, 3}, state)
}
