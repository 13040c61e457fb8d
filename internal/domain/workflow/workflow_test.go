package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuumhq/continuum-server/internal/domain/workflow"
)

func TestOperation_HappyPath(t *testing.T) {
	r := workflow.NewRegistry()
	op := r.Begin("user_purge")

	require.NotEmpty(t, op.ID)
	assert.Equal(t, workflow.StateConfirming, op.State())

	require.NoError(t, op.Start())
	assert.Equal(t, workflow.StateInProgress, op.State())

	require.NoError(t, op.Succeed(map[string]int64{"chats": 3, "memories": 12}))
	assert.Equal(t, workflow.StateSucceeded, op.State())

	snap := op.Snapshot()
	assert.Equal(t, "user_purge", snap.Kind)
	assert.Equal(t, int64(3), snap.Counts["chats"])
	assert.Equal(t, int64(12), snap.Counts["memories"])
	require.NotNil(t, snap.StartedAt)
	require.NotNil(t, snap.FinishedAt)
	assert.False(t, snap.FinishedAt.Before(*snap.StartedAt))

	require.NoError(t, op.Reset())
	assert.Equal(t, workflow.StateIdle, op.State())
}

func TestOperation_FailureKeepsPartialCounts(t *testing.T) {
	op := workflow.NewRegistry().Begin("user_purge")
	require.NoError(t, op.Start())

	require.NoError(t, op.Fail("delete failed at feedback", map[string]int64{"chats": 3}))

	snap := op.Snapshot()
	assert.Equal(t, workflow.StateFailed, snap.State)
	assert.Equal(t, "delete failed at feedback", snap.Failure)
	assert.Equal(t, int64(3), snap.Counts["chats"])
}

// The mutating call may only run on the confirming -> in_progress edge;
// every other source state rejects the transition.
func TestOperation_GuardsInvalidTransitions(t *testing.T) {
	op := workflow.NewRegistry().Begin("orphan_purge")

	assert.ErrorIs(t, op.Succeed(nil), workflow.ErrNotInProgress)
	assert.ErrorIs(t, op.Fail("x", nil), workflow.ErrNotInProgress)
	assert.ErrorIs(t, op.Reset(), workflow.ErrNotTerminal)

	require.NoError(t, op.Start())
	assert.ErrorIs(t, op.Start(), workflow.ErrNotConfirming, "duplicate submission is rejected")
	assert.ErrorIs(t, op.Reset(), workflow.ErrNotTerminal, "running operation cannot be reset")

	require.NoError(t, op.Succeed(nil))
	assert.ErrorIs(t, op.Start(), workflow.ErrNotConfirming)
	assert.ErrorIs(t, op.Succeed(nil), workflow.ErrNotInProgress)

	require.NoError(t, op.Reset())
	assert.ErrorIs(t, op.Start(), workflow.ErrNotConfirming, "idle operation cannot restart")
}

func TestRegistry_Get(t *testing.T) {
	r := workflow.NewRegistry()
	op := r.Begin("user_purge")

	got, ok := r.Get(op.ID)
	require.True(t, ok)
	assert.Same(t, op, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}
