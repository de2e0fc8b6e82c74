package tools

import (
	"context"
	"testing"

	"sleuth/pkg/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTodosSetsPlan(t *testing.T) {
	t.Parallel()
	sess := state.NewSession()

	res, err := NewWriteTodosTool().Execute(context.Background(), map[string]any{
		"todos": []any{"fetch issue", "inspect code"},
	}, sess)
	require.NoError(t, err)

	out := res.Content[0].Text
	assert.Contains(t, out, "Plan (2 tasks):")
	assert.Contains(t, out, "1. [ ] fetch issue")
	assert.Equal(t, 2, sess.Plan.Len())
}

func TestWriteTodosRejectsNonStrings(t *testing.T) {
	t.Parallel()
	_, err := NewWriteTodosTool().Execute(context.Background(), map[string]any{
		"todos": []any{"ok", 42},
	}, state.NewSession())
	require.Error(t, err)
}

func TestMarkTodoDoneOneBased(t *testing.T) {
	t.Parallel()
	sess := state.NewSession()
	sess.Plan.Set([]string{"first", "second"})

	// Model speaks 1-based; index 1 is the first task.
	res, err := NewMarkTodoDoneTool().Execute(context.Background(), map[string]any{"index": float64(1)}, sess)
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "1. [x] first")
	assert.Contains(t, res.Content[0].Text, "2. [ ] second")
}

func TestMarkTodoDoneOutOfRange(t *testing.T) {
	t.Parallel()
	sess := state.NewSession()
	sess.Plan.Set([]string{"only"})

	_, err := NewMarkTodoDoneTool().Execute(context.Background(), map[string]any{"index": float64(5)}, sess)
	require.Error(t, err)
	assert.ErrorIs(t, err, state.ErrPlanIndexOutOfRange)
}

func TestReadTodosEmptyPlan(t *testing.T) {
	t.Parallel()
	res, err := NewReadTodosTool().Execute(context.Background(), map[string]any{}, state.NewSession())
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].Text, "No plan set yet")
}
