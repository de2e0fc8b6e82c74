package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanTrackerRenderEmpty(t *testing.T) {
	t.Parallel()
	p := NewPlanTracker()
	assert.Equal(t, "No plan set yet. Use write_todos to create one.", p.Render())
}

func TestPlanTrackerSetAndRender(t *testing.T) {
	t.Parallel()
	p := NewPlanTracker()
	p.Set([]string{"fetch the issue", "find the bug", "write the report"})

	require.NoError(t, p.MarkDone(0))

	rendered := p.Render()
	assert.Contains(t, rendered, "Plan (3 tasks):")
	assert.Contains(t, rendered, "1. [x] fetch the issue")
	assert.Contains(t, rendered, "2. [ ] find the bug")
	assert.Contains(t, rendered, "3. [ ] write the report")
}

func TestPlanTrackerSetReplacesPlan(t *testing.T) {
	t.Parallel()
	p := NewPlanTracker()
	p.Set([]string{"a", "b"})
	require.NoError(t, p.MarkDone(1))

	p.Set([]string{"x"})
	tasks := p.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "x", tasks[0].Description)
	assert.False(t, tasks[0].Done, "new plan starts unchecked")
}

func TestPlanTrackerMarkDoneIdempotent(t *testing.T) {
	t.Parallel()
	p := NewPlanTracker()
	p.Set([]string{"only task"})

	require.NoError(t, p.MarkDone(0))
	require.NoError(t, p.MarkDone(0), "re-marking is a no-op, not a toggle")
	assert.True(t, p.Tasks()[0].Done)
}

func TestPlanTrackerMarkDoneOutOfRange(t *testing.T) {
	t.Parallel()
	p := NewPlanTracker()
	p.Set([]string{"a", "b"})

	for _, idx := range []int{-1, 2, 99} {
		err := p.MarkDone(idx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPlanIndexOutOfRange)
	}
}
