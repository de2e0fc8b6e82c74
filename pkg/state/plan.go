package state

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrPlanIndexOutOfRange is returned by MarkDone for an index outside the
// current plan.
var ErrPlanIndexOutOfRange = errors.New("plan index out of range")

// Task is one entry in the investigation plan.
type Task struct {
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// PlanTracker holds the ordered task list for one investigation. Order is
// insertion order and reflects the investigation sequence; tasks are never
// reordered or pruned automatically. Sequencing decisions belong to the
// model, not the tracker.
type PlanTracker struct {
	mu    sync.RWMutex
	tasks []Task
}

// NewPlanTracker creates an empty tracker.
func NewPlanTracker() *PlanTracker {
	return &PlanTracker{}
}

// Set replaces the whole plan with the given descriptions, all unchecked.
func (p *PlanTracker) Set(descriptions []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tasks = make([]Task, len(descriptions))
	for i, d := range descriptions {
		p.tasks[i] = Task{Description: d}
	}
}

// MarkDone flags the task at index (0-based) as completed. Marking an
// already-completed task is a no-op, not a toggle.
func (p *PlanTracker) MarkDone(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.tasks) {
		return fmt.Errorf("%w: %d (plan has %d tasks)", ErrPlanIndexOutOfRange, index, len(p.tasks))
	}
	p.tasks[index].Done = true
	return nil
}

// Tasks returns a copy of the current plan.
func (p *PlanTracker) Tasks() []Task {
	p.mu.RLock()
	defer p.mu.RUnlock()

	cp := make([]Task, len(p.tasks))
	copy(cp, p.tasks)
	return cp
}

// Len returns the number of tasks.
func (p *PlanTracker) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tasks)
}

// Render produces the checklist shown to the model and the user.
func (p *PlanTracker) Render() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.tasks) == 0 {
		return "No plan set yet. Use write_todos to create one."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Plan (%d tasks):\n", len(p.tasks))
	for i, t := range p.tasks {
		marker := "[ ]"
		if t.Done {
			marker = "[x]"
		}
		fmt.Fprintf(&sb, "  %d. %s %s\n", i+1, marker, t.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}
