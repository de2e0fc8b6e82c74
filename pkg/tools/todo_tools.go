package tools

import (
	"context"

	"sleuth/pkg/api"
	"sleuth/pkg/state"
)

// Plan tools. The tracker keeps tasks in the exact order the model sets
// them; only the model decides sequencing.

//----------------------------------------------------------------
// write_todos
//----------------------------------------------------------------

type WriteTodosTool struct{}

func NewWriteTodosTool() *WriteTodosTool { return &WriteTodosTool{} }

func (t *WriteTodosTool) Name() string { return "write_todos" }

func (t *WriteTodosTool) Description() string {
	return "Replace the investigation plan with a new ordered task list. All tasks start unchecked."
}

func (t *WriteTodosTool) Parameters() map[string]any {
	return map[string]any{
		"todos": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Task descriptions in investigation order.",
		},
	}
}

func (t *WriteTodosTool) RequiredParameters() []string { return []string{"todos"} }

func (t *WriteTodosTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	todos, err := stringSliceArg(args, "todos")
	if err != nil {
		return nil, err
	}

	sess.Plan.Set(todos)
	return api.TextResult(sess.Plan.Render()), nil
}

//----------------------------------------------------------------
// read_todos
//----------------------------------------------------------------

type ReadTodosTool struct{}

func NewReadTodosTool() *ReadTodosTool { return &ReadTodosTool{} }

func (t *ReadTodosTool) Name() string { return "read_todos" }

func (t *ReadTodosTool) Description() string {
	return "Show the current investigation plan with completion markers."
}

func (t *ReadTodosTool) Parameters() map[string]any { return map[string]any{} }

func (t *ReadTodosTool) RequiredParameters() []string { return nil }

func (t *ReadTodosTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	return api.TextResult(sess.Plan.Render()), nil
}

//----------------------------------------------------------------
// mark_todo_done
//----------------------------------------------------------------

type MarkTodoDoneTool struct{}

func NewMarkTodoDoneTool() *MarkTodoDoneTool { return &MarkTodoDoneTool{} }

func (t *MarkTodoDoneTool) Name() string { return "mark_todo_done" }

func (t *MarkTodoDoneTool) Description() string {
	return "Mark one plan task as completed by its 1-based position."
}

func (t *MarkTodoDoneTool) Parameters() map[string]any {
	return map[string]any{
		"index": map[string]any{
			"type":        "integer",
			"description": "1-based task position as shown by read_todos.",
		},
	}
}

func (t *MarkTodoDoneTool) RequiredParameters() []string { return []string{"index"} }

func (t *MarkTodoDoneTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	index, err := intArg(args, "index")
	if err != nil {
		return nil, err
	}

	// The model sees 1-based positions; the tracker is 0-based.
	if err := sess.Plan.MarkDone(index - 1); err != nil {
		return nil, err
	}
	return api.TextResult(sess.Plan.Render()), nil
}
