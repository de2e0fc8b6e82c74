package agent

import (
	"context"
	"fmt"
	"strings"

	"sleuth/pkg/api"
	"sleuth/pkg/state"
)

// TaskTool exposes delegation to the model. It is registered only on the
// orchestrator's registry, never handed to sub-agents, so delegation cannot
// nest. It is the one parallel-safe tool: several same-turn task calls run
// their sub-sessions concurrently.
type TaskTool struct {
	delegator *Delegator
}

// NewTaskTool wraps a delegator.
func NewTaskTool(delegator *Delegator) *TaskTool {
	return &TaskTool{delegator: delegator}
}

func (t *TaskTool) Name() string { return "task" }

func (t *TaskTool) Description() string {
	var sb strings.Builder
	sb.WriteString("Delegate one focused research task to a specialized sub-agent. The sub-agent works in isolation and returns a summary; anything it stores as artifacts stays available afterwards. Issue several task calls in one turn to run them in parallel.\n\nAvailable sub-agents:\n")
	for _, spec := range t.delegator.Kinds() {
		fmt.Fprintf(&sb, "- %s: %s\n", spec.Name, spec.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (t *TaskTool) Parameters() map[string]any {
	return map[string]any{
		"description": map[string]any{
			"type":        "string",
			"description": "Complete, self-contained task description. The sub-agent sees nothing else of this conversation.",
		},
		"subagent_type": map[string]any{
			"type":        "string",
			"description": "Which sub-agent kind to use.",
		},
	}
}

func (t *TaskTool) RequiredParameters() []string {
	return []string{"description", "subagent_type"}
}

// ParallelSafe marks the task tool for concurrent same-turn execution.
func (t *TaskTool) ParallelSafe() bool { return true }

func (t *TaskTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	description, ok := args["description"].(string)
	if !ok || strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("missing string parameter 'description'")
	}
	kind, ok := args["subagent_type"].(string)
	if !ok || kind == "" {
		return nil, fmt.Errorf("missing string parameter 'subagent_type'")
	}

	result := t.delegator.Delegate(ctx, kind, description, sess)
	return api.TextResult(result), nil
}
