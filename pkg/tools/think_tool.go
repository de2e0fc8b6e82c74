package tools

import (
	"context"

	"sleuth/pkg/api"
	"sleuth/pkg/state"
)

// ThinkTool gives the model a scratchpad turn. The reflection lands in the
// transcript as a normal observation and has no side effects.
type ThinkTool struct{}

func NewThinkTool() *ThinkTool { return &ThinkTool{} }

func (t *ThinkTool) Name() string { return "think" }

func (t *ThinkTool) Description() string {
	return "Reflect on progress: what was learned, what is still missing, and what the next step should be. Use after retrieving substantial information or before changing direction."
}

func (t *ThinkTool) Parameters() map[string]any {
	return map[string]any{
		"reflection": map[string]any{
			"type":        "string",
			"description": "The reflection text.",
		},
	}
}

func (t *ThinkTool) RequiredParameters() []string { return []string{"reflection"} }

func (t *ThinkTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	reflection, err := stringArg(args, "reflection")
	if err != nil {
		return nil, err
	}
	return api.TextResult("Reflection recorded: " + reflection), nil
}
