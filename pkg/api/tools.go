package api

import (
	"context"

	"sleuth/pkg/llm"
	"sleuth/pkg/state"
)

// Tool defines the structural interface for any capability the agent can
// execute. It includes metadata for prompt injection (JSON Schema) and the
// execution logic itself. Session state is injected per call so the same
// tool instance can serve the orchestrator and any sub-session.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema property map for the tool's arguments.
	Parameters() map[string]any
	// RequiredParameters names the mandatory argument keys.
	RequiredParameters() []string
	// Execute performs the actual tool logic using the provided argument map.
	Execute(ctx context.Context, args map[string]any, sess *state.Session) (*ToolResult, error)
}

// ParallelSafe marks tools whose same-turn invocations may run concurrently.
// Tools without this marker always execute sequentially in request order.
type ParallelSafe interface {
	ParallelSafe() bool
}

// ToolResult encapsulates the outcome of a tool execution.
type ToolResult struct {
	Content []ContentBlock `json:"content"`           // Ordered blocks of result data
	Details map[string]any `json:"details,omitempty"` // Arbitrary technical metadata
}

// ContentBlock is an atomic data unit within a ToolResult.
type ContentBlock struct {
	Type string `json:"type"` // Data format: currently "text" only
	Text string `json:"text,omitempty"`
}

// TextResult wraps plain text in a ToolResult.
func TextResult(text string) *ToolResult {
	return &ToolResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

// ToolRegistry defines the interface for managing and accessing tools.
type ToolRegistry interface {
	Register(tool Tool)
	Unregister(name string)
	Get(name string) (Tool, bool)
	GetAll() []Tool
	// Subset derives a registry restricted to the named tools. Unknown names
	// are skipped. Used to narrow what a sub-session may call.
	Subset(names ...string) ToolRegistry
	// Schemas produces the provider-neutral declarations for every tool.
	Schemas() []llm.ToolSchema
}
