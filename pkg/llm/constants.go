package llm

// StopReason constants define normalized reasons for LLM generation termination.
// All providers must normalize their native stop reasons to these values.
const (
	StopReasonStop    = "stop"     // Normal completion
	StopReasonLength  = "length"   // Output truncated due to token limit
	StopReasonToolUse = "tool_use" // Model stopped to request tool calls
)

// ContentBlock Type constants define the supported content block formats
// used throughout the message pipeline.
const (
	BlockTypeText     = "text"     // Plain text content
	BlockTypeThinking = "thinking" // Internal reasoning/chain-of-thought
	BlockTypeError    = "error"    // Error message displayed to user
)

// contextKey is a private type for context values set by the orchestration
// layer and read by provider clients.
type contextKey string

// DebugDirContextKey nests provider debug dumps under a per-session
// directory when present in the context.
const DebugDirContextKey contextKey = "llm_debug_dir"
