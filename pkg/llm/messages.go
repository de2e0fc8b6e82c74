package llm

import (
	"time"
)

//----------------------------------------------------------------
// Message - unified message structure shared by all providers
//----------------------------------------------------------------

// Message represents one conversation record. The transcript is an ordered,
// append-only sequence of these; providers translate to and from their
// native shapes at the client boundary.
type Message struct {
	ID        string         `json:"id,omitempty"`
	Role      string         `json:"role"`    // "user", "assistant", "system", "tool"
	Content   []ContentBlock `json:"content"` // ordered content blocks
	Timestamp int64          `json:"timestamp,omitempty"`

	// ToolCalls carries the tool invocation requests produced by the model
	// (role: assistant only).
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool observation back to the call it answers
	// (role: tool only).
	ToolCallID string `json:"tool_call_id,omitempty"`

	// ToolName names the tool that produced this observation (role: tool
	// only). Gemini requires it on function responses.
	ToolName string `json:"tool_name,omitempty"`

	// Usage carries the accounting for the turn that produced this message
	// (role: assistant only).
	Usage *LLMUsage `json:"usage,omitempty"`
}

// ToolCall represents one tool invocation request from the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Function FunctionCall `json:"function"`

	// Meta holds provider-specific metadata (e.g. Gemini's thought
	// signature). Never serialized, internal transport only.
	Meta map[string]any `json:"-"`
}

// FunctionCall carries the concrete tool name and arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

//----------------------------------------------------------------
// ContentBlock - unified content block
//----------------------------------------------------------------

// ContentBlock is one piece of message content.
// Supported types: text, thinking, error.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

//----------------------------------------------------------------
// Completion - one full model turn
//----------------------------------------------------------------

// Completion is the result of a single Chat call: the assistant message,
// the normalized stop reason, and usage accounting.
type Completion struct {
	Message    Message   `json:"message"`
	StopReason string    `json:"stop_reason"`
	Usage      *LLMUsage `json:"usage,omitempty"`
}

//----------------------------------------------------------------
// ToolSchema - tool declaration handed to the model
//----------------------------------------------------------------

// ToolSchema describes one callable tool in a provider-neutral form.
// Parameters follows JSON Schema property conventions; providers convert
// it to their native function-declaration format.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Required    []string       `json:"required,omitempty"`
}

//----------------------------------------------------------------
// Helper Functions - Message
//----------------------------------------------------------------

// NewTextMessage builds a plain-text message.
func NewTextMessage(role, text string) Message {
	return Message{
		Role: role,
		Content: []ContentBlock{{
			Type: BlockTypeText,
			Text: text,
		}},
		Timestamp: time.Now().Unix(),
	}
}

// NewSystemMessage builds a system message.
func NewSystemMessage(text string) Message {
	return NewTextMessage("system", text)
}

// NewUserMessage builds a user message.
func NewUserMessage(text string) Message {
	return NewTextMessage("user", text)
}

// NewAssistantMessage builds an assistant message.
func NewAssistantMessage(text string) Message {
	return NewTextMessage("assistant", text)
}

// NewToolMessage builds a tool observation answering the given call.
func NewToolMessage(callID, toolName, text string) Message {
	return Message{
		Role: "tool",
		Content: []ContentBlock{{
			Type: BlockTypeText,
			Text: text,
		}},
		Timestamp:  time.Now().Unix(),
		ToolCallID: callID,
		ToolName:   toolName,
	}
}

// AddContentBlock appends a content block to the message.
func (m *Message) AddContentBlock(block ContentBlock) {
	m.Content = append(m.Content, block)
}

// GetTextContent concatenates all text blocks (thinking excluded).
func (m *Message) GetTextContent() string {
	var result string
	for _, block := range m.Content {
		if block.Type == BlockTypeText {
			result += block.Text
		}
	}
	return result
}

// GetThinkingContent concatenates all thinking blocks.
func (m *Message) GetThinkingContent() string {
	var result string
	for _, block := range m.Content {
		if block.Type == BlockTypeThinking {
			result += block.Text
		}
	}
	return result
}

// HasToolCalls reports whether the message requests any tool invocation.
func (m *Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

//----------------------------------------------------------------
// Helper Functions - ContentBlock
//----------------------------------------------------------------

// NewTextBlock builds a text block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{
		Type: BlockTypeText,
		Text: text,
	}
}

// NewThinkingBlock builds a thinking block.
func NewThinkingBlock(text string) ContentBlock {
	return ContentBlock{
		Type: BlockTypeThinking,
		Text: text,
	}
}

// NewErrorBlock builds an error block.
func NewErrorBlock(text string) ContentBlock {
	return ContentBlock{
		Type: BlockTypeError,
		Text: text,
	}
}
