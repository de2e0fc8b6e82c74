package llm

import (
	"os"
	"sync"
)

// ChatHistory manages one transcript. Append-only: messages are never
// reordered or rewritten once added.
type ChatHistory struct {
	messages []Message
	mu       sync.RWMutex
}

// NewChatHistory creates an empty transcript.
func NewChatHistory() *ChatHistory {
	return &ChatHistory{
		messages: make([]Message, 0),
	}
}

// Add appends one message.
func (h *ChatHistory) Add(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)
}

// GetMessages returns a copy of the current transcript.
func (h *ChatHistory) GetMessages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cp := make([]Message, len(h.messages))
	copy(cp, h.messages)
	return cp
}

// Len returns the number of messages.
func (h *ChatHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// LastAssistantText returns the text of the most recent assistant message,
// or "" if none exists. Used to salvage a partial answer on budget
// exhaustion.
func (h *ChatHistory) LastAssistantText() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.messages) - 1; i >= 0; i-- {
		if h.messages[i].Role == "assistant" {
			if text := h.messages[i].GetTextContent(); text != "" {
				return text
			}
		}
	}
	return ""
}

// GetMessagesForUI returns the user-facing slice of the transcript: user and
// assistant messages that carry visible text. System prompts, tool
// observations, and tool-call-only turns are skipped.
func (h *ChatHistory) GetMessagesForUI() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []Message
	for _, msg := range h.messages {
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		if msg.GetTextContent() == "" {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// Save persists the transcript as JSON.
func (h *ChatHistory) Save(path string) error {
	h.mu.RLock()
	data, err := json.MarshalIndent(h.messages, "", "  ")
	h.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load restores a transcript from disk. A missing file leaves the history
// empty and is not an error.
func (h *ChatHistory) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return err
	}

	h.mu.Lock()
	h.messages = messages
	h.mu.Unlock()
	return nil
}
