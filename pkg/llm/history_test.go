package llm

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastAssistantText(t *testing.T) {
	t.Parallel()
	h := NewChatHistory()
	assert.Equal(t, "", h.LastAssistantText())

	h.Add(NewSystemMessage("sys"))
	h.Add(NewUserMessage("question"))
	h.Add(NewAssistantMessage("first answer"))
	h.Add(NewUserMessage("follow-up"))
	assert.Equal(t, "first answer", h.LastAssistantText())

	h.Add(NewAssistantMessage("second answer"))
	assert.Equal(t, "second answer", h.LastAssistantText())
}

func TestLastAssistantTextSkipsToolCallOnlyTurns(t *testing.T) {
	t.Parallel()
	h := NewChatHistory()
	h.Add(NewAssistantMessage("real text"))

	// Tool-call turn with no visible text.
	h.Add(Message{
		Role:      "assistant",
		ToolCalls: []ToolCall{{ID: "c1", Name: "ls"}},
	})
	assert.Equal(t, "real text", h.LastAssistantText())
}

func TestGetMessagesForUIFiltersTranscript(t *testing.T) {
	t.Parallel()
	h := NewChatHistory()
	h.Add(NewSystemMessage("system prompt"))
	h.Add(NewUserMessage("what broke?"))
	h.Add(Message{Role: "assistant", ToolCalls: []ToolCall{{ID: "c1", Name: "get_issue"}}})
	h.Add(NewToolMessage("c1", "get_issue", "issue body"))
	h.Add(NewAssistantMessage("the report"))

	ui := h.GetMessagesForUI()
	require.Len(t, ui, 2)
	assert.Equal(t, "user", ui[0].Role)
	assert.Equal(t, "what broke?", ui[0].GetTextContent())
	assert.Equal(t, "assistant", ui[1].Role)
	assert.Equal(t, "the report", ui[1].GetTextContent())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "session.json")

	h := NewChatHistory()
	h.Add(NewSystemMessage("sys"))
	h.Add(NewUserMessage("hello"))
	h.Add(NewAssistantMessage("hi"))
	require.NoError(t, h.Save(path))

	loaded := NewChatHistory()
	require.NoError(t, loaded.Load(path))
	require.Equal(t, 3, loaded.Len())
	assert.Equal(t, "hi", loaded.GetMessages()[2].GetTextContent())
}

func TestLoadMissingFileLeavesHistoryEmpty(t *testing.T) {
	t.Parallel()
	h := NewChatHistory()
	require.NoError(t, h.Load(filepath.Join(t.TempDir(), "nope.json")))
	assert.Equal(t, 0, h.Len())
}
