package research

import (
	"context"
	"fmt"
	"strings"

	"sleuth/pkg/llm"
)

const summarizePrompt = `Condense the following webpage content. Keep error messages, stack traces, version numbers, configuration snippets, and proposed fixes verbatim. Drop navigation text, ads, and unrelated discussion. Answer with the condensed content only.`

// Summarizer compresses retrieved pages through the model before they are
// offloaded, so artifacts stay focused on the error under investigation.
type Summarizer struct {
	client llm.LLMClient
}

// NewSummarizer wraps an LLM client for page compression.
func NewSummarizer(client llm.LLMClient) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize condenses one page. On any model failure the original content is
// returned unchanged; summarization is best-effort.
func (s *Summarizer) Summarize(ctx context.Context, result SearchResult) string {
	content := result.RawContent
	if content == "" {
		content = result.Content
	}
	if s.client == nil || strings.TrimSpace(content) == "" {
		return content
	}

	messages := []llm.Message{
		llm.NewSystemMessage(summarizePrompt),
		llm.NewUserMessage(fmt.Sprintf("Title: %s\nURL: %s\n\n%s", result.Title, result.URL, content)),
	}

	completion, err := s.client.Chat(ctx, messages, nil)
	if err != nil {
		return content
	}
	if text := completion.Message.GetTextContent(); strings.TrimSpace(text) != "" {
		return text
	}
	return content
}
