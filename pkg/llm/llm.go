package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// json handles all JSON work inside package llm, standardized on json-iterator.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LLMUsage is the provider-neutral usage accounting structure.
type LLMUsage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	ThoughtsTokens   int    `json:"thoughts_tokens,omitempty"`
	CachedTokens     int    `json:"cached_tokens,omitempty"`
	StopReason       string `json:"stop_reason,omitempty"`
}

// Add accumulates another usage record into this one. The reasoning loop
// uses it to total usage across iterations and sub-sessions.
func (u *LLMUsage) Add(other *LLMUsage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.ThoughtsTokens += other.ThoughtsTokens
	u.CachedTokens += other.CachedTokens
}

// LLMClient is the unified model interface.
type LLMClient interface {
	// Chat sends the transcript plus the available tool schemas and returns
	// one full assistant turn. An empty tools slice means plain generation.
	Chat(ctx context.Context, messages []Message, tools []ToolSchema) (*Completion, error)

	// IsTransientError reports whether the error is retryable (503, rate
	// limit, timeout).
	IsTransientError(err error) bool
}

// FallbackClient tries multiple clients in priority order, retrying each on
// transient errors before moving to the next.
type FallbackClient struct {
	Clients    []LLMClient
	MaxRetries int
	RetryDelay time.Duration
}

func (f *FallbackClient) Chat(ctx context.Context, messages []Message, tools []ToolSchema) (*Completion, error) {
	var lastErr error
	for i, client := range f.Clients {
		if i > 0 {
			slog.Warn("Previous provider failed, trying fallback", "provider_index", i+1)
		}

		maxRetries := f.MaxRetries
		if maxRetries <= 0 {
			maxRetries = 1
		}

		for retry := 1; retry <= maxRetries; retry++ {
			if retry > 1 {
				slog.Info("Retrying provider", "provider_index", i+1, "attempt", retry, "max", maxRetries)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Duration(retry-1) * f.RetryDelay):
				}
			}

			completion, err := client.Chat(ctx, messages, tools)
			if err == nil {
				return completion, nil
			}

			lastErr = err

			if client.IsTransientError(err) && retry < maxRetries {
				slog.Warn("Provider failed with transient error, retrying", "provider_index", i+1, "error", err)
				continue
			}

			slog.Error("Provider failed", "provider_index", i+1, "error", err)
			break
		}
	}
	return nil, fmt.Errorf("all fallback providers failed. Last error: %v", lastErr)
}

// IsTransientError implements LLMClient. A FallbackClient error means every
// child already exhausted its retries, so it is not transient itself.
func (f *FallbackClient) IsTransientError(err error) bool {
	return false
}
