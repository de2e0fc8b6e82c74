package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sleuth/pkg/api"
	"sleuth/pkg/config"
	"sleuth/pkg/llm"
	"sleuth/pkg/state"
	"sleuth/pkg/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient scripts model behavior per call.
type fakeClient struct {
	mu    sync.Mutex
	calls int
	chat  func(call int, msgs []llm.Message, tools []llm.ToolSchema) (*llm.Completion, error)
}

func (f *fakeClient) Chat(ctx context.Context, msgs []llm.Message, schemas []llm.ToolSchema) (*llm.Completion, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.chat(call, msgs, schemas)
}

func (f *fakeClient) IsTransientError(err error) bool { return false }

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func textCompletion(text string) *llm.Completion {
	return &llm.Completion{
		Message:    llm.NewAssistantMessage(text),
		StopReason: llm.StopReasonStop,
		Usage:      &llm.LLMUsage{TotalTokens: 10},
	}
}

func toolCallCompletion(calls ...llm.ToolCall) *llm.Completion {
	return &llm.Completion{
		Message: llm.Message{
			Role:      "assistant",
			ToolCalls: calls,
		},
		StopReason: llm.StopReasonToolUse,
		Usage:      &llm.LLMUsage{TotalTokens: 10},
	}
}

func toolCall(id, name, args string) llm.ToolCall {
	return llm.ToolCall{
		ID:       id,
		Name:     name,
		Function: llm.FunctionCall{Name: name, Arguments: args},
	}
}

// echoTool is a minimal scriptable tool for loop tests.
type echoTool struct {
	name     string
	parallel bool
	execute  func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error)
}

func (t *echoTool) Name() string                 { return t.name }
func (t *echoTool) Description() string          { return "test tool" }
func (t *echoTool) Parameters() map[string]any   { return map[string]any{} }
func (t *echoTool) RequiredParameters() []string { return nil }
func (t *echoTool) ParallelSafe() bool           { return t.parallel }
func (t *echoTool) Execute(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
	return t.execute(ctx, args, sess)
}

func newTestHistory() *llm.ChatHistory {
	h := llm.NewChatHistory()
	h.Add(llm.NewSystemMessage("You investigate repositories."))
	h.Add(llm.NewUserMessage("What is wrong?"))
	return h
}

func TestRunReturnsFinalAnswerWithoutTools(t *testing.T) {
	t.Parallel()
	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		return textCompletion("the root cause is X"), nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())
	history := newTestHistory()

	final, err := engine.Run(context.Background(), history, tools.NewRegistry(), state.NewSession(), 5)
	require.NoError(t, err)
	assert.Equal(t, "the root cause is X", final.GetTextContent())
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, 3, history.Len(), "final answer is appended to the transcript")
}

func TestRunExecutesToolThenFinishes(t *testing.T) {
	t.Parallel()
	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		if call == 1 {
			return toolCallCompletion(toolCall("c1", "echo", `{"v":"hi"}`)), nil
		}
		return textCompletion("done"), nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	reg := tools.NewRegistry()
	reg.Register(&echoTool{name: "echo", execute: func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		return api.TextResult(fmt.Sprintf("echo: %v", args["v"])), nil
	}})

	history := newTestHistory()
	final, err := engine.Run(context.Background(), history, reg, state.NewSession(), 5)
	require.NoError(t, err)
	assert.Equal(t, "done", final.GetTextContent())

	msgs := history.GetMessages()
	require.Len(t, msgs, 5)
	assert.Equal(t, "assistant", msgs[2].Role)
	require.Len(t, msgs[2].ToolCalls, 1)
	assert.Equal(t, "tool", msgs[3].Role)
	assert.Equal(t, "c1", msgs[3].ToolCallID)
	assert.Equal(t, "echo: hi", msgs[3].GetTextContent())
	assert.Equal(t, "assistant", msgs[4].Role)
}

func TestRunUnknownToolContinuesLoop(t *testing.T) {
	t.Parallel()
	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		if call == 1 {
			return toolCallCompletion(toolCall("c1", "bogus", `{}`)), nil
		}
		return textCompletion("recovered"), nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	reg := tools.NewRegistry()
	reg.Register(&echoTool{name: "echo", execute: func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		return api.TextResult("ok"), nil
	}})

	history := newTestHistory()
	final, err := engine.Run(context.Background(), history, reg, state.NewSession(), 5)
	require.NoError(t, err, "an unknown tool must not abort the session")
	assert.Equal(t, "recovered", final.GetTextContent())

	obs := history.GetMessages()[3]
	assert.Equal(t, "tool", obs.Role)
	assert.Contains(t, obs.GetTextContent(), "Error: Unknown tool 'bogus'")
	assert.Contains(t, obs.GetTextContent(), "echo", "the observation names the available tools")
}

func TestRunBadArgumentsBecomeObservation(t *testing.T) {
	t.Parallel()
	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		if call == 1 {
			return toolCallCompletion(toolCall("c1", "echo", `{not json`)), nil
		}
		return textCompletion("ok"), nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	reg := tools.NewRegistry()
	reg.Register(&echoTool{name: "echo", execute: func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		return api.TextResult("never reached"), nil
	}})

	history := newTestHistory()
	_, err := engine.Run(context.Background(), history, reg, state.NewSession(), 5)
	require.NoError(t, err)
	assert.Contains(t, history.GetMessages()[3].GetTextContent(), "Error: Failed to parse tool arguments")
}

func TestRunToolErrorBecomesObservation(t *testing.T) {
	t.Parallel()
	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		if call == 1 {
			return toolCallCompletion(toolCall("c1", "echo", `{}`)), nil
		}
		return textCompletion("ok"), nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	reg := tools.NewRegistry()
	reg.Register(&echoTool{name: "echo", execute: func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		return nil, errors.New("boom")
	}})

	history := newTestHistory()
	_, err := engine.Run(context.Background(), history, reg, state.NewSession(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Error: boom", history.GetMessages()[3].GetTextContent())
}

func TestRunToolPanicBecomesObservation(t *testing.T) {
	t.Parallel()
	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		if call == 1 {
			return toolCallCompletion(toolCall("c1", "kaboom", `{}`)), nil
		}
		return textCompletion("still alive"), nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	reg := tools.NewRegistry()
	reg.Register(&echoTool{name: "kaboom", execute: func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		panic("internal bug")
	}})

	history := newTestHistory()
	final, err := engine.Run(context.Background(), history, reg, state.NewSession(), 5)
	require.NoError(t, err)
	assert.Equal(t, "still alive", final.GetTextContent())

	obs := history.GetMessages()[3]
	assert.Equal(t, "c1", obs.ToolCallID, "a panicking tool still yields an observation for its call")
	assert.Contains(t, obs.GetTextContent(), "Error: tool 'kaboom' crashed internally")
}

func TestRunBudgetBoundsIterations(t *testing.T) {
	t.Parallel()
	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		return toolCallCompletion(toolCall(fmt.Sprintf("c%d", call), "echo", `{}`)), nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	reg := tools.NewRegistry()
	reg.Register(&echoTool{name: "echo", execute: func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		return api.TextResult("ok"), nil
	}})

	final, err := engine.Run(context.Background(), newTestHistory(), reg, state.NewSession(), 3)
	require.NoError(t, err, "budget exhaustion is a degraded answer, not an error")
	assert.Equal(t, 3, client.callCount(), "exactly budget iterations")
	assert.Contains(t, final.GetTextContent(), BudgetExhaustedNotice)
	assert.Contains(t, final.GetTextContent(), "No conclusive findings")
}

func TestRunBudgetExhaustionSalvagesPartialText(t *testing.T) {
	t.Parallel()
	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		c := toolCallCompletion(toolCall(fmt.Sprintf("c%d", call), "echo", `{}`))
		c.Message.Content = []llm.ContentBlock{llm.NewTextBlock("partial insight so far")}
		return c, nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	reg := tools.NewRegistry()
	reg.Register(&echoTool{name: "echo", execute: func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		return api.TextResult("ok"), nil
	}})

	final, err := engine.Run(context.Background(), newTestHistory(), reg, state.NewSession(), 2)
	require.NoError(t, err)
	assert.Contains(t, final.GetTextContent(), BudgetExhaustedNotice)
	assert.Contains(t, final.GetTextContent(), "partial insight so far")
}

func TestRunModelErrorPropagates(t *testing.T) {
	t.Parallel()
	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		return nil, errors.New("connection refused")
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	_, err := engine.Run(context.Background(), newTestHistory(), tools.NewRegistry(), state.NewSession(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRunMultiCallObservationsKeepRequestOrder(t *testing.T) {
	t.Parallel()
	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		if call == 1 {
			return toolCallCompletion(
				toolCall("c1", "slow", `{}`),
				toolCall("c2", "fast", `{}`),
			), nil
		}
		return textCompletion("done"), nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	// Both parallel-safe: the slow one finishes last, but its observation
	// must still come first.
	reg := tools.NewRegistry()
	reg.Register(&echoTool{name: "slow", parallel: true, execute: func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		time.Sleep(60 * time.Millisecond)
		return api.TextResult("slow result"), nil
	}})
	reg.Register(&echoTool{name: "fast", parallel: true, execute: func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		return api.TextResult("fast result"), nil
	}})

	history := newTestHistory()
	_, err := engine.Run(context.Background(), history, reg, state.NewSession(), 5)
	require.NoError(t, err)

	msgs := history.GetMessages()
	require.GreaterOrEqual(t, len(msgs), 5)
	assert.Equal(t, "c1", msgs[3].ToolCallID)
	assert.Equal(t, "slow result", msgs[3].GetTextContent())
	assert.Equal(t, "c2", msgs[4].ToolCallID)
	assert.Equal(t, "fast result", msgs[4].GetTextContent())
}

func TestRunParallelSafeCallsRunConcurrently(t *testing.T) {
	t.Parallel()
	var inFlight, peak atomic.Int32

	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		if call == 1 {
			return toolCallCompletion(
				toolCall("c1", "probe", `{}`),
				toolCall("c2", "probe", `{}`),
			), nil
		}
		return textCompletion("done"), nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	reg := tools.NewRegistry()
	reg.Register(&echoTool{name: "probe", parallel: true, execute: func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		n := inFlight.Add(1)
		if n > peak.Load() {
			peak.Store(n)
		}
		time.Sleep(50 * time.Millisecond)
		inFlight.Add(-1)
		return api.TextResult("ok"), nil
	}})

	_, err := engine.Run(context.Background(), newTestHistory(), reg, state.NewSession(), 5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, peak.Load(), int32(2), "parallel-safe calls of one turn overlap")
}

func TestRunMixedCallsStaySequential(t *testing.T) {
	t.Parallel()
	var inFlight, peak atomic.Int32

	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		if call == 1 {
			return toolCallCompletion(
				toolCall("c1", "probe", `{}`),
				toolCall("c2", "plain", `{}`),
			), nil
		}
		return textCompletion("done"), nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	track := func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		n := inFlight.Add(1)
		if n > peak.Load() {
			peak.Store(n)
		}
		time.Sleep(30 * time.Millisecond)
		inFlight.Add(-1)
		return api.TextResult("ok"), nil
	}

	reg := tools.NewRegistry()
	reg.Register(&echoTool{name: "probe", parallel: true, execute: track})
	reg.Register(&echoTool{name: "plain", parallel: false, execute: track})

	_, err := engine.Run(context.Background(), newTestHistory(), reg, state.NewSession(), 5)
	require.NoError(t, err)
	assert.Equal(t, int32(1), peak.Load(), "one non-parallel-safe call forces the whole turn sequential")
}

// Progress routing is per-session state. Two investigations sharing one
// Engine must each receive exactly their own events; the serve path runs
// every incoming message in its own goroutine.
func TestRunRoutesProgressPerSession(t *testing.T) {
	t.Parallel()
	client := &fakeClient{chat: func(call int, msgs []llm.Message, _ []llm.ToolSchema) (*llm.Completion, error) {
		if msgs[len(msgs)-1].Role == "tool" {
			return textCompletion("done"), nil
		}
		return toolCallCompletion(toolCall("c1", "echo", `{}`)), nil
	}}
	engine := NewEngine(client, config.DefaultSystemConfig())

	reg := tools.NewRegistry()
	reg.Register(&echoTool{name: "echo", execute: func(ctx context.Context, args map[string]any, sess *state.Session) (*api.ToolResult, error) {
		time.Sleep(20 * time.Millisecond)
		return api.TextResult("ok"), nil
	}})

	newSession := func(events *[]string, mu *sync.Mutex) *state.Session {
		sess := state.NewSession()
		sess.Progress = func(event string) {
			mu.Lock()
			*events = append(*events, event)
			mu.Unlock()
		}
		return sess
	}

	var mu sync.Mutex
	var eventsA, eventsB []string
	sessA := newSession(&eventsA, &mu)
	sessB := newSession(&eventsB, &mu)

	var wg sync.WaitGroup
	for _, sess := range []*state.Session{sessA, sessB} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Run(context.Background(), newTestHistory(), reg, sess, 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"🛠️ echo"}, eventsA, "session A sees exactly its own event")
	assert.Equal(t, []string{"🛠️ echo"}, eventsB, "session B sees exactly its own event")
}

func TestCleanToolNameStripsProviderPrefix(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "search_code", cleanToolName("functions.search_code"))
	assert.Equal(t, "search_code", cleanToolName("search_code"))
}

func TestFlattenResultFallsBackOnEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "(No output)", flattenResult(nil))
	assert.Equal(t, "(No output)", flattenResult(&api.ToolResult{}))
	assert.Equal(t, "a\nb", flattenResult(&api.ToolResult{Content: []api.ContentBlock{
		{Type: "text", Text: "a"},
		{Type: "text", Text: "b"},
	}}))
}

func TestDegradedAnswerWithoutPartial(t *testing.T) {
	t.Parallel()
	h := llm.NewChatHistory()
	h.Add(llm.NewSystemMessage("sys"))
	out := degradedAnswer(h)
	assert.True(t, strings.HasPrefix(out, BudgetExhaustedNotice))
}
