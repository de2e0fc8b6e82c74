// Package agent contains the reasoning loop and the delegation machinery:
// the Engine drives one tool-calling session against a step budget, the
// Delegator spawns isolated sub-sessions, and the task tool exposes
// delegation to the model.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sleuth/pkg/api"
	"sleuth/pkg/config"
	"sleuth/pkg/llm"
	"sleuth/pkg/state"
	"sleuth/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BudgetExhaustedNotice prefixes the degraded final message produced when a
// session runs out of steps before answering.
const BudgetExhaustedNotice = "⚠️ Step budget exhausted before the investigation finished."

// ProgressFunc receives short human-readable progress events (tool
// executions, delegations). Optional; nil disables reporting.
type ProgressFunc func(event string)

// Engine drives one reasoning loop: model call, tool execution, repeat,
// bounded by a strict step budget. One Engine is shared by the orchestrator
// and all sub-sessions; per-run state, the progress callback included,
// arrives through the arguments. The Engine itself is never mutated after
// construction, so concurrent runs are safe.
type Engine struct {
	client llm.LLMClient
	sysCfg *config.SystemConfig
}

// NewEngine creates an engine around a model client.
func NewEngine(client llm.LLMClient, sysCfg *config.SystemConfig) *Engine {
	return &Engine{
		client: client,
		sysCfg: sysCfg,
	}
}

// report emits a progress event through the session's callback, if any.
func (e *Engine) report(sess *state.Session, format string, args ...any) {
	if sess != nil && sess.Progress != nil {
		sess.Progress(fmt.Sprintf(format, args...))
	}
}

// Run executes the loop until the model answers without tool calls or the
// budget runs out. Every iteration costs one budget unit regardless of how
// many tool calls it carries. The returned message is always a usable final
// answer; budget exhaustion degrades to a partial answer rather than an
// error. An error is returned only when the model itself is unreachable.
func (e *Engine) Run(ctx context.Context, history *llm.ChatHistory, registry api.ToolRegistry, sess *state.Session, budget int) (llm.Message, error) {
	schemas := registry.Schemas()
	totalUsage := &llm.LLMUsage{}

	for step := 0; step < budget; step++ {
		completion, err := e.chat(ctx, history, schemas)
		if err != nil {
			return llm.Message{}, fmt.Errorf("model call failed at step %d: %w", step+1, err)
		}

		assistantMsg := completion.Message
		assistantMsg.ID = utils.GenerateID()
		assistantMsg.Timestamp = time.Now().Unix()
		totalUsage.Add(completion.Usage)
		assistantMsg.Usage = totalUsage
		history.Add(assistantMsg)

		if !assistantMsg.HasToolCalls() {
			return assistantMsg, nil
		}

		e.executeToolCalls(ctx, assistantMsg.ToolCalls, registry, sess, history)
	}

	// Budget gone: salvage whatever the session produced.
	slog.WarnContext(ctx, "Step budget exhausted", "budget", budget)
	final := llm.NewAssistantMessage(degradedAnswer(history))
	final.ID = utils.GenerateID()
	final.Usage = totalUsage
	history.Add(final)
	return final, nil
}

// chat performs one model call under the configured timeout.
func (e *Engine) chat(ctx context.Context, history *llm.ChatHistory, schemas []llm.ToolSchema) (*llm.Completion, error) {
	timeout := time.Duration(e.sysCfg.LLMTimeoutMs) * time.Millisecond
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return e.client.Chat(runCtx, history.GetMessages(), schemas)
}

// executeToolCalls resolves every call of one assistant turn and appends one
// observation per call, in request order. Ordinary tools run sequentially;
// when a turn consists of multiple parallel-safe calls (delegations) they
// run concurrently with bounded parallelism.
func (e *Engine) executeToolCalls(ctx context.Context, calls []llm.ToolCall, registry api.ToolRegistry, sess *state.Session, history *llm.ChatHistory) {
	observations := make([]llm.Message, len(calls))

	if len(calls) > 1 && e.allParallelSafe(calls, registry) {
		limit := e.sysCfg.MaxParallelDelegations
		if limit <= 0 {
			limit = 1
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i, tc := range calls {
			g.Go(func() error {
				observations[i] = e.resolveToolCall(gctx, tc, registry, sess)
				return nil
			})
		}
		g.Wait()
	} else {
		for i, tc := range calls {
			observations[i] = e.resolveToolCall(ctx, tc, registry, sess)
		}
	}

	for _, obs := range observations {
		history.Add(obs)
	}
}

func (e *Engine) allParallelSafe(calls []llm.ToolCall, registry api.ToolRegistry) bool {
	for _, tc := range calls {
		tool, ok := registry.Get(cleanToolName(tc.Name))
		if !ok {
			return false
		}
		ps, ok := tool.(api.ParallelSafe)
		if !ok || !ps.ParallelSafe() {
			return false
		}
	}
	return true
}

// resolveToolCall guarantees an observation for every call, even if the
// tool panics. Failures stay inside the transcript as error text; nothing
// here aborts the loop.
func (e *Engine) resolveToolCall(ctx context.Context, tc llm.ToolCall, registry api.ToolRegistry, sess *state.Session) (obs llm.Message) {
	var text string

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Tool execution panicked", "tool", tc.Name, "error", r)
			text = fmt.Sprintf("Error: tool '%s' crashed internally", cleanToolName(tc.Name))
		}
		obs = llm.NewToolMessage(tc.ID, tc.Name, text)
		obs.ID = utils.GenerateID()
	}()

	text = e.handleToolCall(ctx, tc, registry, sess)
	return
}

// handleToolCall resolves, parses, and executes one call, returning the
// observation text.
func (e *Engine) handleToolCall(ctx context.Context, tc llm.ToolCall, registry api.ToolRegistry, sess *state.Session) string {
	cleanName := cleanToolName(tc.Name)

	tool, ok := registry.Get(cleanName)
	if !ok {
		slog.WarnContext(ctx, "Unknown tool call", "name", tc.Name)
		return fmt.Sprintf("Error: Unknown tool '%s'. Available tools: %s", cleanName, availableNames(registry))
	}

	var args map[string]any
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			slog.WarnContext(ctx, "Failed to parse tool args", "tool", cleanName, "error", err)
			return fmt.Sprintf("Error: Failed to parse tool arguments: %v", err)
		}
	}
	if args == nil {
		args = make(map[string]any)
	}

	slog.InfoContext(ctx, "Executing tool", "name", cleanName)
	e.report(sess, "🛠️ %s", cleanName)

	res, err := tool.Execute(ctx, args, sess)
	if err != nil {
		slog.WarnContext(ctx, "Tool execution error", "name", cleanName, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}

	return flattenResult(res)
}

func cleanToolName(name string) string {
	return strings.TrimPrefix(name, "functions.")
}

func availableNames(registry api.ToolRegistry) string {
	var names []string
	for _, t := range registry.GetAll() {
		names = append(names, t.Name())
	}
	return strings.Join(names, ", ")
}

// flattenResult joins a tool result's text blocks into observation text.
func flattenResult(res *api.ToolResult) string {
	if res == nil || len(res.Content) == 0 {
		return "(No output)"
	}
	var sb strings.Builder
	for _, b := range res.Content {
		if b.Text != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "(No output)"
	}
	return sb.String()
}

// degradedAnswer builds the partial final message for an exhausted session.
func degradedAnswer(history *llm.ChatHistory) string {
	if partial := history.LastAssistantText(); partial != "" {
		return fmt.Sprintf("%s Partial findings so far:\n\n%s", BudgetExhaustedNotice, partial)
	}
	return BudgetExhaustedNotice + " No conclusive findings were produced."
}
