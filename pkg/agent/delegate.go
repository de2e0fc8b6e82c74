package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"sleuth/pkg/api"
	"sleuth/pkg/llm"
	"sleuth/pkg/prompts"
	"sleuth/pkg/state"
)

// SubAgentSpec declares one delegatable sub-agent kind: what it is for,
// which tools it may call, how many steps it gets, and the prompt that
// seeds its transcript. Adding a kind is adding an entry to the registry.
type SubAgentSpec struct {
	Name        string
	Description string
	Tools       []string
	StepBudget  int
	Prompt      string
}

// Delegator spawns isolated sub-sessions. Each delegation gets a fresh
// transcript seeded only with the kind's prompt and the task description;
// the caller's conversation is never visible inside. Artifacts and plan are
// shared by reference, so sub-session writes merge forward automatically.
type Delegator struct {
	engine   *Engine
	registry api.ToolRegistry

	mu    sync.RWMutex
	specs map[string]SubAgentSpec
}

// NewDelegator creates a delegator over the full tool registry; each spec
// narrows it per delegation. The built-in kinds are pre-registered.
func NewDelegator(engine *Engine, registry api.ToolRegistry, subBudget int) *Delegator {
	d := &Delegator{
		engine:   engine,
		registry: registry,
		specs:    make(map[string]SubAgentSpec),
	}

	d.RegisterKind(SubAgentSpec{
		Name:        "repo-investigator",
		Description: "Explores the repository: file tree, code search, file reading. Use for questions about how the code works or where a behavior lives.",
		Tools:       []string{"list_repo_tree", "search_code", "read_repo_file", "repo_info", "think", "ls", "read_file", "write_file"},
		StepBudget:  subBudget,
		Prompt:      prompts.RepoInvestigator,
	})
	d.RegisterKind(SubAgentSpec{
		Name:        "error-researcher",
		Description: "Researches errors externally: stack trace extraction and web search for known issues and fixes.",
		Tools:       []string{"extract_stack_trace", "search_web", "think", "ls", "read_file", "write_file"},
		StepBudget:  subBudget,
		Prompt:      prompts.ErrorResearcher,
	})

	return d
}

// RegisterKind adds or replaces a sub-agent kind.
func (d *Delegator) RegisterKind(spec SubAgentSpec) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.specs[spec.Name] = spec
}

// Kinds returns the registered specs sorted by name.
func (d *Delegator) Kinds() []SubAgentSpec {
	d.mu.RLock()
	defer d.mu.RUnlock()

	kinds := make([]SubAgentSpec, 0, len(d.specs))
	for _, spec := range d.specs {
		kinds = append(kinds, spec)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].Name < kinds[j].Name })
	return kinds
}

// Delegate runs one sub-session to completion and returns its result
// summary. Every failure mode (unknown kind, model failure, budget
// exhaustion) degrades to a result string; delegation never propagates an
// error to the caller's loop.
func (d *Delegator) Delegate(ctx context.Context, kind, description string, sess *state.Session) string {
	d.mu.RLock()
	spec, ok := d.specs[kind]
	d.mu.RUnlock()

	if !ok {
		var names []string
		for _, s := range d.Kinds() {
			names = append(names, s.Name)
		}
		return fmt.Sprintf("Error: unknown sub-agent kind %q. Available kinds: %s", kind, strings.Join(names, ", "))
	}

	slog.InfoContext(ctx, "Delegating to sub-agent", "kind", kind)

	history := llm.NewChatHistory()
	history.Add(llm.NewSystemMessage(spec.Prompt))
	history.Add(llm.NewUserMessage(description))

	subRegistry := d.registry.Subset(spec.Tools...)
	subSession := sess.ForSubAgent()

	final, err := d.engine.Run(ctx, history, subRegistry, subSession, spec.StepBudget)
	if err != nil {
		slog.ErrorContext(ctx, "Sub-agent failed", "kind", kind, "error", err)
		return fmt.Sprintf("Sub-agent %s failed: %v", kind, err)
	}

	result := final.GetTextContent()
	if strings.TrimSpace(result) == "" {
		return fmt.Sprintf("Sub-agent %s finished without producing a summary.", kind)
	}
	return result
}
