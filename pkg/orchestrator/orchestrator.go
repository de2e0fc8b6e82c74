// Package orchestrator assembles the investigation system: it owns the tool
// registry, the engine, and per-conversation state, and exposes the
// operations the front-ends call.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"sleuth/pkg/agent"
	"sleuth/pkg/api"
	"sleuth/pkg/config"
	"sleuth/pkg/github"
	"sleuth/pkg/llm"
	"sleuth/pkg/prompts"
	"sleuth/pkg/state"
	"sleuth/pkg/utils"
)

// Orchestrator coordinates one main reasoning loop per request and the
// sub-sessions it delegates. It implements api.Investigator for the gateway.
type Orchestrator struct {
	engine    *agent.Engine
	registry  api.ToolRegistry
	appCfg    *config.Config
	sysCfg    *config.SystemConfig
	histories *llm.SessionManager
	responder api.MessageResponder
	progress  agent.ProgressFunc

	mu       sync.Mutex
	sessions map[string]*state.Session
}

// New creates an orchestrator over an assembled engine and registry. The
// registry must already contain the task tool. The history manager is shared
// with channels that replay transcripts.
func New(engine *agent.Engine, registry api.ToolRegistry, appCfg *config.Config, sysCfg *config.SystemConfig, histories *llm.SessionManager) *Orchestrator {
	return &Orchestrator{
		engine:    engine,
		registry:  registry,
		appCfg:    appCfg,
		sysCfg:    sysCfg,
		histories: histories,
		sessions:  make(map[string]*state.Session),
	}
}

// SetResponder implements api.Investigator.
func (o *Orchestrator) SetResponder(responder api.MessageResponder) {
	o.responder = responder
}

// SetProgress installs the default progress callback applied to sessions the
// orchestrator creates (CLI front-ends). Channel sessions get a per-message
// callback routing to their channel instead.
func (o *Orchestrator) SetProgress(fn agent.ProgressFunc) {
	o.progress = fn
}

// sessionFor returns the state bundle for one conversation, creating it on
// first contact. Channel conversations keep one Session across turns.
func (o *Orchestrator) sessionFor(sessionID string) *state.Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	if sess, ok := o.sessions[sessionID]; ok {
		return sess
	}
	sess := state.NewSession()
	sess.Repo = o.appCfg.DefaultRepo
	o.sessions[sessionID] = sess
	return sess
}

// HandleMessage is the gateway entry point: one incoming channel message,
// one investigation turn, one reply.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg *api.UnifiedMessage) llm.Message {
	sessionID := fmt.Sprintf("%s_%s", msg.Session.ChannelID, msg.Session.ChatID)

	if msg.DebugID != "" {
		ctx = context.WithValue(ctx, llm.DebugDirContextKey, msg.DebugID)
	}

	history, err := o.histories.GetHistory(sessionID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load session history", "session", sessionID, "error", err)
		history = llm.NewChatHistory()
	}
	if history.Len() == 0 {
		history.Add(llm.NewSystemMessage(prompts.Orchestrator))
	}

	sess := o.sessionFor(sessionID)

	// Issue references become a structured investigation request; plain text
	// is passed through as-is.
	content := msg.Content
	if ref, err := github.ParseIssueRef(content); err == nil {
		sess.Repo = ref.Owner + "/" + ref.Repo
		sess.IssueRef = ref.String()
		content = prompts.IssueRequest(ref.String())
	}

	userMsg := llm.NewUserMessage(content)
	userMsg.ID = utils.GenerateID()
	history.Add(userMsg)
	o.histories.SaveSession(sessionID)

	// Progress rides on the session, not the shared engine: concurrent
	// chats each keep their own routing.
	if o.responder != nil {
		o.responder.SendSignal(msg.Session, "thinking")
		sess.Progress = func(event string) {
			o.responder.SendSignal(msg.Session, "progress:"+event)
		}
	}

	final, err := o.engine.Run(ctx, history, o.registry, sess, o.sysCfg.MainStepBudget)
	if err != nil {
		slog.ErrorContext(ctx, "Investigation failed", "session", sessionID, "error", err)
		final = llm.NewAssistantMessage(fmt.Sprintf("❌ Investigation failed: %v", err))
		final.Content = []llm.ContentBlock{llm.NewErrorBlock(final.GetTextContent())}
	}

	o.histories.SaveSession(sessionID)

	if o.responder != nil {
		text := final.GetTextContent()
		if text == "" {
			for _, b := range final.Content {
				if b.Type == llm.BlockTypeError {
					text = b.Text
				}
			}
		}
		if err := o.responder.SendReply(msg.Session, text); err != nil {
			slog.ErrorContext(ctx, "Failed to send reply", "session", sessionID, "error", err)
		}
	}

	return final
}

// InvestigateIssue runs a one-shot issue investigation (CLI entry).
func (o *Orchestrator) InvestigateIssue(ctx context.Context, refStr string) (llm.Message, *state.Session, error) {
	ref, err := github.ParseIssueRef(refStr)
	if err != nil {
		return llm.Message{}, nil, err
	}

	sess := state.NewSession()
	sess.Repo = ref.Owner + "/" + ref.Repo
	sess.IssueRef = ref.String()
	sess.Progress = o.progress

	history := llm.NewChatHistory()
	history.Add(llm.NewSystemMessage(prompts.Orchestrator))
	history.Add(llm.NewUserMessage(prompts.IssueRequest(ref.String())))

	final, err := o.engine.Run(ctx, history, o.registry, sess, o.sysCfg.MainStepBudget)
	if err != nil {
		return llm.Message{}, sess, err
	}
	return final, sess, nil
}

// Ask runs a one-shot repository question (CLI entry).
func (o *Orchestrator) Ask(ctx context.Context, repo, question string) (llm.Message, *state.Session, error) {
	if _, _, err := github.ValidateRepoName(repo); err != nil {
		return llm.Message{}, nil, err
	}

	sess := state.NewSession()
	sess.Repo = repo
	sess.Progress = o.progress

	history := llm.NewChatHistory()
	history.Add(llm.NewSystemMessage(prompts.Orchestrator))
	history.Add(llm.NewUserMessage(prompts.AskRequest(repo, question)))

	final, err := o.engine.Run(ctx, history, o.registry, sess, o.sysCfg.MainStepBudget)
	if err != nil {
		return llm.Message{}, sess, err
	}
	return final, sess, nil
}

// Continue runs one more turn on an existing session (interactive REPL).
func (o *Orchestrator) Continue(ctx context.Context, history *llm.ChatHistory, sess *state.Session, input string) (llm.Message, error) {
	if history.Len() == 0 {
		history.Add(llm.NewSystemMessage(prompts.Orchestrator))
	}
	if sess.Progress == nil {
		sess.Progress = o.progress
	}
	history.Add(llm.NewUserMessage(input))
	return o.engine.Run(ctx, history, o.registry, sess, o.sysCfg.MainStepBudget)
}
