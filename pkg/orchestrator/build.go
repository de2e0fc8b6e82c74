package orchestrator

import (
	"time"

	"sleuth/pkg/agent"
	"sleuth/pkg/config"
	"sleuth/pkg/github"
	"sleuth/pkg/llm"
	"sleuth/pkg/research"
	"sleuth/pkg/tools"
)

// Build assembles the full investigation stack around a model client: the
// tool registry, the engine, the delegator, and the orchestrator itself.
// Search tools are registered only when a Tavily key is present; everything
// else works unauthenticated at reduced rate limits.
func Build(client llm.LLMClient, cfg *config.Config, sysCfg *config.SystemConfig, creds *config.Credentials, histories *llm.SessionManager) *Orchestrator {
	reg := tools.NewRegistry()

	// Planning and reflection
	reg.Register(tools.NewWriteTodosTool())
	reg.Register(tools.NewReadTodosTool())
	reg.Register(tools.NewMarkTodoDoneTool())
	reg.Register(tools.NewThinkTool())

	// Artifact workspace
	reg.Register(tools.NewLsTool())
	reg.Register(tools.NewReadFileTool())
	reg.Register(tools.NewWriteFileTool())

	// GitHub retrieval
	ghTimeout := time.Duration(sysCfg.GithubTimeoutMs) * time.Millisecond
	gh := github.NewService(creds.GithubToken, ghTimeout)
	reg.Register(tools.NewListRepoTreeTool(gh))
	reg.Register(tools.NewSearchCodeTool(gh))
	reg.Register(tools.NewReadRepoFileTool(gh))
	reg.Register(tools.NewGetIssueTool(gh))
	reg.Register(tools.NewRepoInfoTool(gh))

	// Web research, only with a key
	if creds.TavilyAPIKey != "" {
		searchTimeout := time.Duration(sysCfg.SearchTimeoutMs) * time.Millisecond
		searcher := research.NewTavilyClient(creds.TavilyAPIKey, searchTimeout)
		var summarizer *research.Summarizer
		if sysCfg.SummarizeSearchResults {
			summarizer = research.NewSummarizer(client)
		}
		reg.Register(tools.NewSearchWebTool(searcher, summarizer))
	}
	reg.Register(tools.NewExtractStackTraceTool())

	engine := agent.NewEngine(client, sysCfg)
	delegator := agent.NewDelegator(engine, reg, sysCfg.SubStepBudget)

	// The task tool lives only on the orchestrator registry; sub-agent specs
	// never include it, so delegation cannot nest.
	reg.Register(agent.NewTaskTool(delegator))

	return New(engine, reg, cfg, sysCfg, histories)
}
