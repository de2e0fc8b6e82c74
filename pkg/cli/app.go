package cli

import (
	"fmt"

	"sleuth/pkg/config"
	"sleuth/pkg/llm"
	"sleuth/pkg/monitor"
	"sleuth/pkg/orchestrator"
	"sleuth/pkg/state"
)

// App bundles everything a command needs after startup.
type App struct {
	Config   *config.Config
	System   *config.SystemConfig
	Creds    *config.Credentials
	Client   llm.LLMClient
	Sessions *llm.SessionManager
	Orch     *orchestrator.Orchestrator
}

// bootstrap loads configuration and credentials and assembles the
// investigation stack. Every command starts here.
func bootstrap() (*App, error) {
	cfg, sysCfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	monitor.SetupSlog(sysCfg.LogLevel)

	creds := config.LoadCredentials()
	creds.LogStatus()

	client, err := llm.NewFromConfig(cfg.LLM, sysCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init LLM client: %w", err)
	}

	sessions := llm.NewSessionManager(cfg.HistoryDir)
	orch := orchestrator.Build(client, cfg, sysCfg, creds, sessions)

	return &App{
		Config:   cfg,
		System:   sysCfg,
		Creds:    creds,
		Client:   client,
		Sessions: sessions,
		Orch:     orch,
	}, nil
}

// printReport renders a final message and the session's artifacts to stdout.
func printReport(final llm.Message, sess *state.Session, showThinking bool) {
	if showThinking {
		if thinking := final.GetThinkingContent(); thinking != "" {
			fmt.Printf("💭 Reasoning:\n%s\n\n", thinking)
		}
	}

	fmt.Println(final.GetTextContent())

	if sess == nil {
		return
	}
	if artifacts := sess.Artifacts.List(); len(artifacts) > 0 {
		fmt.Println("\nArtifacts collected:")
		for _, a := range artifacts {
			fmt.Printf("  %s (%d bytes)\n", a.Name, a.Size)
		}
	}
}

// progressPrinter writes engine progress events to stdout.
func progressPrinter(event string) {
	fmt.Printf("  %s\n", event)
}
