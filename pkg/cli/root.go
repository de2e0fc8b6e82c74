// Package cli holds the command-line front-end: one-shot issue and ask
// commands, the interactive REPL, and the long-running serve mode.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sleuth",
	Short: "Investigate GitHub repositories and issues with delegated reasoning sessions",
	Long: `sleuth coordinates a main reasoning session and specialized sub-agents to
investigate software repositories: it fetches issues, explores code, searches
the web for known errors, and produces a report with root cause and
suggested fix.

Configuration lives in config.json (providers, channels) and system.json
(budgets, timeouts). Secrets (GITHUB_TOKEN, TAVILY_API_KEY) come from the
environment or a .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
