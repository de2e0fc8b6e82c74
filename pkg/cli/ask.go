package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <owner/repo> <question>",
	Short: "Ask a one-shot question about a repository",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap()
		if err != nil {
			return err
		}

		app.Orch.SetProgress(progressPrinter)

		repo := args[0]
		question := strings.Join(args[1:], " ")

		final, sess, err := app.Orch.Ask(cmd.Context(), repo, question)
		if err != nil {
			return err
		}

		printReport(final, sess, app.System.ShowThinking)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
