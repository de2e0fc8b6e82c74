package cli

import (
	"github.com/spf13/cobra"
)

var issueCmd = &cobra.Command{
	Use:   "issue <ref>",
	Short: "Investigate one GitHub issue and print a report",
	Long: `Investigates a single GitHub issue end to end: fetches the thread,
explores the repository, researches the error, and prints a report with root
cause and suggested fix.

The reference is either a full URL (https://github.com/owner/repo/issues/123)
or the short form owner/repo#123.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap()
		if err != nil {
			return err
		}

		app.Orch.SetProgress(progressPrinter)

		final, sess, err := app.Orch.InvestigateIssue(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printReport(final, sess, app.System.ShowThinking)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(issueCmd)
}
