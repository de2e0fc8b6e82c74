package cli

import (
	"fmt"
	"io"
	"strings"

	"sleuth/pkg/llm"
	"sleuth/pkg/state"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var interactiveRepo string

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"repl"},
	Short:   "Start an interactive investigation session",
	Long: `Opens a REPL sharing one session across turns: artifacts, the plan,
and the conversation carry over, so follow-up questions build on earlier
findings. Exit with "exit", "quit", or Ctrl-D.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap()
		if err != nil {
			return err
		}

		app.Orch.SetProgress(progressPrinter)

		sess := state.NewSession()
		sess.Repo = interactiveRepo
		if sess.Repo == "" {
			sess.Repo = app.Config.DefaultRepo
		}
		history := llm.NewChatHistory()

		rl, err := readline.New("sleuth> ")
		if err != nil {
			return fmt.Errorf("failed to init readline: %w", err)
		}
		defer rl.Close()

		if sess.Repo != "" {
			fmt.Printf("Investigating %s. Ask a question or paste an issue reference.\n", sess.Repo)
		} else {
			fmt.Println("No default repository configured. Paste an issue reference or name a repo in your question.")
		}

		for {
			line, err := rl.Readline()
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				break
			}

			input := strings.TrimSpace(line)
			if input == "" {
				continue
			}
			if input == "exit" || input == "quit" {
				break
			}

			final, err := app.Orch.Continue(cmd.Context(), history, sess, input)
			if err != nil {
				fmt.Printf("❌ %v\n", err)
				continue
			}

			printReport(final, sess, app.System.ShowThinking)
		}

		fmt.Println("Bye!")
		return nil
	},
}

func init() {
	interactiveCmd.Flags().StringVar(&interactiveRepo, "repo", "", "repository to scope the session (owner/repo)")
	rootCmd.AddCommand(interactiveCmd)
}
