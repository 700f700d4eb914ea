package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnlens/internal/question"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage the question registry",
}

var questionsImportCmd = &cobra.Command{
	Use:   "import <user> <file|->",
	Short: "Import a JSON question batch",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if args[1] == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(args[1])
		}
		if err != nil {
			return fmt.Errorf("read batch: %w", err)
		}

		qs, err := question.ParseBatch(raw, args[0])
		if err != nil {
			return err
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.engine.RegisterQuestions(cmd.Context(), qs...); err != nil {
			return err
		}
		fmt.Printf("Imported %d question(s) for %s.\n", len(qs), args[0])
		return nil
	},
}

var questionsListCmd = &cobra.Command{
	Use:   "list <user>",
	Short: "List a user's questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		qs := rt.engine.Registry().ForUser(args[0])
		if len(qs) == 0 {
			fmt.Println("No questions found.")
			return nil
		}

		fmt.Printf("%-12s  %-12s  %-20s  %-12s  %-6s  %s\n", "ID", "Quiz", "Topic", "Type", "Level", "Text")
		fmt.Println(strings.Repeat("─", 100))
		for _, q := range qs {
			fmt.Printf("%-12s  %-12s  %-20s  %-12s  %-6s  %s\n",
				clip(q.ID, 12), clip(q.QuizID, 12), clip(q.Topic, 20), q.Type, q.Difficulty, clip(q.Text, 40))
		}
		return nil
	},
}

func init() {
	questionsCmd.AddCommand(questionsImportCmd)
	questionsCmd.AddCommand(questionsListCmd)
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
