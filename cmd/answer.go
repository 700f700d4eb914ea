package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnlens/internal/event"
)

var answerCmd = &cobra.Command{
	Use:   "answer <user> <question-id>",
	Short: "Record a graded answer",
	Long: "Record a graded answer. Pass --correct or --incorrect, or a --score " +
		"between 0 and 1 (0.5 and above counts as correct).",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sub := event.Submission{UserID: args[0], QuestionID: args[1]}
		sub.UserAnswer, _ = cmd.Flags().GetString("answer")
		sub.HintsUsed, _ = cmd.Flags().GetInt("hints")

		switch {
		case cmd.Flags().Changed("correct"):
			v, _ := cmd.Flags().GetBool("correct")
			sub.Correct = &v
		case cmd.Flags().Changed("incorrect"):
			v, _ := cmd.Flags().GetBool("incorrect")
			v = !v
			sub.Correct = &v
		}
		if cmd.Flags().Changed("score") {
			v, _ := cmd.Flags().GetFloat64("score")
			sub.Score = &v
		}
		if at, _ := cmd.Flags().GetString("at"); at != "" {
			ts, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("parse --at: %w", err)
			}
			sub.Timestamp = ts
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.engine.Record(cmd.Context(), sub)
		if err != nil {
			return err
		}

		verdict := "✗ incorrect"
		if res.Event.Correct {
			verdict = "✓ correct"
		}
		fmt.Printf("%s  +%d XP  (event #%d)\n", verdict, res.XPEarned, res.Event.Sequence)
		fmt.Printf("Topic %s: mastery %.1f, next difficulty %s\n", res.Topic, res.Mastery, res.NextDifficulty)
		fmt.Printf("Next review in %d day(s), %s\n", res.Card.IntervalDays, res.Card.Due.Local().Format(time.DateTime))
		fmt.Printf("Level %d (%d/%d)  streak %d\n", res.Level.Level, res.Level.XPInLevel, res.Level.XPForNext, res.Streak)
		if res.LevelUp {
			fmt.Println("Level up!")
		}
		return nil
	},
}

var hintCmd = &cobra.Command{
	Use:   "hint <user> <question-id>",
	Short: "Reveal a hint for a question",
	Long: "Reveal a hint. The highest level revealed is counted against the next " +
		"answer to the question. Pending hints live only in the running process, " +
		"so pass --hints to answer when using separate CLI invocations.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetInt("level")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		grant, err := rt.engine.RequestHint(cmd.Context(), event.HintRequest{
			UserID:     args[0],
			QuestionID: args[1],
			Level:      level,
		})
		if err != nil {
			return err
		}
		if grant.Text == "" {
			fmt.Printf("No hint at level %d.\n", level)
		} else {
			fmt.Printf("Hint %d: %s\n", level, grant.Text)
		}
		fmt.Printf("%d hint(s) remaining\n", grant.Remaining)
		return nil
	},
}

func init() {
	answerCmd.Flags().Bool("correct", false, "Mark the answer correct")
	answerCmd.Flags().Bool("incorrect", false, "Mark the answer incorrect")
	answerCmd.Flags().Float64("score", 0, "Grader score between 0 and 1")
	answerCmd.Flags().Int("hints", 0, "Hints used (0-3)")
	answerCmd.Flags().String("answer", "", "The learner's answer text")
	answerCmd.Flags().String("at", "", "Answer time in RFC 3339 (default now)")
	answerCmd.MarkFlagsMutuallyExclusive("correct", "incorrect")

	hintCmd.Flags().Int("level", 1, "Hint level (1-3)")
}
