package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay [user]",
	Short: "Rebuild projections from the event log and heal stale caches",
	Long: "Replay the answer log from empty state and compare the result with the " +
		"cached mastery, schedule and progress rows. Mismatched caches are rewritten. " +
		"Every start performs this check; replay reports what it found.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		healed := 0
		for _, inc := range rt.report.Healed {
			if len(args) == 1 && inc.UserID != args[0] {
				continue
			}
			healed++
			fmt.Printf("%s: healed %d difference(s)\n", inc.UserID, len(inc.Diffs))
			for _, d := range inc.Diffs {
				fmt.Println("  -", d)
			}
		}

		if len(args) == 1 {
			// A user without events is not part of the startup check.
			if healed == 0 {
				if _, err := rt.engine.Reconcile(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("%s: consistent\n", args[0])
			}
			return nil
		}
		fmt.Printf("Checked %d user(s) and %d question(s), healed %d.\n",
			rt.report.Users, rt.report.Questions, healed)
		return nil
	},
}
