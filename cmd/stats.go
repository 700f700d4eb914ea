package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnlens/internal/render"
	"github.com/abhisek/learnlens/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats <user>",
	Short: "Show XP, level and streak",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		d, err := rt.views.Dashboard(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(d.Stats)
		}
		fmt.Println(render.Stats(d.Stats))
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard <user>",
	Short: "Show the full progress dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		d, err := rt.views.Dashboard(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(d)
		}
		fmt.Println(render.Dashboard(args[0], d))
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <user>",
	Short: "List questions due for review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		items, err := rt.views.Review(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(items)
		}
		fmt.Println(render.Review(items))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <user>",
	Short: "List recorded answer events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		since, _ := cmd.Flags().GetDuration("since")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := store.QueryOpts{UserID: args[0], Limit: limit}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := rt.store.EventRepo().QueryAnswerEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No answer events found.")
			return nil
		}

		fmt.Printf("%-6s  %-19s  %-12s  %-20s  %-5s  %s\n", "Seq", "Timestamp", "Question", "Topic", "Hints", "OK")
		fmt.Println(strings.Repeat("─", 80))
		for _, e := range events {
			ok := "✓"
			if !e.Correct {
				ok = "✗"
			}
			fmt.Printf("%-6d  %-19s  %-12s  %-20s  %-5d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format(time.DateTime),
				clip(e.QuestionID, 12),
				clip(e.Topic, 20),
				e.HintsUsed,
				ok,
			)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{statsCmd, dashboardCmd, reviewCmd} {
		c.Flags().Bool("json", false, "Print JSON instead of text")
	}
	historyCmd.Flags().Int("limit", 20, "Maximum number of events (newest kept)")
	historyCmd.Flags().Duration("since", 0, "Only events newer than this duration, e.g. 72h")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
