package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newActivityCmd())
}

func newActivityCmd() *cobra.Command {
	var limit int

	activityCmd := &cobra.Command{
		Use:   "activity",
		Short: "List recent sync attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cp, err := newCPClient()
			if err != nil {
				return err
			}

			resp, err := cp.Activity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(resp.Activity) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), gray.Render("no sync activity yet"))
				return nil
			}

			out := cmd.OutOrStdout()
			for _, entry := range resp.Activity {
				line := fmt.Sprintf("%-14s %-9s %-8s",
					humanize.Time(entry.FinishedAt),
					entry.Trigger,
					styledOutcome(string(entry.Outcome)))
				if entry.Detail != "" {
					line += " " + gray.Render(entry.Detail)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	activityCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Max entries to show")

	return activityCmd
}
