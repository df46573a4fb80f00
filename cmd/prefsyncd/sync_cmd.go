package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/prefsync/prefsync/internal/client/commands"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
}

func newSyncCmd() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Inspect and control preferences sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cp, err := newCPClient()
			if err != nil {
				return err
			}

			status, err := cp.SyncStatus(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", lightGray.Render("status"), styledStatus(status.Status))
			if last := status.LastAttempt; last != nil {
				fmt.Fprintf(out, "%s %s (%s, %s)\n",
					lightGray.Render("last attempt"),
					humanize.Time(last.FinishedAt),
					last.Trigger,
					styledOutcome(string(last.Outcome)))
			}
			return nil
		},
	}

	syncCmd.AddCommand(
		&cobra.Command{
			Use:   "now",
			Short: "Run a sync attempt immediately",
			RunE: func(cmd *cobra.Command, args []string) error {
				cmd.SilenceUsage = true

				cp, err := newCPClient()
				if err != nil {
					return err
				}
				if err := cp.SyncNow(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), green.Render("sync started"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "on",
			Short: "Enable auto sync",
			RunE:  setAutoSyncRunE(true),
		},
		&cobra.Command{
			Use:   "off",
			Short: "Disable auto sync",
			RunE:  setAutoSyncRunE(false),
		},
	)

	return syncCmd
}

// setAutoSyncRunE flips auto sync through the matching daemon command, so the
// daemon side effects (out-of-band attempt, engine stop) apply.
func setAutoSyncRunE(enabled bool) func(cmd *cobra.Command, args []string) error {
	cmdID := commands.CmdStartSync
	if !enabled {
		cmdID = commands.CmdStopSync
	}

	return func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cp, err := newCPClient()
		if err != nil {
			return err
		}
		if err := cp.RunCommand(cmd.Context(), cmdID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "auto sync %s\n", onOff(enabled))
		return nil
	}
}

func styledOutcome(outcome string) string {
	switch outcome {
	case "ok":
		return green.Render(outcome)
	case "error":
		return red.Render(outcome)
	default:
		return gray.Render(outcome)
	}
}
