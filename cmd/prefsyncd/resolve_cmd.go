package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prefsync/prefsync/internal/client/commands"
)

func init() {
	rootCmd.AddCommand(newResolveCmd())
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Resolve pending sync conflicts with the engine's default strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cp, err := newCPClient()
			if err != nil {
				return err
			}
			if err := cp.RunCommand(cmd.Context(), commands.CmdResolveConflicts); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green.Render("conflicts resolved"))
			return nil
		},
	}
}
