package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prefsync/prefsync/internal/client/commands"
)

func init() {
	rootCmd.AddCommand(newContinueCmd())
}

func newContinueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "continue",
		Short: "Continue a conflicted sync after reviewing the merge preview",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cp, err := newCPClient()
			if err != nil {
				return err
			}
			if err := cp.RunCommand(cmd.Context(), commands.CmdContinueSync); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green.Render("sync continued"))
			return nil
		},
	}
}
