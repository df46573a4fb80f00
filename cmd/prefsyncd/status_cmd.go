package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and sync engine status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cp, err := newCPClient()
			if err != nil {
				return err
			}

			status, err := cp.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", lightGray.Render("daemon"), green.Render(status.Status))
			fmt.Fprintf(out, "%s %s\n", lightGray.Render("version"), status.Version)
			fmt.Fprintf(out, "%s %s\n", lightGray.Render("engine"), styledStatus(status.Engine.Status))
			fmt.Fprintf(out, "%s %s\n", lightGray.Render("auto sync"), onOff(status.AutoSync))
			if status.Runtime != nil {
				fmt.Fprintf(out, "%s pid %d, %d goroutines, rss %s\n",
					lightGray.Render("process"),
					status.Runtime.PID,
					status.Runtime.Goroutines,
					humanize.IBytes(status.Runtime.MemoryRSS))
			}
			return nil
		},
	}
}
