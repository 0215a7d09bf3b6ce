package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain admin sessions",
	}

	cmd.AddCommand(newSessionsSweepCmd())

	return cmd
}

func newSessionsSweepCmd() *cobra.Command {
	var retentionHours int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete sessions that expired before the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := openContainer()
			if err != nil {
				return err
			}
			defer closeContainer(container)

			hours := retentionHours
			if hours <= 0 {
				hours = container.Config.Session.RetentionHours
			}
			deleted, err := container.AuthService.SweepExpiredSessions(time.Duration(hours) * time.Hour)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired sessions\n", deleted)
			return nil
		},
	}

	cmd.Flags().IntVar(&retentionHours, "retention-hours", 0, "Keep sessions expired less than this many hours (default from config)")

	return cmd
}
