package cli

import (
	"github.com/spf13/cobra"
)

var cfgFile string

// Execute builds the command tree and runs it.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portalctl",
		Short: "Operate a whistledesk deployment",
		Long: `portalctl runs maintenance tasks against the portal database: bootstrapping
the admin account, reading the audit trail, sweeping expired sessions and
editing role policies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yml)")

	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newAuditCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newIssuesCmd())
	cmd.AddCommand(newAuthzCmd())

	return cmd
}
