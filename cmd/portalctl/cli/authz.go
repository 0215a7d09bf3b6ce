package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/whistledesk/internal/constants"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/provider"
	"github.com/whistledesk/internal/service"

	"github.com/spf13/cobra"
)

func newAuthzCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authz",
		Short: "Manage role policies",
		Long: `Policies live in the casbin_rule table. A running server keeps its own copy;
call POST /admin/authz/reload after a change so it takes effect.`,
	}

	cmd.AddCommand(newAuthzListCmd())
	cmd.AddCommand(newAuthzPolicyCmd("grant", "Allow a role to call an admin route", constants.ActivityAuthzPolicyGranted))
	cmd.AddCommand(newAuthzPolicyCmd("revoke", "Remove a policy from a role", constants.ActivityAuthzPolicyRevoked))

	return cmd
}

func newAuthzListCmd() *cobra.Command {
	var (
		role       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the policies held by a role",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := openContainer()
			if err != nil {
				return err
			}
			defer closeContainer(container)

			policies, err := container.AuthzService.GetRolePolicies(role)
			if err != nil {
				return fmt.Errorf("list policies: %w", err)
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, policies)
			}
			if len(policies) == 0 {
				fmt.Fprintf(out, "Role %s holds no policies.\n", role)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SUBJECT\tOBJECT\tACTION")
			for _, p := range policies {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Subject, p.Object, p.Action)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&role, "role", constants.RoleAdmin, "Role to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")

	return cmd
}

func newAuthzPolicyCmd(verb, short, activity string) *cobra.Command {
	var role, object, action string

	cmd := &cobra.Command{
		Use:     verb,
		Short:   short,
		Example: fmt.Sprintf("  portalctl authz %s --role admin --object /admin/audit-trails --action GET", verb),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := openContainer()
			if err != nil {
				return err
			}
			defer closeContainer(container)

			if err := applyPolicyChange(container, verb, role, object, action); err != nil {
				return err
			}
			container.AuditService.Record(service.AuditEntry{
				Meta:     cliMeta("authz " + verb),
				Activity: activity,
				Actor:    service.AuditActor{Name: "portalctl"},
				Data:     models.JSON{"role": role, "object": object, "action": action},
			})
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s for role %s: done\n", verb, action, object, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", constants.RoleAdmin, "Role to change")
	cmd.Flags().StringVar(&object, "object", "", "Route pattern, e.g. /admin/issues/:ref (required)")
	cmd.Flags().StringVar(&action, "action", "", "HTTP method or * (required)")
	cmd.MarkFlagRequired("object")
	cmd.MarkFlagRequired("action")

	return cmd
}

func applyPolicyChange(container *provider.Container, verb, role, object, action string) error {
	switch verb {
	case "grant":
		return container.AuthzService.GrantRolePolicy(role, object, action)
	case "revoke":
		return container.AuthzService.RevokeRolePolicy(role, object, action)
	default:
		return fmt.Errorf("unknown policy change %q", verb)
	}
}
