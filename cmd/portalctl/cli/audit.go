package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/whistledesk/internal/repository"

	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the audit trail",
	}

	cmd.AddCommand(newAuditListCmd())

	return cmd
}

func newAuditListCmd() *cobra.Command {
	var (
		limit      int
		endpoint   string
		actorModel string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the most recent audit entries",
		Example: `  portalctl audit list --limit 50
  portalctl audit list --endpoint /login --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := openContainer()
			if err != nil {
				return err
			}
			defer closeContainer(container)

			rows, total, err := container.AuditService.ListForAdmin(repository.AuditTrailListFilter{
				Page:       1,
				PageSize:   limit,
				Endpoint:   endpoint,
				ActorModel: actorModel,
			})
			if err != nil {
				return fmt.Errorf("list audit trail: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No audit entries match.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTIVITY\tENDPOINT\tACTOR\tIP")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					row.CreatedAt.UTC().Format(time.RFC3339),
					row.Activity,
					row.Endpoint,
					row.ActorName,
					row.IPAddress,
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d of %d entries\n", len(rows), total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Only entries for this endpoint")
	cmd.Flags().StringVar(&actorModel, "actor-model", "", "Only entries by this actor model (Admin, Reporter)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
