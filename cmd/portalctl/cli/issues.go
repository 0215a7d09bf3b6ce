package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/whistledesk/internal/repository"

	"github.com/spf13/cobra"
)

func newIssuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "Inspect reported issues",
	}

	cmd.AddCommand(newIssuesListCmd())

	return cmd
}

func newIssuesListCmd() *cobra.Command {
	var (
		status     string
		source     string
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List issues, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := openContainer()
			if err != nil {
				return err
			}
			defer closeContainer(container)

			issues, total, err := container.IssueService.List(repository.IssueListFilter{
				Page:     1,
				PageSize: limit,
				Status:   status,
				Source:   source,
			})
			if err != nil {
				return fmt.Errorf("list issues: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, issues)
			}
			if len(issues) == 0 {
				fmt.Fprintln(out, "No issues match.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "REF\tSTATUS\tSOURCE\tTYPE\tCREATED")
			for _, issue := range issues {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					issue.Ref,
					issue.Status,
					issue.Source,
					issue.Malpractice.Type,
					issue.CreatedAt.UTC().Format(time.RFC3339),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d of %d issues\n", len(issues), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&source, "source", "", "Filter by source (web, ussd)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of issues")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
