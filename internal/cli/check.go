package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/the-dev-tools/ordering/pkg/movable"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		scopes []string
		all    bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report spacing and integrity warnings",
		Long:  `Report spacing and integrity warnings for the given scopes, or for every scope with --all.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				scopes = nil
			}
			return a.withManager(cmd.Context(), func(m *movable.Manager) error {
				reports, err := m.CheckScopes(cmd.Context(), scopes)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), reports)
				}
				return printReports(cmd.OutOrStdout(), reports)
			})
		},
	}
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "scope to check (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "check every scope in the store")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.MarkFlagsOneRequired("scope", "all")
	cmd.MarkFlagsMutuallyExclusive("scope", "all")
	return cmd
}

func printReports(w io.Writer, reports []movable.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCOPE\tITEMS\tUNORDERED\tMIN GAP\tREBALANCE")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%g\t%t\n", r.Scope, r.Metrics.Total, r.Metrics.Unordered, r.Metrics.MinGap, r.NeedsRebalancing)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, r := range reports {
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "warning: %s: %s\n", r.Scope, warning)
		}
	}
	return nil
}
