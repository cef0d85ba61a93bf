package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/the-dev-tools/ordering/pkg/movable"
)

func newRebalanceCmd(a *app) *cobra.Command {
	var (
		scope  string
		force  bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Renumber a scope whose orders have grown too close",
		Long: `Renumber a scope with evenly spaced orders. Without --force nothing is
written unless two neighbouring orders are closer than the minimum gap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *movable.Manager) error {
				updates, rebalanced, err := m.Rebalance(cmd.Context(), scope, force)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), updates)
				}
				if !rebalanced {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s does not need rebalancing\n", scope)
					return err
				}
				return printUpdates(cmd.OutOrStdout(), updates)
			})
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "scope to rebalance")
	cmd.Flags().BoolVar(&force, "force", false, "rebalance even when spacing is healthy")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func newBackfillCmd(a *app) *cobra.Command {
	var (
		scope      string
		sortByName bool
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Give every unordered item of a scope an order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *movable.Manager) error {
				updates, err := m.Backfill(cmd.Context(), scope, sortByName)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), updates)
				}
				return printUpdates(cmd.OutOrStdout(), updates)
			})
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "scope to backfill")
	cmd.Flags().BoolVar(&sortByName, "sort-by-name", false, "place unordered items alphabetically")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}
