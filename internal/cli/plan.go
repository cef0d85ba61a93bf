package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/the-dev-tools/ordering/pkg/movable"
	"github.com/the-dev-tools/ordering/pkg/snapshot"
)

// planFlags are shared by the plan subcommands, which run against a
// snapshot file instead of the configured store.
type planFlags struct {
	file  string
	write bool
}

func newPlanCmd(a *app) *cobra.Command {
	var flags planFlags
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute ordering changes on a snapshot file",
		Long: `Compute ordering changes on a JSON or YAML snapshot file. Nothing is
written unless --write is given, in which case the file is updated in place.`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	planCmd.PersistentFlags().StringVarP(&flags.file, "file", "f", "", "snapshot file (.json, .yaml or .yml)")
	planCmd.PersistentFlags().BoolVar(&flags.write, "write", false, "write the result back to the file")
	_ = planCmd.MarkPersistentFlagRequired("file")

	planCmd.AddCommand(
		newPlanMoveCmd(a, &flags),
		newPlanRebalanceCmd(a, &flags),
		newPlanBackfillCmd(a, &flags),
	)
	return planCmd
}

// withSnapshot runs fn with a manager over the snapshot and saves the
// result when requested.
func (a *app) withSnapshot(ctx context.Context, flags *planFlags, fn func(*movable.Manager, string) error) error {
	snap, err := snapshot.Read(flags.file)
	if err != nil {
		return err
	}
	st := snapshot.NewStore(snap)
	manager, err := a.newManager(st)
	if err != nil {
		return err
	}
	if err := fn(manager, st.Scope()); err != nil {
		return err
	}
	if !flags.write {
		return nil
	}
	if err := snapshot.Write(flags.file, st.Snapshot()); err != nil {
		return err
	}
	a.logger.Info("Wrote snapshot", "file", flags.file, "scope", st.Scope())
	return nil
}

func newPlanMoveCmd(a *app, pf *planFlags) *cobra.Command {
	var flags moveFlags
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Plan a move",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSnapshot(cmd.Context(), pf, func(m *movable.Manager, scope string) error {
				result, err := flags.run(cmd.Context(), m, scope)
				if err != nil {
					return err
				}
				return flags.print(cmd.OutOrStdout(), result)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newPlanRebalanceCmd(a *app, pf *planFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Plan a rebalance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSnapshot(cmd.Context(), pf, func(m *movable.Manager, scope string) error {
				updates, rebalanced, err := m.Rebalance(cmd.Context(), scope, force)
				if err != nil {
					return err
				}
				if !rebalanced {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "no rebalance needed")
					return err
				}
				return printUpdates(cmd.OutOrStdout(), updates)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "rebalance even when spacing is healthy")
	return cmd
}

func newPlanBackfillCmd(a *app, pf *planFlags) *cobra.Command {
	var sortByName bool
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Plan a backfill of unordered items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSnapshot(cmd.Context(), pf, func(m *movable.Manager, scope string) error {
				updates, err := m.Backfill(cmd.Context(), scope, sortByName)
				if err != nil {
					return err
				}
				return printUpdates(cmd.OutOrStdout(), updates)
			})
		},
	}
	cmd.Flags().BoolVar(&sortByName, "sort-by-name", false, "place unordered items alphabetically")
	return cmd
}
