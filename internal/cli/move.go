package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/the-dev-tools/ordering/pkg/movable"
)

// moveFlags selects the destination of a move: a visual position or a
// neighbour to land after or before.
type moveFlags struct {
	id       string
	position int
	after    string
	before   string
	asJSON   bool
}

func (f *moveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "item to move")
	cmd.Flags().IntVar(&f.position, "position", 0, "1-based target position; out of range values are clamped")
	cmd.Flags().StringVar(&f.after, "after", "", "place the item directly after this item")
	cmd.Flags().StringVar(&f.before, "before", "", "place the item directly before this item")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("id")
	cmd.MarkFlagsOneRequired("position", "after", "before")
	cmd.MarkFlagsMutuallyExclusive("position", "after", "before")
}

func (f *moveFlags) run(ctx context.Context, m *movable.Manager, scope string) (*movable.MoveResult, error) {
	switch {
	case f.after != "":
		return m.Move(ctx, movable.MoveOperation{Scope: scope, ItemID: f.id, TargetID: f.after, Position: movable.MovePositionAfter})
	case f.before != "":
		return m.Move(ctx, movable.MoveOperation{Scope: scope, ItemID: f.id, TargetID: f.before, Position: movable.MovePositionBefore})
	default:
		return m.MoveToPosition(ctx, scope, f.id, f.position)
	}
}

func (f *moveFlags) print(w io.Writer, result *movable.MoveResult) error {
	if f.asJSON {
		return printJSON(w, result)
	}
	_, err := fmt.Fprintf(w, "moved %s to position %d (order %s)\n", result.ID, result.Position, formatOrder(&result.Order))
	if err != nil {
		return err
	}
	if result.Backfilled > 0 {
		fmt.Fprintf(w, "backfilled %d unordered items\n", result.Backfilled)
	}
	if result.Rebalanced {
		fmt.Fprintf(w, "rebalanced %d items\n", len(result.Updates))
	}
	return nil
}

func newMoveCmd(a *app) *cobra.Command {
	var (
		scope string
		flags moveFlags
	)
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move an item to a position or next to another item",
		Example: `  ordering move --scope board --id card-3 --position 1
  ordering move --scope board --id card-3 --after card-7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *movable.Manager) error {
				result, err := flags.run(cmd.Context(), m, scope)
				if err != nil {
					return err
				}
				return flags.print(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "scope holding the item")
	_ = cmd.MarkFlagRequired("scope")
	flags.register(cmd)
	return cmd
}
