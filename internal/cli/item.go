package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/the-dev-tools/ordering/pkg/idwrap"
	"github.com/the-dev-tools/ordering/pkg/movable"
)

func newItemCmd(a *app) *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Add, remove, show and list items",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	itemCmd.AddCommand(newItemAddCmd(a), newItemRemoveCmd(a), newItemShowCmd(a), newItemListCmd(a))
	return itemCmd
}

func newItemAddCmd(a *app) *cobra.Command {
	var scope, id, name string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append an item to the end of a scope",
		Long:  `Append an item to the end of a scope. Without --id a new ULID is generated.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				id = idwrap.NewNow().String()
			}
			return a.withManager(cmd.Context(), func(m *movable.Manager) error {
				plan, err := m.Append(cmd.Context(), scope, id, name)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s at order %s\n", plan.NewItemID, formatOrder(&plan.Order))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "scope holding the item")
	cmd.Flags().StringVar(&id, "id", "", "item id")
	cmd.Flags().StringVar(&name, "name", "", "item name, used as a tie-break")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func newItemRemoveCmd(a *app) *cobra.Command {
	var scope, id string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove an item from a scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *movable.Manager) error {
				if err := m.Remove(cmd.Context(), scope, id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "scope holding the item")
	cmd.Flags().StringVar(&id, "id", "", "item id")
	_ = cmd.MarkFlagRequired("scope")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// itemDetail is an item with the creation time carried by generated ids.
type itemDetail struct {
	movable.OrderedItem
	Created *time.Time `json:"created,omitempty"`
}

func newItemShowCmd(a *app) *cobra.Command {
	var (
		scope, id string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a single item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(st itemStore) error {
				item, err := st.Get(cmd.Context(), scope, id)
				if err != nil {
					return err
				}
				detail := itemDetail{OrderedItem: item}
				if generated, err := idwrap.NewText(item.ID); err == nil {
					created := generated.Time().UTC()
					detail.Created = &created
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), detail)
				}
				return printDetail(cmd.OutOrStdout(), detail)
			})
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "scope holding the item")
	cmd.Flags().StringVar(&id, "id", "", "item id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("scope")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newItemListCmd(a *app) *cobra.Command {
	var (
		scope  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a scope in visual order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *movable.Manager) error {
				items, err := m.Items(cmd.Context(), scope)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), items)
				}
				return printItems(cmd.OutOrStdout(), items)
			})
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "scope to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}
