package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/the-dev-tools/ordering/pkg/movable"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func formatOrder(order *float64) string {
	if order == nil {
		return "-"
	}
	return strconv.FormatFloat(*order, 'g', -1, 64)
}

// printItems lists sorted items with their 1-based visual position.
func printItems(w io.Writer, sorted []movable.OrderedItem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tID\tORDER\tNAME")
	for i, item := range sorted {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, item.ID, formatOrder(item.Order), item.Name)
	}
	return tw.Flush()
}

func printDetail(w io.Writer, detail itemDetail) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", detail.ID)
	fmt.Fprintf(tw, "NAME\t%s\n", detail.Name)
	fmt.Fprintf(tw, "ORDER\t%s\n", formatOrder(detail.Order))
	if detail.Created != nil {
		fmt.Fprintf(tw, "CREATED\t%s\n", detail.Created.Format(time.RFC3339))
	}
	return tw.Flush()
}

func printUpdates(w io.Writer, updates movable.OrderMap) error {
	if len(updates) == 0 {
		_, err := fmt.Fprintln(w, "no changes")
		return err
	}
	items := make([]movable.OrderedItem, 0, len(updates))
	for id, order := range updates {
		items = append(items, movable.OrderedItem{ID: id}.WithOrder(order))
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tORDER")
	for _, item := range movable.SortByOrder(items) {
		fmt.Fprintf(tw, "%s\t%s\n", item.ID, formatOrder(item.Order))
	}
	return tw.Flush()
}
