package sorder

import (
	"database/sql"

	"github.com/the-dev-tools/ordering/pkg/db/sqlq"
	"github.com/the-dev-tools/ordering/pkg/movable"
)

func nullOrder(order *float64) sql.NullFloat64 {
	if order == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *order, Valid: true}
}

// ConvertToDBItem converts model to DB representation
func ConvertToDBItem(scope string, item movable.OrderedItem) sqlq.OrderedItem {
	return sqlq.OrderedItem{
		Scope:        scope,
		ID:           item.ID,
		Name:         item.Name,
		DisplayOrder: nullOrder(item.Order),
	}
}

// ConvertToModelItem converts DB to model representation
func ConvertToModelItem(row sqlq.OrderedItem) movable.OrderedItem {
	item := movable.OrderedItem{
		ID:   row.ID,
		Name: row.Name,
	}
	if row.DisplayOrder.Valid {
		item = item.WithOrder(row.DisplayOrder.Float64)
	}
	return item
}
