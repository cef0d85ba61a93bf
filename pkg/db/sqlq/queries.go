package sqlq

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// OrderedItem mirrors a row of the ordered_item table.
type OrderedItem struct {
	Scope        string
	ID           string
	Name         string
	DisplayOrder sql.NullFloat64
}

const createOrderedItem = `
INSERT INTO ordered_item (scope, id, name, display_order)
VALUES (?, ?, ?, ?)
`

type CreateOrderedItemParams struct {
	Scope        string
	ID           string
	Name         string
	DisplayOrder sql.NullFloat64
}

func (q *Queries) CreateOrderedItem(ctx context.Context, arg CreateOrderedItemParams) error {
	_, err := q.db.ExecContext(ctx, createOrderedItem, arg.Scope, arg.ID, arg.Name, arg.DisplayOrder)
	return err
}

const getOrderedItem = `
SELECT scope, id, name, display_order
FROM ordered_item
WHERE scope = ? AND id = ?
LIMIT 1
`

func (q *Queries) GetOrderedItem(ctx context.Context, scope, id string) (OrderedItem, error) {
	row := q.db.QueryRowContext(ctx, getOrderedItem, scope, id)
	var i OrderedItem
	err := row.Scan(&i.Scope, &i.ID, &i.Name, &i.DisplayOrder)
	return i, err
}

const getOrderedItemsByScope = `
SELECT scope, id, name, display_order
FROM ordered_item
WHERE scope = ?
ORDER BY id
`

func (q *Queries) GetOrderedItemsByScope(ctx context.Context, scope string) ([]OrderedItem, error) {
	rows, err := q.db.QueryContext(ctx, getOrderedItemsByScope, scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderedItem{}
	for rows.Next() {
		var i OrderedItem
		if err := rows.Scan(&i.Scope, &i.ID, &i.Name, &i.DisplayOrder); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderedItemOrder = `
UPDATE ordered_item
SET display_order = ?
WHERE scope = ? AND id = ?
`

type UpdateOrderedItemOrderParams struct {
	DisplayOrder sql.NullFloat64
	Scope        string
	ID           string
}

// UpdateOrderedItemOrder returns the number of rows touched.
func (q *Queries) UpdateOrderedItemOrder(ctx context.Context, arg UpdateOrderedItemOrderParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateOrderedItemOrder, arg.DisplayOrder, arg.Scope, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteOrderedItem = `
DELETE FROM ordered_item
WHERE scope = ? AND id = ?
`

// DeleteOrderedItem returns the number of rows removed.
func (q *Queries) DeleteOrderedItem(ctx context.Context, scope, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteOrderedItem, scope, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getScopes = `
SELECT DISTINCT scope
FROM ordered_item
ORDER BY scope
`

func (q *Queries) GetScopes(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getScopes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	scopes := []string{}
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scopes, nil
}
