package dbtest

import (
	"context"
	"database/sql"
	"fmt"

	orderdb "github.com/the-dev-tools/ordering/pkg/db"
	"github.com/the-dev-tools/ordering/pkg/idwrap"
)

// GetTestDB opens an isolated in-memory database with the schema applied.
func GetTestDB(ctx context.Context) (*sql.DB, error) {
	// Generate unique database name for this test to ensure isolation
	connStr := fmt.Sprintf("file:testdb_%s?mode=memory&cache=shared", idwrap.NewNow().String())
	return orderdb.Open(ctx, connStr)
}
