package catalog

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/sqlcompiler"
	"github.com/snapql/tyql/types"
)

// stubScope satisfies ir.Scope with only Scheduler() wired up, since that
// is the only method Catalog.Lookup calls.
type stubScope struct {
	sched *cell.Scheduler
}

func (s stubScope) LookupValue(ctx context.Context, path []string) (*cell.Cell[types.Monotype], *ir.Expr, error) {
	panic("not used by this test")
}

func (s stubScope) LookupType(ctx context.Context, path []string) (*cell.Cell[types.Monotype], error) {
	panic("not used by this test")
}

func (s stubScope) NewChildScope() ir.Scope { panic("not used by this test") }

func (s stubScope) DeclareParam(ctx context.Context, name string, typ *cell.Cell[types.Monotype]) error {
	panic("not used by this test")
}

func (s stubScope) Scheduler() *cell.Scheduler { return s.sched }
func (s stubScope) Folder() string             { return "" }
func (s stubScope) HasFolder() bool            { return false }

// TestCatalogPostgresLookup exercises Lookup against a real Postgres
// instance, grounded on pull/integration_test.go's testcontainers pattern
// but narrowed to the column-shape query this package actually issues.
func TestCatalogPostgresLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, container.Terminate(ctx)) }()

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `
		CREATE TABLE users (
			id BIGINT NOT NULL,
			email VARCHAR(255) NOT NULL,
			nickname VARCHAR(255)
		)
	`)
	require.NoError(t, err)

	cat := FromDB(db, sqlcompiler.DialectPostgres, "public")
	sched := cell.NewScheduler()
	scope := stubScope{sched: sched}

	fields, ok, err := cat.Lookup(ctx, scope, []string{"users"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, fields, 3)

	assert.Equal(t, "id", fields[0].Name)
	assert.False(t, fields[0].Nullable)
	assert.Equal(t, "nickname", fields[2].Name)
	assert.True(t, fields[2].Nullable)

	_, ok, err = cat.Lookup(ctx, scope, []string{"does_not_exist"})
	require.NoError(t, err)
	assert.False(t, ok)
}
