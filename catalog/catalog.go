// Package catalog resolves SQL table names against a live database's
// information schema, giving the SQL compiler's otherwise-permanent
// "unbound" fallback (spec.md §4.7 binding rule 2, §9) a concrete
// resolution path. A Catalog implements sqlcompiler.TableResolver; a
// compilation run without one leaves every table name unbound, unchanged
// from spec.md's documented behavior.
//
// Grounded on the teacher's pull/postgresql.go, pull/mysql.go, pull/sqlite.go
// column extraction queries and pull/connector.go's driver-name mapping,
// narrowed from full schema/constraint/index extraction down to the single
// (name, type, nullable) column shape the SQL compiler needs.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/mattn/go-sqlite3"    // registers "sqlite3"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/sqlcompiler"
	"github.com/snapql/tyql/types"
)

// Catalog wraps a live database connection and resolves table shapes for
// one dialect. It satisfies sqlcompiler.TableResolver.
type Catalog struct {
	db      *sql.DB
	dialect sqlcompiler.Dialect
	// Schema is the default schema/database searched for an unqualified
	// table name (postgres: "public"; mysql: the connection's database).
	Schema string
}

// driverName maps a dialect to the database/sql driver name registered by
// this package's blank imports, matching pull/connector.go's getDriverName.
func driverName(d sqlcompiler.Dialect) (string, error) {
	switch d {
	case sqlcompiler.DialectPostgres:
		return "pgx", nil
	case sqlcompiler.DialectMySQL, sqlcompiler.DialectMariaDB:
		return "mysql", nil
	case sqlcompiler.DialectSQLite:
		return "sqlite3", nil
	default:
		return "", compileerr.Unimplemented(nil, fmt.Sprintf("catalog for dialect %q", d))
	}
}

// Open connects to dsn using the driver registered for dialect.
func Open(ctx context.Context, dialect sqlcompiler.Dialect, dsn string) (*Catalog, error) {
	driver, err := driverName(dialect)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, compileerr.Internal("opening catalog connection: " + err.Error())
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, compileerr.Internal("pinging catalog connection: " + err.Error())
	}

	schema := ""
	switch dialect {
	case sqlcompiler.DialectPostgres:
		schema = "public"
	case sqlcompiler.DialectMySQL, sqlcompiler.DialectMariaDB:
		var current sql.NullString
		if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&current); err != nil {
			db.Close()
			return nil, compileerr.Internal("reading catalog default database: " + err.Error())
		}
		schema = current.String
	}
	return &Catalog{db: db, dialect: dialect, Schema: schema}, nil
}

// FromDB adopts an already-open connection, for callers (tests, long-lived
// services) managing the pool themselves.
func FromDB(db *sql.DB, dialect sqlcompiler.Dialect, schema string) *Catalog {
	return &Catalog{db: db, dialect: dialect, Schema: schema}
}

func (c *Catalog) Close() error { return c.db.Close() }

// Lookup implements sqlcompiler.TableResolver: path is either [table] or
// [schema, table]; (nil, false, nil) means the table genuinely doesn't
// exist, which the SQL compiler records as unbound rather than an error.
// types.Field.Type cells are minted against scope.Scheduler() rather than
// any scheduler Catalog holds itself, so a single long-lived Catalog can
// serve lookups from many independent compilations (spec.md §5's one
// scheduler per compilation).
func (c *Catalog) Lookup(ctx context.Context, scope ir.Scope, path []string) ([]types.Field, bool, error) {
	schema, table, err := splitPath(c.Schema, path)
	if err != nil {
		return nil, false, err
	}
	sched := scope.Scheduler()

	switch c.dialect {
	case sqlcompiler.DialectPostgres:
		return c.lookupInformationSchema(ctx, sched, schema, table, "$1", "$2")
	case sqlcompiler.DialectMySQL, sqlcompiler.DialectMariaDB:
		return c.lookupInformationSchema(ctx, sched, schema, table, "?", "?")
	case sqlcompiler.DialectSQLite:
		return c.lookupSQLite(ctx, sched, table)
	default:
		return nil, false, compileerr.Unimplemented(nil, fmt.Sprintf("catalog lookup for dialect %q", c.dialect))
	}
}

func splitPath(defaultSchema string, path []string) (schema, table string, err error) {
	switch len(path) {
	case 1:
		return defaultSchema, path[0], nil
	case 2:
		return path[0], path[1], nil
	default:
		return "", "", compileerr.Unimplemented(nil, "catalog lookup for a qualified path longer than schema.table")
	}
}

// lookupInformationSchema covers Postgres and MySQL/MariaDB, whose
// information_schema.columns shape is identical up to placeholder syntax
// (grounded on pull/postgresql.go's BuildColumnsQuery and the MySQL
// equivalent it mirrors).
func (c *Catalog) lookupInformationSchema(ctx context.Context, sched *cell.Scheduler, schema, table, schemaPH, tablePH string) ([]types.Field, bool, error) {
	query := fmt.Sprintf(`
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, schemaPH, tablePH)

	rows, err := c.db.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, false, compileerr.Internal("catalog lookup query: " + err.Error())
	}
	defer rows.Close()

	var fields []types.Field
	for rows.Next() {
		var name, dataType, isNullable string
		if err := rows.Scan(&name, &dataType, &isNullable); err != nil {
			return nil, false, compileerr.Internal("catalog lookup scan: " + err.Error())
		}
		fields = append(fields, types.Field{
			Name:     name,
			Type:     knownCell(sched, mapType(c.dialect, dataType)),
			Nullable: isNullable == "YES",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, false, compileerr.Internal("catalog lookup rows: " + err.Error())
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	return fields, true, nil
}

// lookupSQLite uses PRAGMA table_info, which does not accept a bound
// parameter for the table name; the identifier is validated (no quoting
// characters) before being interpolated, grounded on pull/sqlite.go's
// reliance on PRAGMA for column introspection.
func (c *Catalog) lookupSQLite(ctx context.Context, sched *cell.Scheduler, table string) ([]types.Field, bool, error) {
	if !isSafeIdentifier(table) {
		return nil, false, compileerr.Internal("unsafe table identifier for PRAGMA table_info: " + table)
	}
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return nil, false, compileerr.Internal("catalog lookup query: " + err.Error())
	}
	defer rows.Close()

	var fields []types.Field
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return nil, false, compileerr.Internal("catalog lookup scan: " + err.Error())
		}
		fields = append(fields, types.Field{
			Name:     name,
			Type:     knownCell(sched, mapType(c.dialect, typ)),
			Nullable: notNull == 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, false, compileerr.Internal("catalog lookup rows: " + err.Error())
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	return fields, true, nil
}

func knownCell(sched *cell.Scheduler, a types.Atom) *cell.Cell[types.Monotype] {
	return cell.NewKnown(sched, types.NewAtom(a))
}

func isSafeIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}
