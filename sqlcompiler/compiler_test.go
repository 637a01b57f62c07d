package sqlcompiler

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/sqlast"
	"github.com/snapql/tyql/types"
)

// stubScope is a minimal ir.Scope for exercising the SQL compiler in
// isolation, with no identifiers or nested scopes to resolve.
type stubScope struct {
	sched *cell.Scheduler
}

func newStubScope() stubScope { return stubScope{sched: cell.NewScheduler()} }

func (s stubScope) LookupValue(ctx context.Context, path []string) (*cell.Cell[types.Monotype], *ir.Expr, error) {
	panic("not used by these tests")
}

func (s stubScope) LookupType(ctx context.Context, path []string) (*cell.Cell[types.Monotype], error) {
	panic("not used by these tests")
}

func (s stubScope) NewChildScope() ir.Scope { return s }
func (s stubScope) DeclareParam(ctx context.Context, name string, typ *cell.Cell[types.Monotype]) error {
	panic("not used by these tests")
}
func (s stubScope) Scheduler() *cell.Scheduler { return s.sched }
func (s stubScope) Folder() string             { return "" }
func (s stubScope) HasFolder() bool            { return false }

// stubResolver resolves exactly the tables named in its map; anything else
// is reported as not-found (ok=false, err=nil), matching how catalog.Catalog
// behaves for a table that genuinely does not exist.
type stubResolver struct {
	tables map[string][]types.Field
}

func (r stubResolver) Lookup(ctx context.Context, scope ir.Scope, path []string) ([]types.Field, bool, error) {
	fields, ok := r.tables[joinDotted(path)]
	return fields, ok, nil
}

func identExpr(name string) sqlast.Expr {
	return sqlast.Expr{Kind: sqlast.ExprIdentifier, Ident: sqlast.Ident{Value: name}}
}

func tableFactor(name string) sqlast.TableFactor {
	return sqlast.TableFactor{Kind: sqlast.TableFactorTable, Name: sqlast.Path{{Value: name}}}
}

func TestCompileQueryWildcardOverResolvedTableProducesRowShape(t *testing.T) {
	scope := newStubScope()
	resolver := stubResolver{tables: map[string][]types.Field{
		"users": {
			{Name: "id", Type: cell.NewKnown(scope.sched, types.NewAtom(types.AtomInt64))},
			{Name: "email", Type: cell.NewKnown(scope.sched, types.NewAtom(types.AtomUtf8))},
		},
	}}
	c := New(DialectPostgres, resolver)

	q := sqlast.Query{Select: sqlast.Select{
		Wildcard: true,
		From:     []sqlast.TableWithJoins{{Relation: tableFactor("users")}},
	}}

	result, err := c.CompileQuery(context.Background(), scope, q)
	assert.NoError(t, err)

	v, ok := result.Type.TryValue()
	assert.True(t, ok)
	assert.Equal(t, types.KindList, v.Kind)

	row, ok := v.Elem.TryValue()
	assert.True(t, ok)
	assert.Equal(t, types.KindRecord, row.Kind)
	assert.Equal(t, 2, len(row.Fields))
}

// TestCompileQueryWildcardOverUnresolvedTableStaysUnknown exercises
// end-to-end scenario 5: a SELECT * against a table the resolver can't find
// compiles successfully with the row type left Unknown and the table
// recorded as unbound, rather than surfacing as an error.
func TestCompileQueryWildcardOverUnresolvedTableStaysUnknown(t *testing.T) {
	scope := newStubScope()
	c := New(DialectPostgres, nil)

	q := sqlast.Query{Select: sqlast.Select{
		Wildcard: true,
		From:     []sqlast.TableWithJoins{{Relation: tableFactor("ghost_table")}},
	}}

	result, err := c.CompileQuery(context.Background(), scope, q)
	assert.NoError(t, err)

	_, ok := result.Type.TryValue()
	assert.False(t, ok, "row type should remain Unknown for an unresolved wildcard source")

	_, recorded := result.Expr.SQL.Names.Unbound["ghost_table"]
	assert.True(t, recorded)
}

func TestCompileScalarBinaryOpCoercesOperands(t *testing.T) {
	scope := newStubScope()
	c := New(DialectPostgres, nil)

	e := sqlast.Expr{
		Kind: sqlast.ExprBinaryOp,
		Op:   sqlast.OpPlus,
		Left: &sqlast.Expr{Kind: sqlast.ExprLiteralInt, IntValue: 1},
		Right: &sqlast.Expr{Kind: sqlast.ExprLiteralFloat, FloatValue: 2.5},
	}

	result, err := c.CompileScalar(context.Background(), scope, e)
	assert.NoError(t, err)

	v, ok := result.Type.TryValue()
	assert.True(t, ok)
	assert.Equal(t, types.KindAtom, v.Kind)
}

func TestCompileScalarConcatRewritesToFunctionOnDialectsWithoutOperator(t *testing.T) {
	scope := newStubScope()
	c := New(DialectMySQL, nil)

	e := sqlast.Expr{
		Kind:  sqlast.ExprBinaryOp,
		Op:    sqlast.OpConcat,
		Left:  &sqlast.Expr{Kind: sqlast.ExprLiteralString, StringValue: "a"},
		Right: &sqlast.Expr{Kind: sqlast.ExprLiteralString, StringValue: "b"},
	}

	result, err := c.CompileScalar(context.Background(), scope, e)
	assert.NoError(t, err)
	assert.Equal(t, sqlast.ExprFunctionCall, result.Expr.SQL.Body.Expr.Kind)
}

func TestCompileScalarConcatKeepsOperatorOnDialectsWithIt(t *testing.T) {
	scope := newStubScope()
	c := New(DialectPostgres, nil)

	e := sqlast.Expr{
		Kind:  sqlast.ExprBinaryOp,
		Op:    sqlast.OpConcat,
		Left:  &sqlast.Expr{Kind: sqlast.ExprLiteralString, StringValue: "a"},
		Right: &sqlast.Expr{Kind: sqlast.ExprLiteralString, StringValue: "b"},
	}

	result, err := c.CompileScalar(context.Background(), scope, e)
	assert.NoError(t, err)
	assert.Equal(t, sqlast.ExprBinaryOp, result.Expr.SQL.Body.Expr.Kind)
}

func TestCompileQueryJoinConditionMustBeBool(t *testing.T) {
	scope := newStubScope()
	resolver := stubResolver{tables: map[string][]types.Field{
		"a": {{Name: "id", Type: cell.NewKnown(scope.sched, types.NewAtom(types.AtomInt64))}},
		"b": {{Name: "id", Type: cell.NewKnown(scope.sched, types.NewAtom(types.AtomInt64))}},
	}}
	c := New(DialectPostgres, resolver)

	q := sqlast.Query{Select: sqlast.Select{
		Wildcard: true,
		From: []sqlast.TableWithJoins{{
			Relation: tableFactor("a"),
			Joins: []sqlast.Join{{
				Kind:     sqlast.JoinInner,
				Relation: tableFactor("b"),
				// Not a boolean expression: should fail to unify against Bool.
				Condition: &sqlast.Expr{Kind: sqlast.ExprLiteralInt, IntValue: 1},
			}},
		}},
	}}

	_, err := c.CompileQuery(context.Background(), scope, q)
	assert.Error(t, err)
}
