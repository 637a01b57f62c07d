// Package sqlcompiler walks sqlast trees and produces the rewritten SQL
// plus accumulated parameter/unbound bookkeeping of spec.md §4.7. It never
// imports package schema; it depends only on the narrow ir.Scope contract,
// so schema (and exprcompiler) can call into it without a cycle.
//
// Grounded on spec.md §4.7's binding rules directly (the retrieved original
// source only references compile_sqlquery/compile_sqlexpr by name; their
// bodies were not captured), following the placeholder/param bookkeeping
// shape of original_source/qvm/src/compile/schema.rs's SQLNames/SQLBody and
// the teacher's parser/parsercommon/namespace.go for how a single counter
// mints unique synthetic names across a whole walk.
package sqlcompiler

import (
	"context"
	"fmt"
	"strings"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/sqlast"
	"github.com/snapql/tyql/types"
)

// TableResolver looks up a SQL table's column shape by its dotted path. The
// catalog package implements this against a live database connection;
// Compiler works with none (every table stays unbound) or with one attached.
// scope is passed through only so an implementation can mint its result
// cells against scope.Scheduler() - the same scheduler driving the rest of
// the compilation that table belongs to (spec.md §5's single scheduler per
// compilation) - not to look anything up through it.
type TableResolver interface {
	Lookup(ctx context.Context, scope ir.Scope, path []string) ([]types.Field, bool, error)
}

// Compiler holds the configuration the SQL walk is parameterized on:
// dialect (for the builtin function and feature tables) and an optional
// table resolver (spec.md §9's "unbound" open end, supplemented by
// SPEC_FULL's catalog integration).
type Compiler struct {
	Dialect  Dialect
	Resolver TableResolver
}

func New(dialect Dialect, resolver TableResolver) *Compiler {
	return &Compiler{Dialect: dialect, Resolver: resolver}
}

// CompileQuery compiles q in query mode (spec.md §4.7 binding rule 6),
// yielding a TypedExpr whose type is List(Record(fields)) when every
// relation's shape could be determined, or a bare Unknown cell when a
// `SELECT *` draws from an unresolved table (scenario 5).
func (c *Compiler) CompileQuery(ctx context.Context, scope ir.Scope, q sqlast.Query) (*ir.TypedExpr, error) {
	pc := &placeholderCounter{}
	rowType, rewritten, names, err := c.compileQuery(ctx, scope, pc, q)
	if err != nil {
		return nil, err
	}
	body := ir.SQLBody{Shape: ir.ShapeArray, Query: rewritten}
	return ir.New(rowType, ir.NewSQLExpr(&ir.SQL{Names: names, Body: body})), nil
}

// CompileScalar compiles e in scalar mode (spec.md §4.7, "SQLExpr ...
// dispatch to SQL compiler in scalar mode with a fresh SQL scope").
func (c *Compiler) CompileScalar(ctx context.Context, scope ir.Scope, e sqlast.Expr) (*ir.TypedExpr, error) {
	pc := &placeholderCounter{}
	t, rewritten, names, err := c.compileExpr(ctx, scope, pc, map[string][]types.Field{}, e)
	if err != nil {
		return nil, err
	}
	body := ir.SQLBody{Shape: ir.ShapeScalar, Expr: rewritten}
	return ir.New(t, ir.NewSQLExpr(&ir.SQL{Names: names, Body: body})), nil
}

func (c *Compiler) compileQuery(ctx context.Context, scope ir.Scope, pc *placeholderCounter, q sqlast.Query) (*cell.Cell[types.Monotype], sqlast.Query, ir.SQLNames, error) {
	rowType, sel, bindings, names, err := c.compileSelect(ctx, scope, pc, q.Select)
	if err != nil {
		return nil, sqlast.Query{}, ir.SQLNames{}, err
	}

	orderBy := make([]sqlast.OrderByItem, len(q.OrderBy))
	for i, ob := range q.OrderBy {
		_, e2, n, err := c.compileExpr(ctx, scope, pc, bindings, ob.Expr)
		if err != nil {
			return nil, sqlast.Query{}, ir.SQLNames{}, err
		}
		mergeNames(&names, n)
		orderBy[i] = sqlast.OrderByItem{Expr: e2, Desc: ob.Desc}
	}

	var limit, offset *sqlast.Expr
	if q.Limit != nil {
		_, e2, n, err := c.compileExpr(ctx, scope, pc, bindings, *q.Limit)
		if err != nil {
			return nil, sqlast.Query{}, ir.SQLNames{}, err
		}
		mergeNames(&names, n)
		limit = &e2
	}
	if q.Offset != nil {
		_, e2, n, err := c.compileExpr(ctx, scope, pc, bindings, *q.Offset)
		if err != nil {
			return nil, sqlast.Query{}, ir.SQLNames{}, err
		}
		mergeNames(&names, n)
		offset = &e2
	}

	return rowType, sqlast.Query{Pos: q.Pos, Select: sel, OrderBy: orderBy, Limit: limit, Offset: offset}, names, nil
}

// compileSelect implements binding rule 6: FROM/JOIN establish row
// bindings, WHERE/GROUP BY/HAVING are compiled against them, and the
// projection determines the query's row shape.
func (c *Compiler) compileSelect(ctx context.Context, scope ir.Scope, pc *placeholderCounter, sel sqlast.Select) (*cell.Cell[types.Monotype], sqlast.Select, map[string][]types.Field, ir.SQLNames, error) {
	names := ir.NewSQLNames()
	bindings := map[string][]types.Field{}
	unresolved := false
	var order []string // alias insertion order, for deterministic SELECT * expansion

	rewrittenFrom := make([]sqlast.TableWithJoins, len(sel.From))
	for i, twj := range sel.From {
		rel, fields, relUnresolved, n, err := c.compileTableFactor(ctx, scope, pc, twj.Relation)
		if err != nil {
			return nil, sqlast.Select{}, nil, ir.SQLNames{}, err
		}
		mergeNames(&names, n)
		alias := aliasOf(twj.Relation)
		bindings[alias] = fields
		order = append(order, alias)
		unresolved = unresolved || relUnresolved

		joins := make([]sqlast.Join, len(twj.Joins))
		for j, join := range twj.Joins {
			jrel, jfields, jUnresolved, jn, err := c.compileTableFactor(ctx, scope, pc, join.Relation)
			if err != nil {
				return nil, sqlast.Select{}, nil, ir.SQLNames{}, err
			}
			mergeNames(&names, jn)
			jalias := aliasOf(join.Relation)
			bindings[jalias] = jfields
			order = append(order, jalias)
			unresolved = unresolved || jUnresolved

			var cond *sqlast.Expr
			if join.Condition != nil {
				ct, ce, cn, err := c.compileExpr(ctx, scope, pc, bindings, *join.Condition)
				if err != nil {
					return nil, sqlast.Select{}, nil, ir.SQLNames{}, err
				}
				mergeNames(&names, cn)
				if err := cell.Unify[types.Monotype](ct, cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomBool))); err != nil {
					return nil, sqlast.Select{}, nil, ir.SQLNames{}, err
				}
				cond = &ce
			}
			joins[j] = sqlast.Join{Kind: join.Kind, Relation: jrel, Condition: cond}
		}
		rewrittenFrom[i] = sqlast.TableWithJoins{Relation: rel, Joins: joins}
	}

	var where *sqlast.Expr
	if sel.Where != nil {
		wt, we, wn, err := c.compileExpr(ctx, scope, pc, bindings, *sel.Where)
		if err != nil {
			return nil, sqlast.Select{}, nil, ir.SQLNames{}, err
		}
		mergeNames(&names, wn)
		if err := cell.Unify[types.Monotype](wt, cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomBool))); err != nil {
			return nil, sqlast.Select{}, nil, ir.SQLNames{}, err
		}
		where = &we
	}

	groupBy := make([]sqlast.Expr, len(sel.GroupBy))
	for i, ge := range sel.GroupBy {
		_, e2, n, err := c.compileExpr(ctx, scope, pc, bindings, ge)
		if err != nil {
			return nil, sqlast.Select{}, nil, ir.SQLNames{}, err
		}
		mergeNames(&names, n)
		groupBy[i] = e2
	}

	var having *sqlast.Expr
	if sel.Having != nil {
		ht, he, hn, err := c.compileExpr(ctx, scope, pc, bindings, *sel.Having)
		if err != nil {
			return nil, sqlast.Select{}, nil, ir.SQLNames{}, err
		}
		mergeNames(&names, hn)
		if err := cell.Unify[types.Monotype](ht, cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomBool))); err != nil {
			return nil, sqlast.Select{}, nil, ir.SQLNames{}, err
		}
		having = &he
	}

	var rowType *cell.Cell[types.Monotype]
	var projection []sqlast.SelectItem

	switch {
	case sel.Wildcard && unresolved:
		// scenario 5: a `SELECT *` over an unresolved table cannot enumerate
		// fields. The row type stays a bare Unknown cell rather than a
		// structured List(Record(...)) — it is surfaced only if something
		// downstream actually forces it to resolve.
		rowType = cell.NewUnknown[types.Monotype](scope.Scheduler(), "sql-row")

	case sel.Wildcard:
		var fields []types.Field
		for _, alias := range order {
			fields = append(fields, bindings[alias]...)
		}
		rowType = cell.NewKnown(scope.Scheduler(), types.NewList(cell.NewKnown(scope.Scheduler(), types.NewRecord(fields))))

	default:
		fields := make([]types.Field, len(sel.Projection))
		projection = make([]sqlast.SelectItem, len(sel.Projection))
		for i, item := range sel.Projection {
			t, e2, n, err := c.compileExpr(ctx, scope, pc, bindings, item.Expr)
			if err != nil {
				return nil, sqlast.Select{}, nil, ir.SQLNames{}, err
			}
			mergeNames(&names, n)
			name := item.Alias.Value
			if name == "" {
				name = projectionName(item.Expr, i)
			}
			fields[i] = types.Field{Name: name, Type: t, Nullable: true}
			projection[i] = sqlast.SelectItem{Expr: e2, Alias: item.Alias}
		}
		rowType = cell.NewKnown(scope.Scheduler(), types.NewList(cell.NewKnown(scope.Scheduler(), types.NewRecord(fields))))
	}

	return rowType, sqlast.Select{
		Distinct:   sel.Distinct,
		Wildcard:   sel.Wildcard,
		Projection: projection,
		From:       rewrittenFrom,
		Where:      where,
		GroupBy:    groupBy,
		Having:     having,
	}, bindings, names, nil
}

func aliasOf(tf sqlast.TableFactor) string {
	if tf.Alias.Value != "" {
		return tf.Alias.Value
	}
	if tf.Kind == sqlast.TableFactorTable && len(tf.Name) > 0 {
		return tf.Name[len(tf.Name)-1].Value
	}
	return ""
}

func projectionName(e sqlast.Expr, i int) string {
	switch e.Kind {
	case sqlast.ExprIdentifier:
		return e.Ident.Value
	case sqlast.ExprCompoundIdentifier:
		if len(e.CompoundPath) > 0 {
			return e.CompoundPath[len(e.CompoundPath)-1].Value
		}
	}
	return fmt.Sprintf("col%d", i)
}

// compileTableFactor resolves one FROM/JOIN relation. A bare table is
// looked up through the Resolver when one is attached; failing that (or
// with none attached) it is recorded as unbound and treated as an opaque,
// columnless relation (spec.md §4.7 binding rule 2, scenario 5).
func (c *Compiler) compileTableFactor(ctx context.Context, scope ir.Scope, pc *placeholderCounter, tf sqlast.TableFactor) (sqlast.TableFactor, []types.Field, bool, ir.SQLNames, error) {
	names := ir.NewSQLNames()

	switch tf.Kind {
	case sqlast.TableFactorTable:
		path := tf.Name.Strings()
		if c.Resolver != nil {
			fields, ok, err := c.Resolver.Lookup(ctx, scope, path)
			if err != nil {
				return sqlast.TableFactor{}, nil, false, ir.SQLNames{}, err
			}
			if ok {
				return tf, fields, false, names, nil
			}
		}
		names.Unbound[joinDotted(path)] = tf.Name
		return tf, nil, true, names, nil

	case sqlast.TableFactorDerived:
		rowType, rewritten, subNames, err := c.compileQuery(ctx, scope, pc, *tf.Subquery)
		if err != nil {
			return sqlast.TableFactor{}, nil, false, ir.SQLNames{}, err
		}
		mergeNames(&names, subNames)
		fields, ok := recordFieldsFromListCell(rowType)
		out := tf
		out.Subquery = &rewritten
		return out, fields, !ok, names, nil

	default:
		return sqlast.TableFactor{}, nil, false, ir.SQLNames{}, compileerr.Internal("unrecognized table factor kind")
	}
}

func recordFieldsFromListCell(c *cell.Cell[types.Monotype]) ([]types.Field, bool) {
	v, ok := c.TryValue()
	if !ok || v.Kind != types.KindList {
		return nil, false
	}
	rv, ok := v.Elem.TryValue()
	if !ok || rv.Kind != types.KindRecord {
		return nil, false
	}
	return rv.Fields, true
}

func joinDotted(path []string) string { return strings.Join(path, ".") }
