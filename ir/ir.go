// Package ir defines the typed intermediate representation produced by the
// expression and SQL compilers (spec.md §3 "Typed expression (TE)" and
// §4.7). A TypedExpr pairs a type cell with one of a closed set of Expr
// variants; SQL-bodied expressions additionally carry a parameter
// environment and an unbound-name set threaded through SQL compilation.
//
// Grounded on original_source/qvm/src/compile/schema.rs's Expr<TypeRef>,
// TypedExpr<TypeRef>, STypedExpr, SQL<TypeRef>, SQLNames<TypeRef>, and
// SQLBody.
package ir

import (
	"fmt"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/sqlast"
	"github.com/snapql/tyql/types"
)

// ExprKind tags which variant of Expr is populated (spec.md §3).
type ExprKind int

const (
	ExprSQL ExprKind = iota
	ExprFn
	ExprFnCall
	ExprRecord
	ExprSchemaEntry
	ExprNativeFn
	ExprContextRef
	ExprUnknown
)

func (k ExprKind) String() string {
	switch k {
	case ExprSQL:
		return "SQL"
	case ExprFn:
		return "Fn"
	case ExprFnCall:
		return "FnCall"
	case ExprRecord:
		return "Record"
	case ExprSchemaEntry:
		return "SchemaEntry"
	case ExprNativeFn:
		return "NativeFn"
	case ExprContextRef:
		return "ContextRef"
	default:
		return "Unknown"
	}
}

// Shape tags whether a SQLBody is a scalar expression or an array-producing
// query, resolving Open Question 1 of spec.md §9 by making AsExpr/AsQuery
// genuine mutual inverses instead of leaving the scalar/array asymmetry
// implicit in which constructor was used.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeArray
)

// SQLBody is the SQL<TypeRef> of spec.md §3/§4.7: either a scalar SQL
// expression or a SQL query, tagged with the shape it was compiled as.
type SQLBody struct {
	Shape Shape
	Expr  sqlast.Expr  // valid when Shape == ShapeScalar
	Query sqlast.Query // valid when Shape == ShapeArray
}

// Params maps fresh placeholder identifiers to the compiled language-level
// expression they stand in for (spec.md §4.7 binding rule 1).
type Params map[string]*TypedExpr

// UnboundSet is the set of SQL identifiers with no binding in the language
// or SQL builtins, keyed by their dotted path string (spec.md §4.7 binding
// rule 2, §9 "unbound").
type UnboundSet map[string]sqlast.Path

// SQLNames is the `names` record of spec.md §3: the bookkeeping threaded
// alongside a SQLBody during SQL compilation.
type SQLNames struct {
	Params  Params
	Unbound UnboundSet
}

func NewSQLNames() SQLNames {
	return SQLNames{Params: Params{}, Unbound: UnboundSet{}}
}

// Extend merges other into n: params are disjoint-unioned (fresh
// placeholders never collide) and unbound sets are unioned, matching
// SQLNames::extend in schema.rs.
func (n *SQLNames) Extend(other SQLNames) {
	for k, v := range other.Params {
		n.Params[k] = v
	}
	for k, v := range other.Unbound {
		n.Unbound[k] = v
	}
}

// SQL is the SQL<TypeRef> wrapper: a compiled body plus its names.
type SQL struct {
	Names SQLNames
	Body  SQLBody
}

// FnExpr is a closure over the scope captured at definition time
// (spec.md §3 "Fn { inner-scope, body }"). InnerScope is declared as `any` here
// to avoid an import cycle between ir and schema (schema.Schema embeds
// *cell.Cell[types.Monotype] fields that reference ir.TypedExpr); callers
// type-assert to *schema.Schema.
type FnExpr struct {
	InnerScope any
	Body       *TypedExpr
}

// FnCallExpr is a function application (spec.md §3 "FnCall").
type FnCallExpr struct {
	Fn        *TypedExpr
	Args      []*TypedExpr
	CtxFolder string // inherited folder for resolving nested SQL imports, "" if none
}

// RecordExpr is a struct-literal construction (spec.md §4.6 "record
// construction"), built from already-compiled field expressions in source
// order.
type RecordExpr struct {
	Fields []RecordField
}

type RecordField struct {
	Name  string
	Value *TypedExpr
}

// SchemaEntryExpr is a reference to a scope entry by name (spec.md §3
// "SchemaEntry"); the referent is identified by Name.
type SchemaEntryExpr struct {
	Name string
	// Value is not filled by this compiler and stays nil; look the
	// referent up by Name instead.
	Value *Expr
}

// Expr is the tagged expression variant of spec.md §3. Only the fields
// matching Kind are meaningful.
type Expr struct {
	Kind ExprKind

	SQL *SQL // ExprSQL

	Fn *FnExpr // ExprFn

	FnCall *FnCallExpr // ExprFnCall

	Record *RecordExpr // ExprRecord

	SchemaEntry *SchemaEntryExpr // ExprSchemaEntry

	NativeFnName string // ExprNativeFn

	ContextRefName string // ExprContextRef
}

func NewSQLExpr(sql *SQL) *Expr           { return &Expr{Kind: ExprSQL, SQL: sql} }
func NewFnExpr(fn *FnExpr) *Expr          { return &Expr{Kind: ExprFn, Fn: fn} }
func NewFnCallExpr(c *FnCallExpr) *Expr    { return &Expr{Kind: ExprFnCall, FnCall: c} }
func NewRecordExpr(r *RecordExpr) *Expr    { return &Expr{Kind: ExprRecord, Record: r} }
func NewSchemaEntryExpr(name string) *Expr { return &Expr{Kind: ExprSchemaEntry, SchemaEntry: &SchemaEntryExpr{Name: name}} }
func NewNativeFnExpr(name string) *Expr    { return &Expr{Kind: ExprNativeFn, NativeFnName: name} }
func NewContextRefExpr(name string) *Expr  { return &Expr{Kind: ExprContextRef, ContextRefName: name} }
func NewUnknownExpr() *Expr                { return &Expr{Kind: ExprUnknown} }

// Unify satisfies cell.Unifiable[*Expr]; no cell of *Expr is created in
// this compiler (see TypedExpr). It returns whichever side is not
// ExprUnknown; when both are known and differ it keeps e and reports no
// error.
func (e *Expr) Unify(other *Expr) (*Expr, error) {
	if e == other {
		return e, nil
	}
	if e.Kind == ExprUnknown {
		return other, nil
	}
	if other.Kind == ExprUnknown {
		return e, nil
	}
	return e, nil
}

// TypedExpr is the TE of spec.md §3: (type-cell, expr). The expr payload is
// not itself a cell in this implementation (unlike the Rust CRef<Expr<..>>)
// because nothing in this compiler observes an Expr before it is fully
// built; only its type is ever deferred.
type TypedExpr struct {
	Type *cell.Cell[types.Monotype]
	Expr *Expr
}

func New(t *cell.Cell[types.Monotype], e *Expr) *TypedExpr {
	return &TypedExpr{Type: t, Expr: e}
}

func (t *TypedExpr) String() string {
	return fmt.Sprintf("%s : %s", t.Expr.Kind, t.Type.Label())
}
