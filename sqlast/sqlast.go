// Package sqlast defines the minimal SQL abstract syntax tree this compiler
// consumes as an opaque, externally-produced tree (spec.md §1: "The SQL
// parser and SQL AST ... consumed as opaque trees that the compiler
// rewrites structurally"). This package never parses SQL text; it only
// declares the node shapes that sqlcompiler walks and rewrites.
//
// Grounded on the sqlparser-rs AST referenced throughout
// original_source/qvm/src/compile/schema.rs (sqlast::Expr, sqlast::Query,
// sqlast::Select, sqlast::TableFactor, sqlast::ObjectName, sqlast::Ident).
package sqlast

import "github.com/snapql/tyql/tokenizer"

// Ident is a single unquoted or quoted SQL identifier.
type Ident struct {
	Value string
	Pos   tokenizer.Position
}

// Path is a dotted SQL identifier chain, e.g. `schema.table.column`.
type Path []Ident

func (p Path) Strings() []string {
	out := make([]string, len(p))
	for i, id := range p {
		out[i] = id.Value
	}
	return out
}

// BinaryOp names a SQL binary operator.
type BinaryOp string

const (
	OpPlus    BinaryOp = "+"
	OpMinus   BinaryOp = "-"
	OpMul     BinaryOp = "*"
	OpDiv     BinaryOp = "/"
	OpConcat  BinaryOp = "||"
	OpEq      BinaryOp = "="
	OpNotEq   BinaryOp = "<>"
	OpLt      BinaryOp = "<"
	OpLtEq    BinaryOp = "<="
	OpGt      BinaryOp = ">"
	OpGtEq    BinaryOp = ">="
	OpAnd     BinaryOp = "AND"
	OpOr      BinaryOp = "OR"
)

// ExprKind tags which variant of Expr is populated.
type ExprKind int

const (
	ExprIdentifier ExprKind = iota
	ExprCompoundIdentifier
	ExprLiteralInt
	ExprLiteralFloat
	ExprLiteralString
	ExprLiteralBool
	ExprLiteralNull
	ExprBinaryOp
	ExprFunctionCall
	ExprSubquery
	ExprPlaceholder // injected by the SQL compiler; never present in parser output
)

// FunctionArg is one positional argument to a SQL function call.
type FunctionArg struct {
	Expr Expr
}

// Expr is a SQL scalar expression node (spec.md §4.7). Only the fields
// matching Kind are meaningful.
type Expr struct {
	Kind ExprKind
	Pos  tokenizer.Position

	// ExprIdentifier
	Ident Ident

	// ExprCompoundIdentifier
	CompoundPath Path

	// Literals
	IntValue    int64
	FloatValue  float64
	StringValue string
	BoolValue   bool

	// ExprBinaryOp
	Op    BinaryOp
	Left  *Expr
	Right *Expr

	// ExprFunctionCall
	FuncName Path
	Args     []FunctionArg
	Distinct bool

	// ExprSubquery
	Subquery *Query

	// ExprPlaceholder
	PlaceholderName string
}

// SelectItem is one entry in a SELECT projection list.
type SelectItem struct {
	Expr  Expr
	Alias Ident // empty Value means no explicit alias
}

// JoinKind distinguishes SQL join types.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
)

// TableFactorKind tags a FROM/JOIN relation.
type TableFactorKind int

const (
	TableFactorTable   TableFactorKind = iota // a bare table/view reference
	TableFactorDerived                        // a subquery with an alias
)

// TableFactor is one relation in a FROM or JOIN clause.
type TableFactor struct {
	Kind TableFactorKind

	// TableFactorTable
	Name Path

	// TableFactorDerived
	Subquery *Query

	Alias Ident // required for TableFactorDerived, optional for TableFactorTable
}

// Join is one JOIN clause attached to a FROM item.
type Join struct {
	Kind      JoinKind
	Relation  TableFactor
	Condition *Expr // nil for JoinCross
}

// TableWithJoins is one FROM list entry: a base relation plus its joins.
type TableWithJoins struct {
	Relation TableFactor
	Joins    []Join
}

// Select is the body of a SQL query (spec.md §4.7 binding rule 6).
type Select struct {
	Distinct bool
	// Wildcard marks a bare `SELECT *`; Projection is empty when set.
	Wildcard   bool
	Projection []SelectItem
	From       []TableWithJoins
	Where      *Expr
	GroupBy    []Expr
	Having     *Expr
}

// OrderByItem is one ORDER BY entry.
type OrderByItem struct {
	Expr Expr
	Desc bool
}

// Query is a full SQL query (spec.md §4.7).
type Query struct {
	Pos     tokenizer.Position
	Select  Select
	OrderBy []OrderByItem
	Limit   *Expr
	Offset  *Expr
}
