// Package ast defines the surface-syntax statement, type, and expression
// trees produced by the external parser (spec.md §6: "Source file ... parsed
// by the external parser into the statement AST"). This compiler never
// implements that parser; ast is the contract it must hand us.
//
// Grounded in shape on the teacher's parser/ast.go (AstNode interface,
// NodeType enum with a String method, tokenizer.Position on every node).
package ast

import (
	"github.com/shopspring/decimal"

	"github.com/snapql/tyql/tokenizer"
)

// Ident is an Identifier: a string paired with a source location
// (spec.md §3).
type Ident struct {
	Name string
	Pos  tokenizer.Position
}

// Path is a nonempty dotted sequence of identifiers.
type Path []Ident

func (p Path) Strings() []string {
	out := make([]string, len(p))
	for i, id := range p {
		out[i] = id.Name
	}
	return out
}

func (p Path) Pos() tokenizer.Position {
	if len(p) == 0 {
		return tokenizer.Position{}
	}
	return p[0].Pos
}

// File is the root of a parsed source file: an ordered list of top-level
// statements (spec.md §6).
type File struct {
	Stmts []Stmt
}

// StmtKind tags a top-level Stmt's form (spec.md §6: import, type, let, fn,
// extern, bare expression, no-op).
type StmtKind int

const (
	StmtImport StmtKind = iota
	StmtTypeDef
	StmtLet
	StmtFnDef
	StmtExtern
	StmtExpr
	StmtNoOp
)

func (k StmtKind) String() string {
	switch k {
	case StmtImport:
		return "import"
	case StmtTypeDef:
		return "type"
	case StmtLet:
		return "let"
	case StmtFnDef:
		return "fn"
	case StmtExtern:
		return "extern"
	case StmtExpr:
		return "expr"
	default:
		return "noop"
	}
}

// ImportForm distinguishes the three import spellings of spec.md §4.5.
type ImportForm int

const (
	ImportWhole   ImportForm = iota // import p
	ImportNames                     // import p::{a,b}
	ImportGlobbed                   // import p::*
)

// Stmt is one top-level statement. Only the fields matching Kind are
// meaningful.
type Stmt struct {
	Kind StmtKind
	Pos  tokenizer.Position

	// StmtImport
	ImportPath Path
	ImportForm ImportForm
	ImportNames []Ident // used when ImportForm == ImportNames

	// StmtTypeDef
	TypeName Ident
	TypeRHS  Type

	// StmtLet
	LetName Ident
	LetType *Type // optional declared type
	LetRHS  Expr

	// StmtFnDef
	FnName    Ident
	FnParams  []Param
	FnRetType *Type // optional declared return type
	FnBody    Expr
	FnPublic  bool

	// StmtExtern
	ExternName Ident
	ExternType Type

	// StmtExpr
	ExprValue Expr

	Public bool
}

// Param is one formal parameter in a function definition.
type Param struct {
	Name Ident
	Type Type
}

// TypeKind tags a surface Type AST node.
type TypeKind int

const (
	TypeReference TypeKind = iota // a named type, e.g. `number` or `T`
	TypeStruct                    // { a: T, b: U }
	TypeListOf                    // [T]
	TypeExclude                    // T exclude {a, b} (reserved, Unimplemented)
)

// Type is the surface syntax for a type annotation.
type Type struct {
	Kind TypeKind
	Pos  tokenizer.Position

	RefPath Path // TypeReference

	StructFields []StructField // TypeStruct

	ListElem *Type // TypeListOf

	ExcludeInner *Type // TypeExclude
	Excluded     []Ident
}

type StructField struct {
	Name     Ident
	Type     Type
	Nullable bool
}

// ExprKind tags a surface Expr AST node (spec.md §4.6).
type ExprKind int

const (
	ExprSQLQuery ExprKind = iota
	ExprSQLExpr
	ExprIdent
	ExprRecord
	ExprCall
	ExprLambda
	ExprNumberLit
	ExprStringLit
	ExprBoolLit
	ExprNullLit
)

// Expr is the surface syntax for an expression.
type Expr struct {
	Kind ExprKind
	Pos  tokenizer.Position

	// ExprSQLQuery / ExprSQLExpr: the opaque externally-parsed SQL tree.
	// Defined as an interface{} here because the concrete SQL AST lives in
	// package sqlast and ast must not import it (sqlast is itself an
	// external-collaborator contract, kept separate so either can evolve
	// without the other).
	SQL any

	// ExprIdent
	IdentPath Path

	// ExprRecord
	RecordFields []RecordFieldExpr

	// ExprCall
	CallFn   *Expr
	CallArgs []Expr

	// ExprLambda
	LambdaParams []Param
	LambdaBody   *Expr

	// ExprNumberLit. A single decimal-backed payload for both integer and
	// floating-point literals, matching the teacher's use of
	// decimal.Decimal for exact numeric literal handling instead of a
	// float64 that would round large literals.
	NumberValue decimal.Decimal

	// Other literals
	StringValue string
	BoolValue   bool
}

type RecordFieldExpr struct {
	Name Ident
	Value Expr
}
