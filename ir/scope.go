package ir

import (
	"context"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/types"
)

// Scope is the narrow contract the expression and SQL compilers need from a
// lexical scope, expressed here (rather than in package schema) so that
// schema can depend on exprcompiler/sqlcompiler without either of those
// depending back on schema. schema.Schema implements this interface
// directly; nothing about it is schema-specific.
type Scope interface {
	// LookupValue resolves a dotted path to an Expr decl's type cell and
	// compiled IR, chaining to parent and global scopes per spec.md §4.4.
	LookupValue(ctx context.Context, path []string) (*cell.Cell[types.Monotype], *Expr, error)
	// LookupType resolves a dotted path to a Type decl's cell (spec.md
	// §4.3's type-reference resolution).
	LookupType(ctx context.Context, path []string) (*cell.Cell[types.Monotype], error)
	// NewChildScope returns a fresh scope parented to this one, for a
	// lambda's or function's inner scope (spec.md §4.6).
	NewChildScope() Scope
	// DeclareParam installs name as a monomorphic extern Expr decl in this
	// scope, so SQL bodies compiled within it can bind to it (spec.md
	// §4.6 step 2).
	DeclareParam(ctx context.Context, name string, typ *cell.Cell[types.Monotype]) error
	Scheduler() *cell.Scheduler
	Folder() string
	HasFolder() bool
}
