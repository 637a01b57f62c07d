package schema

import (
	"context"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/types"
)

// LookupValue implements ir.Scope for *Schema: resolve path to an Expr
// decl's type cell and compiled IR, following the global-scope fallback of
// spec.md §4.4. This is the entry point the SQL and expression compilers
// use for binding rule 1 of §4.7 and identifier-reference compilation of
// §4.6.
func (s *Schema) LookupValue(ctx context.Context, path []string) (*cell.Cell[types.Monotype], *ir.Expr, error) {
	decl, rest, err := LookupPath(ctx, s.compiler, s, path, true)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) > 0 {
		return nil, nil, compileerr.NoSuchEntry(nil, path)
	}
	if decl.Kind != DeclExpr {
		return nil, nil, compileerr.WrongKind(nil, path, "value", "type or schema")
	}
	return decl.Scheme.Body, decl.Expr, nil
}

// LookupType implements ir.Scope: resolve path to a Type decl's cell.
func (s *Schema) LookupType(ctx context.Context, path []string) (*cell.Cell[types.Monotype], error) {
	decl, rest, err := LookupPath(ctx, s.compiler, s, path, true)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, compileerr.NoSuchEntry(nil, path)
	}
	if decl.Kind != DeclType {
		return nil, compileerr.WrongKind(nil, path, "type", "value or schema")
	}
	return decl.TypeCell, nil
}

// NewChildScope implements ir.Scope: a fresh scope parented to s, sharing
// its compiler and inheriting its folder (spec.md §4.6 step 1).
func (s *Schema) NewChildScope() ir.Scope {
	child := New(s.sched, s.File, s.folder, s.hasFolder, s.compiler)
	child.Parent = s
	return child
}

// DeclareParam implements ir.Scope: installs name as a monomorphic extern
// Expr decl bound to typ, compiled to a ContextRef so SQL bodies in this
// scope can reference it by name (spec.md §4.6 step 2).
func (s *Schema) DeclareParam(ctx context.Context, name string, typ *cell.Cell[types.Monotype]) error {
	return s.insert(&Decl{
		Name:   name,
		Public: true,
		Extern: true,
		Kind:   DeclExpr,
		Scheme: types.Mono(typ),
		Expr:   ir.NewContextRefExpr(name),
	})
}
