package schema

import (
	"context"

	"github.com/snapql/tyql/ast"
	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/exprcompiler"
	"github.com/snapql/tyql/types"
)

// Compile runs Phase B of spec.md §4.5 over stmts: fill every cell Declare
// left Unknown by compiling each statement's right-hand side and unifying
// the result into its already-existing decl.
//
// Grounded on original_source/qvm/src/compile/compile.rs's
// compile_schema_entries.
func Compile(ctx context.Context, c *Compiler, s *Schema, stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		switch stmt.Kind {
		case ast.StmtNoOp, ast.StmtImport:
			continue

		case ast.StmtTypeDef:
			if err := compileTypeDef(ctx, s, stmt); err != nil {
				return err
			}

		case ast.StmtFnDef:
			if err := compileFnDef(ctx, c, s, stmt); err != nil {
				return err
			}

		case ast.StmtLet:
			if err := compileLet(ctx, c, s, stmt); err != nil {
				return err
			}

		case ast.StmtExtern:
			if err := compileExtern(ctx, s, stmt); err != nil {
				return err
			}

		case ast.StmtExpr:
			compiled, err := exprcompiler.CompileExpr(ctx, s, c.SQL, stmt.ExprValue)
			if err != nil {
				return err
			}
			s.Exprs = append(s.Exprs, compiled)
		}
	}
	return nil
}

// unify_type_decl: resolve the declared RHS and fold it into the Unknown
// cell Declare already inserted for this name.
func compileTypeDef(ctx context.Context, s *Schema, stmt ast.Stmt) error {
	decl := s.Decls[stmt.TypeName.Name]
	resolved, err := exprcompiler.ResolveType(ctx, s, stmt.TypeRHS)
	if err != nil {
		return err
	}
	return cell.Unify[types.Monotype](decl.TypeCell, resolved)
}

// unify_expr_decl's function-definition arm: an inner scope holds the
// parameters, the body compiles against it, and the result unifies into the
// Phase-A scheme body so forward/mutually-recursive callers' cells resolve.
func compileFnDef(ctx context.Context, c *Compiler, s *Schema, stmt ast.Stmt) error {
	decl := s.Decls[stmt.FnName.Name]
	compiled, err := exprcompiler.CompileFunctionLike(ctx, s, c.SQL, stmt.FnParams, stmt.FnRetType, stmt.FnBody)
	if err != nil {
		return err
	}
	if err := cell.Unify[types.Monotype](decl.Scheme.Body, compiled.Type); err != nil {
		return err
	}
	decl.Expr = compiled.Expr
	return nil
}

func compileLet(ctx context.Context, c *Compiler, s *Schema, stmt ast.Stmt) error {
	decl := s.Decls[stmt.LetName.Name]

	compiled, err := exprcompiler.CompileExpr(ctx, s, c.SQL, stmt.LetRHS)
	if err != nil {
		return err
	}

	if stmt.LetType != nil {
		declared, err := exprcompiler.ResolveType(ctx, s, *stmt.LetType)
		if err != nil {
			return err
		}
		if err := cell.Unify[types.Monotype](declared, compiled.Type); err != nil {
			return err
		}
	}

	if err := cell.Unify[types.Monotype](decl.Scheme.Body, compiled.Type); err != nil {
		return err
	}
	decl.Expr = compiled.Expr
	return nil
}

// compileExtern resolves the declared type and folds it into the Phase-A
// cell; there is no body to compile, so decl.Expr keeps the Unknown Declare
// left it with.
func compileExtern(ctx context.Context, s *Schema, stmt ast.Stmt) error {
	decl := s.Decls[stmt.ExternName.Name]
	resolved, err := exprcompiler.ResolveType(ctx, s, stmt.ExternType)
	if err != nil {
		return err
	}
	return cell.Unify[types.Monotype](decl.Scheme.Body, resolved)
}

// GatherExterns instantiates a fresh monotype cell for every extern Expr
// decl in s, mirroring original_source's gather_schema_externs: an extern's
// scheme is instantiated once per schema that declares it, giving every
// extern a cell identity distinct from the scheme that types it (spec.md §8
// Testable Properties invariant 6).
func GatherExterns(s *Schema) error {
	for _, name := range s.declOrder {
		decl := s.Decls[name]
		if !decl.Extern {
			continue
		}
		if decl.Kind != DeclExpr {
			return compileerr.Unimplemented(&decl.Pos, "type externs")
		}
		s.Externs[name] = decl.Scheme.Instantiate(s.sched, name)
	}
	return nil
}
