package schema

import (
	"context"

	"github.com/snapql/tyql/ast"
	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/types"
)

// Declare runs Phase A of spec.md §4.5 over stmts, inserting a Decl with a
// fresh cell for every name a statement introduces. Phase B (Compile) later
// fills these cells; forward and mutually recursive references resolve
// because the cell exists from this pass onward regardless of source order.
//
// Grounded on original_source/qvm/src/compile/compile.rs's
// declare_schema_entries.
func Declare(ctx context.Context, c *Compiler, s *Schema, stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		switch stmt.Kind {
		case ast.StmtNoOp, ast.StmtExpr:
			continue

		case ast.StmtImport:
			if err := declareImport(ctx, c, s, stmt); err != nil {
				return err
			}

		case ast.StmtTypeDef:
			decl := &Decl{
				Name:     stmt.TypeName.Name,
				Public:   stmt.Public,
				Pos:      stmt.Pos,
				Kind:     DeclType,
				TypeCell: cell.NewUnknown[types.Monotype](s.sched, stmt.TypeName.Name),
			}
			if err := s.insert(decl); err != nil {
				return err
			}

		case ast.StmtFnDef:
			decl := &Decl{
				Name:   stmt.FnName.Name,
				Public: stmt.Public,
				Pos:    stmt.Pos,
				Kind:   DeclExpr,
				Scheme: types.Mono(cell.NewUnknown[types.Monotype](s.sched, stmt.FnName.Name)),
				Expr:   ir.NewUnknownExpr(),
			}
			if err := s.insert(decl); err != nil {
				return err
			}

		case ast.StmtLet:
			decl := &Decl{
				Name:   stmt.LetName.Name,
				Public: stmt.Public,
				Pos:    stmt.Pos,
				Kind:   DeclExpr,
				Scheme: types.Mono(cell.NewUnknown[types.Monotype](s.sched, stmt.LetName.Name)),
				Expr:   ir.NewUnknownExpr(),
			}
			if err := s.insert(decl); err != nil {
				return err
			}

		case ast.StmtExtern:
			decl := &Decl{
				Name:   stmt.ExternName.Name,
				Public: stmt.Public,
				Extern: true,
				Pos:    stmt.Pos,
				Kind:   DeclExpr,
				Scheme: types.Mono(cell.NewUnknown[types.Monotype](s.sched, stmt.ExternName.Name)),
				Expr:   ir.NewUnknownExpr(),
			}
			if err := s.insert(decl); err != nil {
				return err
			}
		}
	}
	return nil
}

// declareImport handles the three import forms of spec.md §4.5.
func declareImport(ctx context.Context, c *Compiler, s *Schema, stmt ast.Stmt) error {
	pathStrs := pathStrings(stmt.ImportPath)
	imported, err := LookupSchema(ctx, c, s, pathStrs)
	if err != nil {
		return err
	}
	if imported.HasArgs {
		return compileerr.Unimplemented(&stmt.Pos, "importing with arguments")
	}

	switch stmt.ImportForm {
	case ast.ImportWhole:
		name := pathStrs[len(pathStrs)-1]
		return s.insert(&Decl{
			Name:       name,
			Public:     stmt.Public,
			Pos:        stmt.Pos,
			Kind:       DeclSchema,
			SchemaPath: pathStrs,
		})

	case ast.ImportGlobbed:
		for _, name := range imported.Schema.DeclOrder() {
			decl := imported.Schema.Decls[name]
			if !decl.Public {
				continue
			}
			rebound, err := rebindDecl(decl)
			if err != nil {
				return err
			}
			rebound.Name = name
			rebound.Public = stmt.Public
			rebound.Pos = stmt.Pos
			if err := s.insert(rebound); err != nil {
				return err
			}
		}
		return nil

	case ast.ImportNames:
		for _, item := range stmt.ImportNames {
			decl, rest, err := LookupPath(ctx, c, imported.Schema, []string{item.Name}, false)
			if err != nil {
				return err
			}
			if len(rest) > 0 {
				return compileerr.Unimplemented(&stmt.Pos, "path imports")
			}
			rebound, err := rebindDecl(decl)
			if err != nil {
				return err
			}
			rebound.Name = item.Name
			rebound.Public = stmt.Public
			rebound.Pos = stmt.Pos
			if err := s.insert(rebound); err != nil {
				return err
			}
		}
		return nil

	default:
		return compileerr.Internal("unrecognized import form")
	}
}

// rebindDecl copies a Decl looked up through an import into a fresh Decl
// owned by the importing scope, matching rebind_decl's three cases. Schema
// and Type decls share the original's cell/path; Expr decls forward to the
// original by name via a SchemaEntry reference, sharing its type scheme so
// unification still flows through the one underlying cell.
func rebindDecl(decl *Decl) (*Decl, error) {
	switch decl.Kind {
	case DeclSchema:
		return &Decl{Kind: DeclSchema, SchemaPath: decl.SchemaPath}, nil
	case DeclType:
		return &Decl{Kind: DeclType, TypeCell: decl.TypeCell}, nil
	case DeclExpr:
		return &Decl{
			Kind:   DeclExpr,
			Extern: false,
			Scheme: types.Mono(decl.Scheme.Body),
			Expr:   ir.NewSchemaEntryExpr(decl.Name),
		}, nil
	default:
		return nil, compileerr.Internal("unrecognized decl kind during rebind")
	}
}
