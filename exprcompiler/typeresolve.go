// Package exprcompiler implements compile_expr (spec.md §4.6) and
// resolve_type (spec.md §4.3) against the narrow ir.Scope contract, so it
// never needs to import the schema package that owns the concrete scope
// type. schema.Schema calls into this package; nothing here calls back.
//
// Grounded on original_source/qvm/src/compile/compile.rs's compile_expr,
// resolve_type, and the function-definition block of compile_schema_entries.
package exprcompiler

import (
	"context"

	"github.com/snapql/tyql/ast"
	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/types"
)

// ResolveType walks a surface Type AST and produces its monotype cell
// (spec.md §4.3).
func ResolveType(ctx context.Context, scope ir.Scope, t ast.Type) (*cell.Cell[types.Monotype], error) {
	switch t.Kind {
	case ast.TypeReference:
		return scope.LookupType(ctx, t.RefPath.Strings())

	case ast.TypeStruct:
		seen := make(map[string]bool, len(t.StructFields))
		fields := make([]types.Field, len(t.StructFields))
		for i, f := range t.StructFields {
			if seen[f.Name.Name] {
				return nil, compileerr.DuplicateEntry(&f.Name.Pos, f.Name.Name)
			}
			seen[f.Name.Name] = true

			fc, err := ResolveType(ctx, scope, f.Type)
			if err != nil {
				return nil, err
			}
			// Struct literal fields are always nullable (spec.md §9 Open
			// Question 4); ast.StructField.Nullable is not consulted.
			fields[i] = types.Field{Name: f.Name.Name, Type: fc, Nullable: true}
		}
		return cell.NewKnown(scope.Scheduler(), types.NewRecord(fields)), nil

	case ast.TypeListOf:
		elem, err := ResolveType(ctx, scope, *t.ListElem)
		if err != nil {
			return nil, err
		}
		return cell.NewKnown(scope.Scheduler(), types.NewList(elem)), nil

	case ast.TypeExclude:
		return nil, compileerr.Unimplemented(&t.Pos, "struct include/exclude")

	default:
		return nil, compileerr.Internal("unrecognized type AST kind")
	}
}
