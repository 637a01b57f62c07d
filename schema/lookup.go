package schema

import (
	"context"
	"path/filepath"

	"github.com/snapql/tyql/ast"
	"github.com/snapql/tyql/compileerr"
)

// LookupPath implements lookup_path(scope, path, allow_global) of spec.md
// §4.4, grounded line-by-line on original_source's
// compile.rs::lookup_path.
func LookupPath(ctx context.Context, c *Compiler, s *Schema, path []string, allowGlobal bool) (*Decl, []string, error) {
	if len(path) == 0 {
		return nil, nil, compileerr.NoSuchEntry(nil, path)
	}

	cur := s
	for i, ident := range path {
		decl, ok := cur.Decls[ident]
		if !ok {
			if cur.Parent != nil {
				return LookupPath(ctx, c, cur.Parent, path[i:], allowGlobal)
			}
			if allowGlobal && cur != Global() {
				return LookupPath(ctx, c, Global(), path[i:], false)
			}
			return nil, nil, compileerr.NoSuchEntry(nil, path)
		}

		if i > 0 && !decl.Public {
			return nil, nil, compileerr.WrongKind(nil, path, "public", "private")
		}

		if i == len(path)-1 {
			return decl, nil, nil
		}

		if decl.Kind != DeclSchema {
			return decl, path[i+1:], nil
		}

		imported, err := LookupSchema(ctx, c, cur, decl.SchemaPath)
		if err != nil {
			return nil, nil, err
		}
		cur = imported.Schema
	}

	return nil, nil, compileerr.NoSuchEntry(nil, path)
}

// LookupSchema implements lookup_schema(scope, path) of spec.md §4.4: a
// write-once cache keyed by (scope, path); on a miss it resolves
// `folder/p0/.../pn.<ext>`, parses, and compiles the file, recursing into
// the whole pipeline (spec.md §1, "module import may trigger the whole
// pipeline recursively").
func LookupSchema(ctx context.Context, c *Compiler, s *Schema, path []string) (*ImportedSchema, error) {
	key := joinPath(path)
	if imported, ok := s.Imports[key]; ok {
		return imported, nil
	}

	if !s.HasFolder() {
		return nil, compileerr.NoSuchEntry(nil, path)
	}

	parts := append([]string{s.folder}, path...)
	filePath := filepath.Join(parts...) + "." + c.Ext

	imported, err := c.compileImport(ctx, filePath)
	if err != nil {
		return nil, err
	}

	entry := &ImportedSchema{Schema: imported, HasArgs: len(imported.Externs) > 0}
	s.Imports[key] = entry
	return entry, nil
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

// pathStrings converts an ast.Path to plain strings for lookup/error use.
func pathStrings(p ast.Path) []string { return p.Strings() }
