// Package schema implements the nested lexical scope tree, two-phase
// declaration pass, and import resolution described in spec.md §3 ("Scope
// (Schema)") and §4.4-§4.5. A Schema is the Scope of the specification; the
// package also hosts the single global builtin schema every compilation
// chains to.
//
// Grounded on original_source/qvm/src/compile/schema.rs's Schema/Decl/
// SchemaEntry and original_source/qvm/src/compile/compile.rs's
// lookup_path/lookup_schema/declare_schema_entries/compile_schema_entries/
// gather_schema_externs.
package schema

import (
	"github.com/google/uuid"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/tokenizer"
	"github.com/snapql/tyql/types"
)

// DeclKind tags which variant of Decl.value is populated (spec.md §3).
type DeclKind int

const (
	DeclSchema DeclKind = iota
	DeclType
	DeclExpr
)

// Decl is the { name, public, extern, value } declaration of spec.md §3.
type Decl struct {
	Name   string
	Public bool
	Extern bool
	Pos    tokenizer.Position

	Kind DeclKind

	SchemaPath []string // DeclSchema

	TypeCell *cell.Cell[types.Monotype] // DeclType

	Scheme types.Scheme // DeclExpr: the decl's (possibly polymorphic) type
	Expr   *ir.Expr     // DeclExpr: the compiled IR; an ExprUnknown placeholder until Phase B replaces it (externs keep it)
}

// ImportedSchema is the cache entry recorded in Schema.Imports, mirroring
// original_source's ImportedSchema (minus its dead argument-passing path,
// which spec.md keeps reserved-and-rejected).
type ImportedSchema struct {
	Schema *Schema
	// HasArgs mirrors the source's `args.is_some()` flag: true whenever the
	// imported schema declares any externs, which makes it an
	// argument-bearing import per spec.md §4.4/§9 Open Question 2.
	HasArgs bool
}

// Schema is the Scope of spec.md §3: `{ file, folder, parent, decls,
// imports, externs, exprs }`.
type Schema struct {
	ID     string
	File   string
	folder string
	hasFolder bool
	Parent *Schema

	compiler *Compiler

	Decls     map[string]*Decl
	declOrder []string // insertion order, for stable iteration (spec.md §6 "preserving source order")

	Imports map[string]*ImportedSchema
	Externs map[string]*cell.Cell[types.Monotype]
	Exprs   []*ir.TypedExpr

	sched *cell.Scheduler

	// reading tracks whether a read of this scope is in flight, guarding
	// against the re-entrant write spec.md §5 calls out as an internal
	// error ("attempting to write a scope while a read is live").
	reading bool
}

// New creates an empty Schema with no parent. folder is the directory used
// to resolve relative imports; pass "" and hasFolder=false when there is
// none (spec.md §4.4 "require scope.folder"). c may be nil for the global
// builtin schema, which never resolves imports.
func New(sched *cell.Scheduler, file, folder string, hasFolder bool, c *Compiler) *Schema {
	return &Schema{
		ID:        uuid.New().String(),
		File:      file,
		folder:    folder,
		hasFolder: hasFolder,
		compiler:  c,
		Decls:     make(map[string]*Decl),
		Imports:   make(map[string]*ImportedSchema),
		Externs:   make(map[string]*cell.Cell[types.Monotype]),
		sched:     sched,
	}
}

func (s *Schema) HasFolder() bool { return s.hasFolder }

func (s *Schema) Folder() string { return s.folder }

// Scheduler, Folder, and HasFolder (above) complete schema.Schema's
// implementation of ir.Scope; see schema/scope_adapter.go for the rest.
func (s *Schema) Scheduler() *cell.Scheduler { return s.sched }

// DeclOrder returns decl names in the order they were inserted, matching
// spec.md §6's "preserving source order" guarantee on the produced
// `decls` map.
func (s *Schema) DeclOrder() []string {
	out := make([]string, len(s.declOrder))
	copy(out, s.declOrder)
	return out
}

// beginRead/endRead implement the reader-guard convention of spec.md §5: a
// single compilation thread, but nested read-then-write within one task is
// an internal error, not a deadlock (there is no real lock to deadlock on).
func (s *Schema) beginRead() func() {
	s.reading = true
	return func() { s.reading = false }
}

func (s *Schema) insert(decl *Decl) error {
	if s.reading {
		return compileerr.Internal("attempted to write schema " + s.ID + " while a read is live")
	}
	if _, exists := s.Decls[decl.Name]; exists {
		return compileerr.DuplicateEntry(&decl.Pos, decl.Name)
	}
	s.Decls[decl.Name] = decl
	s.declOrder = append(s.declOrder, decl.Name)
	return nil
}
