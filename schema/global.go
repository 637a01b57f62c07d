package schema

import (
	"sync"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/types"
)

var (
	globalOnce   sync.Once
	globalSched  *cell.Scheduler
	globalSchema *Schema
)

// Global returns the process-wide singleton builtin schema (spec.md §6:
// "A fixed set of atomic type bindings ... plus the native scheme
// load_json"). It is built once via a one-time initializer, matching
// spec.md §9's "Global mutable state" design note and
// original_source/qvm/src/schema/mod.rs's Schema::new_global_schema.
func Global() *Schema {
	globalOnce.Do(func() {
		globalSched = cell.NewScheduler()
		globalSchema = New(globalSched, "<global>", "", false, nil)
		mustDeclareAtom(globalSchema, "number", types.AtomFloat64)
		mustDeclareAtom(globalSchema, "string", types.AtomUtf8)
		mustDeclareAtom(globalSchema, "bool", types.AtomBool)
		mustDeclareAtom(globalSchema, "null", types.AtomNull)
		declareLoadJSON(globalSchema)
	})
	return globalSchema
}

func mustDeclareAtom(s *Schema, name string, a types.Atom) {
	if err := s.insert(&Decl{
		Name:     name,
		Public:   true,
		Kind:     DeclType,
		TypeCell: cell.NewKnown(s.sched, types.NewAtom(a)),
	}); err != nil {
		panic(err)
	}
}

// declareLoadJSON installs the one native polymorphic scheme spec.md §6
// names explicitly: `load_json: ∀R. (file: Utf8) → [R]`.
func declareLoadJSON(s *Schema) {
	const varName = "R"
	rowVar := cell.NewKnown(s.sched, types.NewName(varName))
	argsCell := cell.NewKnown(s.sched, types.NewRecord([]types.Field{
		{Name: "file", Type: cell.NewKnown(s.sched, types.NewAtom(types.AtomUtf8)), Nullable: false},
	}))
	listCell := cell.NewKnown(s.sched, types.NewList(rowVar))
	fnCell := cell.NewKnown(s.sched, types.NewFn(argsCell, listCell))

	if err := s.insert(&Decl{
		Name:   "load_json",
		Public: true,
		Kind:   DeclExpr,
		Scheme: types.Scheme{Vars: []string{varName}, Body: fnCell},
		Expr:   ir.NewNativeFnExpr("load_json"),
	}); err != nil {
		panic(err)
	}
}
