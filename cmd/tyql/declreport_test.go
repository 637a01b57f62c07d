package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/schema"
	"github.com/snapql/tyql/types"
)

func TestDeclTypeResolvedType(t *testing.T) {
	sched := cell.NewScheduler()
	decl := &schema.Decl{
		Kind:     schema.DeclType,
		TypeCell: cell.NewKnown(sched, types.NewAtom(types.AtomUtf8)),
	}
	assert.Equal(t, "Utf8", declType(decl))
}

func TestDeclTypeUnresolved(t *testing.T) {
	sched := cell.NewScheduler()
	decl := &schema.Decl{
		Kind:     schema.DeclType,
		TypeCell: cell.NewUnknown[types.Monotype](sched, "t"),
	}
	assert.Equal(t, "<unresolved>", declType(decl))
}

func TestDeclTypeSchema(t *testing.T) {
	decl := &schema.Decl{Kind: schema.DeclSchema}
	assert.Equal(t, "<schema>", declType(decl))
}

func TestAsCompileErrorMatch(t *testing.T) {
	err := compileerr.Internal("boom")
	ce, ok := asCompileError(err)
	assert.True(t, ok)
	assert.Equal(t, "boom", ce.Msg)
}

func TestAsCompileErrorMismatch(t *testing.T) {
	_, ok := asCompileError(assert.AnError)
	assert.False(t, ok)
}
