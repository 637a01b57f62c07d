package exprcompiler

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/snapql/tyql/ast"
	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/types"
)

// fakeScope is a minimal ir.Scope backed by a flat name table, enough to
// exercise CompileExpr/ResolveType/CompileFunctionLike without pulling in
// package schema.
type fakeScope struct {
	sched  *cell.Scheduler
	values map[string]*cell.Cell[types.Monotype]
	types_ map[string]*cell.Cell[types.Monotype]
	parent *fakeScope
}

func newFakeScope() *fakeScope {
	sched := cell.NewScheduler()
	return &fakeScope{
		sched:  sched,
		values: map[string]*cell.Cell[types.Monotype]{},
		types_: map[string]*cell.Cell[types.Monotype]{
			"number": cell.NewKnown(sched, types.NewAtom(types.AtomFloat64)),
			"string": cell.NewKnown(sched, types.NewAtom(types.AtomUtf8)),
		},
	}
}

func (s *fakeScope) LookupValue(ctx context.Context, path []string) (*cell.Cell[types.Monotype], *ir.Expr, error) {
	if len(path) != 1 {
		return nil, nil, compileerr.NoSuchEntry(nil, path)
	}
	if c, ok := s.values[path[0]]; ok {
		return c, ir.NewUnknownExpr(), nil
	}
	if s.parent != nil {
		return s.parent.LookupValue(ctx, path)
	}
	return nil, nil, compileerr.NoSuchEntry(nil, path)
}

func (s *fakeScope) LookupType(ctx context.Context, path []string) (*cell.Cell[types.Monotype], error) {
	if len(path) != 1 {
		return nil, compileerr.NoSuchEntry(nil, path)
	}
	if c, ok := s.types_[path[0]]; ok {
		return c, nil
	}
	if s.parent != nil {
		return s.parent.LookupType(ctx, path)
	}
	return nil, compileerr.NoSuchEntry(nil, path)
}

func (s *fakeScope) NewChildScope() ir.Scope {
	return &fakeScope{sched: s.sched, values: map[string]*cell.Cell[types.Monotype]{}, types_: map[string]*cell.Cell[types.Monotype]{}, parent: s}
}

func (s *fakeScope) DeclareParam(ctx context.Context, name string, typ *cell.Cell[types.Monotype]) error {
	s.values[name] = typ
	return nil
}

func (s *fakeScope) Scheduler() *cell.Scheduler { return s.sched }
func (s *fakeScope) Folder() string             { return "" }
func (s *fakeScope) HasFolder() bool            { return false }

func numberLit() ast.Expr { return ast.Expr{Kind: ast.ExprNumberLit} }

func TestCompileExprLiterals(t *testing.T) {
	scope := newFakeScope()

	te, err := CompileExpr(context.Background(), scope, nil, numberLit())
	assert.NoError(t, err)
	v, ok := te.Type.TryValue()
	assert.True(t, ok)
	assert.Equal(t, "Float64", v.String())

	te, err = CompileExpr(context.Background(), scope, nil, ast.Expr{Kind: ast.ExprStringLit})
	assert.NoError(t, err)
	v, ok = te.Type.TryValue()
	assert.True(t, ok)
	assert.Equal(t, "Utf8", v.String())
}

func TestCompileExprRecordRejectsDuplicateFields(t *testing.T) {
	scope := newFakeScope()
	e := ast.Expr{
		Kind: ast.ExprRecord,
		RecordFields: []ast.RecordFieldExpr{
			{Name: ast.Ident{Name: "a"}, Value: numberLit()},
			{Name: ast.Ident{Name: "a"}, Value: numberLit()},
		},
	}
	_, err := CompileExpr(context.Background(), scope, nil, e)
	assert.Error(t, err)
}

func TestCompileExprRecordProducesPositionalRecordType(t *testing.T) {
	scope := newFakeScope()
	e := ast.Expr{
		Kind: ast.ExprRecord,
		RecordFields: []ast.RecordFieldExpr{
			{Name: ast.Ident{Name: "a"}, Value: numberLit()},
			{Name: ast.Ident{Name: "b"}, Value: ast.Expr{Kind: ast.ExprStringLit}},
		},
	}
	te, err := CompileExpr(context.Background(), scope, nil, e)
	assert.NoError(t, err)
	v, ok := te.Type.TryValue()
	assert.True(t, ok)
	assert.Equal(t, types.KindRecord, v.Kind)
	assert.Equal(t, 2, len(v.Fields))
	assert.Equal(t, "a", v.Fields[0].Name)
	assert.Equal(t, "b", v.Fields[1].Name)
}

func TestCompileFunctionLikeBindsPositionalArgNames(t *testing.T) {
	scope := newFakeScope()
	params := []ast.Param{
		{Name: ast.Ident{Name: "x"}, Type: ast.Type{Kind: ast.TypeReference, RefPath: ast.Path{{Name: "number"}}}},
	}
	body := ast.Expr{Kind: ast.ExprIdent, IdentPath: ast.Path{{Name: "x"}}}

	te, err := CompileFunctionLike(context.Background(), scope, nil, params, nil, body)
	assert.NoError(t, err)

	v, ok := te.Type.TryValue()
	assert.True(t, ok)
	assert.Equal(t, types.KindFn, v.Kind)

	argsType, ok := v.Args.TryValue()
	assert.True(t, ok)
	assert.Equal(t, "arg0", argsType.Fields[0].Name)
}

func TestCompileCallUnifiesArgsAgainstFnSignature(t *testing.T) {
	scope := newFakeScope()
	fnType := cell.NewKnown(scope.sched, types.NewFn(
		cell.NewKnown(scope.sched, types.NewRecord([]types.Field{
			{Name: "arg0", Type: cell.NewKnown(scope.sched, types.NewAtom(types.AtomFloat64)), Nullable: true},
		})),
		cell.NewKnown(scope.sched, types.NewAtom(types.AtomFloat64)),
	))
	scope.values["f"] = fnType

	e := ast.Expr{
		Kind:     ast.ExprCall,
		CallFn:   &ast.Expr{Kind: ast.ExprIdent, IdentPath: ast.Path{{Name: "f"}}},
		CallArgs: []ast.Expr{numberLit()},
	}

	te, err := CompileExpr(context.Background(), scope, nil, e)
	assert.NoError(t, err)
	v, ok := te.Type.TryValue()
	assert.True(t, ok)
	assert.Equal(t, "Float64", v.String())
}

func TestCompileCallArgTypeMismatchErrors(t *testing.T) {
	scope := newFakeScope()
	fnType := cell.NewKnown(scope.sched, types.NewFn(
		cell.NewKnown(scope.sched, types.NewRecord([]types.Field{
			{Name: "arg0", Type: cell.NewKnown(scope.sched, types.NewAtom(types.AtomUtf8)), Nullable: true},
		})),
		cell.NewKnown(scope.sched, types.NewAtom(types.AtomUtf8)),
	))
	scope.values["f"] = fnType

	e := ast.Expr{
		Kind:     ast.ExprCall,
		CallFn:   &ast.Expr{Kind: ast.ExprIdent, IdentPath: ast.Path{{Name: "f"}}},
		CallArgs: []ast.Expr{numberLit()},
	}

	_, err := CompileExpr(context.Background(), scope, nil, e)
	assert.Error(t, err)
}

func TestResolveTypeStructDefaultsFieldsNullable(t *testing.T) {
	scope := newFakeScope()
	typ := ast.Type{
		Kind: ast.TypeStruct,
		StructFields: []ast.StructField{
			{Name: ast.Ident{Name: "a"}, Type: ast.Type{Kind: ast.TypeReference, RefPath: ast.Path{{Name: "number"}}}},
		},
	}
	c, err := ResolveType(context.Background(), scope, typ)
	assert.NoError(t, err)
	v, ok := c.TryValue()
	assert.True(t, ok)
	assert.True(t, v.Fields[0].Nullable)
}

func TestResolveTypeStructRejectsDuplicateFields(t *testing.T) {
	scope := newFakeScope()
	typ := ast.Type{
		Kind: ast.TypeStruct,
		StructFields: []ast.StructField{
			{Name: ast.Ident{Name: "a"}, Type: ast.Type{Kind: ast.TypeReference, RefPath: ast.Path{{Name: "number"}}}},
			{Name: ast.Ident{Name: "a"}, Type: ast.Type{Kind: ast.TypeReference, RefPath: ast.Path{{Name: "string"}}}},
		},
	}
	_, err := ResolveType(context.Background(), scope, typ)
	assert.Error(t, err)
}

func TestResolveTypeListOf(t *testing.T) {
	scope := newFakeScope()
	typ := ast.Type{
		Kind:     ast.TypeListOf,
		ListElem: &ast.Type{Kind: ast.TypeReference, RefPath: ast.Path{{Name: "string"}}},
	}
	c, err := ResolveType(context.Background(), scope, typ)
	assert.NoError(t, err)
	v, ok := c.TryValue()
	assert.True(t, ok)
	assert.Equal(t, types.KindList, v.Kind)
}

func TestResolveTypeExcludeIsUnimplemented(t *testing.T) {
	scope := newFakeScope()
	typ := ast.Type{Kind: ast.TypeExclude}
	_, err := ResolveType(context.Background(), scope, typ)
	assert.Error(t, err)
}
