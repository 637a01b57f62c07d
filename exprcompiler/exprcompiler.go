package exprcompiler

import (
	"context"
	"fmt"

	"github.com/snapql/tyql/ast"
	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/sqlast"
	"github.com/snapql/tyql/sqlcompiler"
	"github.com/snapql/tyql/types"
)

// CompileExpr implements compile_expr (spec.md §4.6): SQL forms dispatch to
// sql, everything else builds an IR node directly.
func CompileExpr(ctx context.Context, scope ir.Scope, sql *sqlcompiler.Compiler, e ast.Expr) (*ir.TypedExpr, error) {
	switch e.Kind {
	case ast.ExprSQLQuery:
		q, ok := e.SQL.(sqlast.Query)
		if !ok {
			return nil, compileerr.Internal("ExprSQLQuery carries a non-Query payload")
		}
		return sql.CompileQuery(ctx, scope, q)

	case ast.ExprSQLExpr:
		se, ok := e.SQL.(sqlast.Expr)
		if !ok {
			return nil, compileerr.Internal("ExprSQLExpr carries a non-Expr payload")
		}
		return sql.CompileScalar(ctx, scope, se)

	case ast.ExprIdent:
		typeCell, declExpr, err := scope.LookupValue(ctx, e.IdentPath.Strings())
		if err != nil {
			return nil, err
		}
		return ir.New(typeCell, declExpr), nil

	case ast.ExprRecord:
		return compileRecord(ctx, scope, sql, e)

	case ast.ExprCall:
		return compileCall(ctx, scope, sql, e)

	case ast.ExprLambda:
		return CompileFunctionLike(ctx, scope, sql, e.LambdaParams, nil, *e.LambdaBody)

	case ast.ExprNumberLit:
		return ir.New(cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomFloat64)), ir.NewUnknownExpr()), nil

	case ast.ExprStringLit:
		return ir.New(cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomUtf8)), ir.NewUnknownExpr()), nil

	case ast.ExprBoolLit:
		return ir.New(cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomBool)), ir.NewUnknownExpr()), nil

	case ast.ExprNullLit:
		return ir.New(cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomNull)), ir.NewUnknownExpr()), nil

	default:
		return nil, compileerr.Internal("unrecognized expr AST kind")
	}
}

func compileRecord(ctx context.Context, scope ir.Scope, sql *sqlcompiler.Compiler, e ast.Expr) (*ir.TypedExpr, error) {
	seen := make(map[string]bool, len(e.RecordFields))
	fields := make([]ir.RecordField, len(e.RecordFields))
	monoFields := make([]types.Field, len(e.RecordFields))

	for i, f := range e.RecordFields {
		if seen[f.Name.Name] {
			return nil, compileerr.DuplicateEntry(&f.Name.Pos, f.Name.Name)
		}
		seen[f.Name.Name] = true

		val, err := CompileExpr(ctx, scope, sql, f.Value)
		if err != nil {
			return nil, err
		}
		fields[i] = ir.RecordField{Name: f.Name.Name, Value: val}
		monoFields[i] = types.Field{Name: f.Name.Name, Type: val.Type, Nullable: false}
	}

	recordType := cell.NewKnown(scope.Scheduler(), types.NewRecord(monoFields))
	return ir.New(recordType, ir.NewRecordExpr(&ir.RecordExpr{Fields: fields})), nil
}

// argFieldName is the positional field-naming convention used on both sides
// of a call: a function's Fn(args, ret) monotype names its argument record
// fields arg0, arg1, ... regardless of the source parameter names (which
// only matter for resolving identifiers in the body, via DeclareParam), so
// call-site argument records unify against it by position rather than by
// the source's own parameter spelling.
func argFieldName(i int) string { return fmt.Sprintf("arg%d", i) }

func compileCall(ctx context.Context, scope ir.Scope, sql *sqlcompiler.Compiler, e ast.Expr) (*ir.TypedExpr, error) {
	fn, err := CompileExpr(ctx, scope, sql, *e.CallFn)
	if err != nil {
		return nil, err
	}

	args := make([]*ir.TypedExpr, len(e.CallArgs))
	argFields := make([]types.Field, len(e.CallArgs))
	for i, a := range e.CallArgs {
		compiled, err := CompileExpr(ctx, scope, sql, a)
		if err != nil {
			return nil, err
		}
		args[i] = compiled
		argFields[i] = types.Field{Name: argFieldName(i), Type: compiled.Type, Nullable: true}
	}

	sched := scope.Scheduler()
	argsCell := cell.NewKnown(sched, types.NewRecord(argFields))
	retCell := cell.NewUnknown[types.Monotype](sched, "call-ret")
	fnType := cell.NewKnown(sched, types.NewFn(argsCell, retCell))

	if err := cell.Unify[types.Monotype](fn.Type, fnType); err != nil {
		return nil, err
	}

	return ir.New(retCell, ir.NewFnCallExpr(&ir.FnCallExpr{Fn: fn, Args: args, CtxFolder: scope.Folder()})), nil
}

// CompileFunctionLike compiles a function definition or lambda body (spec.md
// §4.6 "Function definition" steps 1-4), shared by schema's `fn` statement
// handling and this package's ExprLambda case.
func CompileFunctionLike(ctx context.Context, scope ir.Scope, sql *sqlcompiler.Compiler, params []ast.Param, retType *ast.Type, body ast.Expr) (*ir.TypedExpr, error) {
	inner := scope.NewChildScope()

	argFields := make([]types.Field, len(params))
	for i, p := range params {
		paramType, err := ResolveType(ctx, inner, p.Type)
		if err != nil {
			return nil, err
		}
		if err := inner.DeclareParam(ctx, p.Name.Name, paramType); err != nil {
			return nil, err
		}
		argFields[i] = types.Field{Name: argFieldName(i), Type: paramType, Nullable: true}
	}

	compiledBody, err := CompileExpr(ctx, inner, sql, body)
	if err != nil {
		return nil, err
	}

	if retType != nil {
		rc, err := ResolveType(ctx, inner, *retType)
		if err != nil {
			return nil, err
		}
		if err := cell.Unify[types.Monotype](rc, compiledBody.Type); err != nil {
			return nil, err
		}
	}

	sched := scope.Scheduler()
	argsCell := cell.NewKnown(sched, types.NewRecord(argFields))
	fnType := cell.NewKnown(sched, types.NewFn(argsCell, compiledBody.Type))

	return ir.New(fnType, ir.NewFnExpr(&ir.FnExpr{InnerScope: inner, Body: compiledBody})), nil
}
