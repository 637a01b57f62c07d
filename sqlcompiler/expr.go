package sqlcompiler

import (
	"context"
	"strings"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/sqlast"
	"github.com/snapql/tyql/types"
)

// compileExpr is the scalar SQL expression walk. bindings maps a FROM-level
// alias to its known columns; it is empty outside query mode.
func (c *Compiler) compileExpr(ctx context.Context, scope ir.Scope, pc *placeholderCounter, bindings map[string][]types.Field, e sqlast.Expr) (*cell.Cell[types.Monotype], sqlast.Expr, ir.SQLNames, error) {
	switch e.Kind {
	case sqlast.ExprIdentifier:
		return c.resolveIdent(ctx, scope, pc, bindings, sqlast.Path{e.Ident}, e)

	case sqlast.ExprCompoundIdentifier:
		return c.resolveIdent(ctx, scope, pc, bindings, e.CompoundPath, e)

	case sqlast.ExprLiteralInt:
		return cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomInt64)), e, ir.NewSQLNames(), nil

	case sqlast.ExprLiteralFloat:
		return cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomFloat64)), e, ir.NewSQLNames(), nil

	case sqlast.ExprLiteralString:
		return cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomUtf8)), e, ir.NewSQLNames(), nil

	case sqlast.ExprLiteralBool:
		return cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomBool)), e, ir.NewSQLNames(), nil

	case sqlast.ExprLiteralNull:
		return cell.NewKnown(scope.Scheduler(), types.NewAtom(types.AtomNull)), e, ir.NewSQLNames(), nil

	case sqlast.ExprBinaryOp:
		return c.compileBinaryOp(ctx, scope, pc, bindings, e)

	case sqlast.ExprFunctionCall:
		return c.compileFunctionCall(ctx, scope, pc, bindings, e)

	case sqlast.ExprSubquery:
		return c.compileScalarSubquery(ctx, scope, pc, e)

	case sqlast.ExprPlaceholder:
		return nil, sqlast.Expr{}, ir.SQLNames{}, compileerr.Internal("placeholder node encountered in parser output")

	default:
		return nil, sqlast.Expr{}, ir.SQLNames{}, compileerr.Internal("unrecognized sql expr kind")
	}
}

// resolveIdent implements binding rules 1 and 2 of spec.md §4.7: an
// identifier that names a known FROM column keeps its shape; failing that,
// one matching a language Expr decl is replaced with a fresh placeholder;
// failing that, it is recorded unbound and left in place.
func (c *Compiler) resolveIdent(ctx context.Context, scope ir.Scope, pc *placeholderCounter, bindings map[string][]types.Field, sqlPath sqlast.Path, orig sqlast.Expr) (*cell.Cell[types.Monotype], sqlast.Expr, ir.SQLNames, error) {
	path := sqlPath.Strings()
	names := ir.NewSQLNames()

	if len(path) >= 2 {
		if fields, ok := bindings[path[0]]; ok {
			if f := findField(fields, path[len(path)-1]); f != nil {
				return f.Type, orig, names, nil
			}
		}
	} else if len(path) == 1 {
		for _, fields := range bindings {
			if f := findField(fields, path[0]); f != nil {
				return f.Type, orig, names, nil
			}
		}
	}

	if typeCell, declExpr, err := scope.LookupValue(ctx, path); err == nil {
		placeholder := pc.next()
		names.Params[placeholder] = ir.New(typeCell, declExpr)
		return typeCell, sqlast.Expr{Kind: sqlast.ExprPlaceholder, Pos: orig.Pos, PlaceholderName: placeholder}, names, nil
	}

	names.Unbound[joinDotted(path)] = sqlPath
	return cell.NewUnknown[types.Monotype](scope.Scheduler(), joinDotted(path)), orig, names, nil
}

func findField(fields []types.Field, name string) *types.Field {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

var binaryCoerceOps = map[sqlast.BinaryOp]types.CoerceOp{
	sqlast.OpPlus:  types.OpAdd,
	sqlast.OpMinus: types.OpSub,
	sqlast.OpMul:   types.OpMul,
	sqlast.OpDiv:   types.OpDiv,
}

var comparisonOps = map[sqlast.BinaryOp]bool{
	sqlast.OpLt: true, sqlast.OpLtEq: true, sqlast.OpGt: true, sqlast.OpGtEq: true,
}

// compileBinaryOp implements binding rule 4: binary SQL operators invoke
// coerce on their operand type cells. Equality and logical operators unify
// their operands directly rather than coercing, so types.Coerce never sees
// them.
func (c *Compiler) compileBinaryOp(ctx context.Context, scope ir.Scope, pc *placeholderCounter, bindings map[string][]types.Field, e sqlast.Expr) (*cell.Cell[types.Monotype], sqlast.Expr, ir.SQLNames, error) {
	lt, le, ln, err := c.compileExpr(ctx, scope, pc, bindings, *e.Left)
	if err != nil {
		return nil, sqlast.Expr{}, ir.SQLNames{}, err
	}
	rt, re, rn, err := c.compileExpr(ctx, scope, pc, bindings, *e.Right)
	if err != nil {
		return nil, sqlast.Expr{}, ir.SQLNames{}, err
	}
	names := ir.NewSQLNames()
	mergeNames(&names, ln, rn)
	rewritten := sqlast.Expr{Kind: sqlast.ExprBinaryOp, Pos: e.Pos, Op: e.Op, Left: &le, Right: &re}

	sched := scope.Scheduler()

	switch {
	case e.Op == sqlast.OpEq || e.Op == sqlast.OpNotEq:
		if err := cell.Unify[types.Monotype](lt, rt); err != nil {
			return nil, sqlast.Expr{}, ir.SQLNames{}, err
		}
		return cell.NewKnown(sched, types.NewAtom(types.AtomBool)), rewritten, names, nil

	case e.Op == sqlast.OpAnd || e.Op == sqlast.OpOr:
		boolCell := cell.NewKnown(sched, types.NewAtom(types.AtomBool))
		if err := cell.Unify[types.Monotype](lt, boolCell); err != nil {
			return nil, sqlast.Expr{}, ir.SQLNames{}, err
		}
		if err := cell.Unify[types.Monotype](rt, boolCell); err != nil {
			return nil, sqlast.Expr{}, ir.SQLNames{}, err
		}
		return cell.NewKnown(sched, types.NewAtom(types.AtomBool)), rewritten, names, nil

	case comparisonOps[e.Op]:
		return coerceCells(sched, types.OpCompare, lt, rt), rewritten, names, nil

	case e.Op == sqlast.OpConcat:
		result := coerceCells(sched, types.OpConcat, lt, rt)
		if !Capabilities[c.Dialect][FeatureConcatOperator] {
			// Dialect has no `||` operator; rewrite to CONCAT() instead of
			// emitting SQL the target won't parse.
			rewritten = sqlast.Expr{
				Kind:     sqlast.ExprFunctionCall,
				Pos:      e.Pos,
				FuncName: sqlast.Path{{Value: "CONCAT"}},
				Args:     []sqlast.FunctionArg{{Expr: le}, {Expr: re}},
			}
		}
		return result, rewritten, names, nil

	default:
		op, ok := binaryCoerceOps[e.Op]
		if !ok {
			return nil, sqlast.Expr{}, ir.SQLNames{}, compileerr.Internal("unrecognized sql binary operator")
		}
		return coerceCells(sched, op, lt, rt), rewritten, names, nil
	}
}

// coerceCells defers coerce(op, ...) until both operand cells are known,
// matching the cell model's suspend-at-then discipline (spec.md §5) instead
// of requiring operands to already be resolved.
func coerceCells(sched *cell.Scheduler, op types.CoerceOp, left, right *cell.Cell[types.Monotype]) *cell.Cell[types.Monotype] {
	return left.Then("coerce", func(lv types.Monotype) (*cell.Cell[types.Monotype], error) {
		return right.Then("coerce", func(rv types.Monotype) (*cell.Cell[types.Monotype], error) {
			result, err := types.Coerce(op, lv, rv)
			if err != nil {
				return nil, err
			}
			return cell.NewKnown(sched, result), nil
		}), nil
	})
}

// compileFunctionCall implements binding rule 2's "unknown functions" case:
// a call to a name absent from this dialect's builtin table is recorded
// unbound; its arguments still compile and contribute their own names.
func (c *Compiler) compileFunctionCall(ctx context.Context, scope ir.Scope, pc *placeholderCounter, bindings map[string][]types.Field, e sqlast.Expr) (*cell.Cell[types.Monotype], sqlast.Expr, ir.SQLNames, error) {
	names := ir.NewSQLNames()
	args := make([]sqlast.FunctionArg, len(e.Args))
	argCells := make([]*cell.Cell[types.Monotype], len(e.Args))
	for i, a := range e.Args {
		t, e2, n, err := c.compileExpr(ctx, scope, pc, bindings, a.Expr)
		if err != nil {
			return nil, sqlast.Expr{}, ir.SQLNames{}, err
		}
		mergeNames(&names, n)
		args[i] = sqlast.FunctionArg{Expr: e2}
		argCells[i] = t
	}
	rewritten := sqlast.Expr{Kind: sqlast.ExprFunctionCall, Pos: e.Pos, FuncName: e.FuncName, Args: args, Distinct: e.Distinct}

	key := strings.ToUpper(joinDotted(e.FuncName.Strings()))
	sig, ok := FunctionSignatures[c.Dialect][key]
	if !ok {
		names.Unbound[joinDotted(e.FuncName.Strings())] = e.FuncName
		return cell.NewUnknown[types.Monotype](scope.Scheduler(), key), rewritten, names, nil
	}

	if sig.ReturnTypeByArg || sig.CastType {
		if len(argCells) == 0 {
			return nil, sqlast.Expr{}, ir.SQLNames{}, compileerr.Internal(key + " expects at least one argument")
		}
		return argCells[0], rewritten, names, nil
	}

	atom, err := atomByName(sig.ReturnType)
	if err != nil {
		return nil, sqlast.Expr{}, ir.SQLNames{}, err
	}
	return cell.NewKnown(scope.Scheduler(), types.NewAtom(atom)), rewritten, names, nil
}

func atomByName(name string) (types.Atom, error) {
	switch name {
	case "number":
		return types.AtomFloat64, nil
	case "string":
		return types.AtomUtf8, nil
	case "bool":
		return types.AtomBool, nil
	default:
		return 0, compileerr.Internal("unrecognized builtin return type name " + name)
	}
}

// compileScalarSubquery implements binding rule 5: a subquery in scalar
// position must project exactly one column.
func (c *Compiler) compileScalarSubquery(ctx context.Context, scope ir.Scope, pc *placeholderCounter, e sqlast.Expr) (*cell.Cell[types.Monotype], sqlast.Expr, ir.SQLNames, error) {
	rowType, rewritten, names, err := c.compileQuery(ctx, scope, pc, *e.Subquery)
	if err != nil {
		return nil, sqlast.Expr{}, ir.SQLNames{}, err
	}

	fields, ok := recordFieldsFromListCell(rowType)
	if !ok {
		// Row shape not yet determinable (e.g. an unresolved FROM table);
		// best-effort scalar type, left Unknown until something forces it.
		return cell.NewUnknown[types.Monotype](scope.Scheduler(), "scalar-subquery"), sqlast.Expr{Kind: sqlast.ExprSubquery, Pos: e.Pos, Subquery: &rewritten}, names, nil
	}
	if len(fields) != 1 {
		return nil, sqlast.Expr{}, ir.SQLNames{}, compileerr.WrongType(&e.Pos, "a single projected column", "a multi-column row")
	}
	return fields[0].Type, sqlast.Expr{Kind: sqlast.ExprSubquery, Pos: e.Pos, Subquery: &rewritten}, names, nil
}
