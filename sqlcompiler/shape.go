package sqlcompiler

import (
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/sqlast"
	"github.com/snapql/tyql/tokenizer"
)

// AsExpr and AsQuery resolve spec.md §9 Open Question 1: the original's
// as_expr/as_query were documented as inconsistent about scalar vs. array
// (as_query(as_expr(q)) loses the fact that q was already an array). Here
// ir.SQLBody carries an explicit Shape, and each function recognizes the
// other's wrapper and unwraps it instead of wrapping again, so the two are
// genuine mutual inverses: AsQuery(AsExpr(q)) reproduces q exactly, and
// AsExpr(AsQuery(e)) reproduces e exactly, not just a shape-tagged copy.

// AsExpr lifts body into scalar position. A body already in ShapeScalar is
// returned unchanged. A ShapeArray body produced by AsQuery (a bare `SELECT
// <expr> AS value` with no other clauses) unwraps back to that original
// expr. Any other ShapeArray body is wrapped as a scalar subquery selecting
// `array_agg(subquery.value)` over itself, matching the wrapping shape of
// original_source's SQLBody::as_expr.
func AsExpr(body ir.SQLBody) ir.SQLBody {
	if body.Shape == ir.ShapeScalar {
		return body
	}

	if inner, ok := unwrapAsQueryMarker(body.Query); ok {
		return ir.SQLBody{Shape: ir.ShapeScalar, Expr: inner}
	}

	subqueryAlias := sqlast.Ident{Value: "subquery"}
	wrapped := sqlast.Expr{
		Kind: sqlast.ExprSubquery,
		Subquery: &sqlast.Query{
			Select: sqlast.Select{
				Projection: []sqlast.SelectItem{{
					Expr: sqlast.Expr{
						Kind:     sqlast.ExprFunctionCall,
						FuncName: sqlast.Path{{Value: "array_agg"}},
						Args: []sqlast.FunctionArg{{
							Expr: sqlast.Expr{Kind: sqlast.ExprCompoundIdentifier, CompoundPath: sqlast.Path{subqueryAlias, {Value: "value"}}},
						}},
					},
					Alias: sqlast.Ident{Value: "value"},
				}},
				From: []sqlast.TableWithJoins{{
					Relation: sqlast.TableFactor{
						Kind:     sqlast.TableFactorDerived,
						Subquery: &body.Query,
						Alias:    subqueryAlias,
					},
				}},
			},
		},
	}
	return ir.SQLBody{Shape: ir.ShapeScalar, Expr: wrapped}
}

// AsQuery lifts body into query position. A body already in ShapeArray is
// returned unchanged. A ShapeScalar body produced by AsExpr (the
// `array_agg(subquery.value)` wrap over a derived table) unwraps back to
// that original query. Any other ShapeScalar body is wrapped as `SELECT
// <expr> AS value`, matching original_source's SQLBody::as_query.
func AsQuery(body ir.SQLBody) ir.SQLBody {
	if body.Shape == ir.ShapeArray {
		return body
	}

	if inner, ok := unwrapAsExprMarker(body.Expr); ok {
		return ir.SQLBody{Shape: ir.ShapeArray, Query: inner}
	}

	wrapped := sqlast.Query{
		Pos: exprPos(body.Expr),
		Select: sqlast.Select{
			Projection: []sqlast.SelectItem{{
				Expr:  body.Expr,
				Alias: sqlast.Ident{Value: "value"},
			}},
		},
	}
	return ir.SQLBody{Shape: ir.ShapeArray, Query: wrapped}
}

func exprPos(e sqlast.Expr) tokenizer.Position { return e.Pos }

// unwrapAsQueryMarker recognizes the `SELECT <expr> AS value` shape AsQuery
// produces and recovers <expr>, so AsExpr can undo it instead of wrapping a
// wrapper.
func unwrapAsQueryMarker(q sqlast.Query) (sqlast.Expr, bool) {
	if len(q.OrderBy) != 0 || q.Limit != nil || q.Offset != nil {
		return sqlast.Expr{}, false
	}
	sel := q.Select
	if sel.Distinct || sel.Wildcard || len(sel.Projection) != 1 || len(sel.From) != 0 ||
		sel.Where != nil || len(sel.GroupBy) != 0 || sel.Having != nil {
		return sqlast.Expr{}, false
	}
	if sel.Projection[0].Alias.Value != "value" {
		return sqlast.Expr{}, false
	}
	return sel.Projection[0].Expr, true
}

// unwrapAsExprMarker recognizes the `array_agg(subquery.value)` wrap over a
// derived table that AsExpr produces and recovers the original query, so
// AsQuery can undo it instead of wrapping a wrapper.
func unwrapAsExprMarker(e sqlast.Expr) (sqlast.Query, bool) {
	if e.Kind != sqlast.ExprSubquery || e.Subquery == nil {
		return sqlast.Query{}, false
	}
	sel := e.Subquery.Select
	if len(e.Subquery.OrderBy) != 0 || e.Subquery.Limit != nil || e.Subquery.Offset != nil {
		return sqlast.Query{}, false
	}
	if sel.Distinct || sel.Wildcard || len(sel.Projection) != 1 || len(sel.From) != 1 ||
		sel.Where != nil || len(sel.GroupBy) != 0 || sel.Having != nil {
		return sqlast.Query{}, false
	}
	proj := sel.Projection[0]
	if proj.Alias.Value != "value" || proj.Expr.Kind != sqlast.ExprFunctionCall || len(proj.Expr.Args) != 1 {
		return sqlast.Query{}, false
	}
	if joinDotted(proj.Expr.FuncName.Strings()) != "array_agg" {
		return sqlast.Query{}, false
	}
	from := sel.From[0]
	if len(from.Joins) != 0 || from.Relation.Kind != sqlast.TableFactorDerived || from.Relation.Subquery == nil {
		return sqlast.Query{}, false
	}
	return *from.Relation.Subquery, true
}
