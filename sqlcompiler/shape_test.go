package sqlcompiler

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/sqlast"
)

func sampleQuery() sqlast.Query {
	return sqlast.Query{
		Select: sqlast.Select{
			Projection: []sqlast.SelectItem{{Expr: sqlast.Expr{Kind: sqlast.ExprIdentifier, Ident: sqlast.Ident{Value: "id"}}}},
			From:       []sqlast.TableWithJoins{{Relation: tableFactor("users")}},
		},
	}
}

func sampleScalarExpr() sqlast.Expr {
	return sqlast.Expr{Kind: sqlast.ExprLiteralInt, IntValue: 1}
}

func TestAsExprAsQueryRoundTripQuery(t *testing.T) {
	q := sampleQuery()
	body := ir.SQLBody{Shape: ir.ShapeArray, Query: q}

	roundTripped := AsQuery(AsExpr(body))

	assert.Equal(t, ir.ShapeArray, roundTripped.Shape)
	assert.Equal(t, q, roundTripped.Query)
}

func TestAsExprAsQueryRoundTripExpr(t *testing.T) {
	e := sampleScalarExpr()
	body := ir.SQLBody{Shape: ir.ShapeScalar, Expr: e}

	roundTripped := AsExpr(AsQuery(body))

	assert.Equal(t, ir.ShapeScalar, roundTripped.Shape)
	assert.Equal(t, e, roundTripped.Expr)
}

func TestAsExprOnScalarIsIdentity(t *testing.T) {
	e := sampleScalarExpr()
	body := ir.SQLBody{Shape: ir.ShapeScalar, Expr: e}
	assert.Equal(t, body, AsExpr(body))
}

func TestAsQueryOnArrayIsIdentity(t *testing.T) {
	q := sampleQuery()
	body := ir.SQLBody{Shape: ir.ShapeArray, Query: q}
	assert.Equal(t, body, AsQuery(body))
}

func TestAsExprWrapsUnrelatedQueryAsArrayAgg(t *testing.T) {
	body := ir.SQLBody{Shape: ir.ShapeArray, Query: sampleQuery()}
	scalar := AsExpr(body)

	assert.Equal(t, ir.ShapeScalar, scalar.Shape)
	assert.Equal(t, sqlast.ExprSubquery, scalar.Expr.Kind)
}

func TestAsQueryWrapsUnrelatedExprAsSelectValue(t *testing.T) {
	body := ir.SQLBody{Shape: ir.ShapeScalar, Expr: sampleScalarExpr()}
	query := AsQuery(body)

	assert.Equal(t, ir.ShapeArray, query.Shape)
	assert.Equal(t, 1, len(query.Query.Select.Projection))
	assert.Equal(t, "value", query.Query.Select.Projection[0].Alias.Value)
}
