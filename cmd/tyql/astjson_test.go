package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapql/tyql/ast"
)

func TestDecodeStmtsValid(t *testing.T) {
	data := []byte(`[
		{"Kind": 2, "LetName": {"Name": "x"}, "LetRHS": {"Kind": 6, "NumberValue": "1"}}
	]`)

	stmts, err := decodeStmts(data)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, ast.StmtLet, stmts[0].Kind)
	assert.Equal(t, "x", stmts[0].LetName.Name)
	assert.True(t, stmts[0].LetRHS.NumberValue.Equal(decimal.NewFromInt(1)))
}

func TestDecodeStmtsRejectsSQLExpr(t *testing.T) {
	// SQL is typed `any`, so plain JSON can still populate it with some
	// decoded value (a map, here) even though it can never recover the
	// concrete sqlast.Query/sqlast.Expr a real parser would have produced.
	// decodeStmts rejects that case outright rather than compiling against
	// a meaningless placeholder value.
	data := []byte(`[{"Kind": 5, "ExprValue": {"Kind": 0, "SQL": {"placeholder": true}}}]`)

	_, err := decodeStmts(data)
	assert.Error(t, err)
}

func TestDecodeStmtsMalformedJSON(t *testing.T) {
	_, err := decodeStmts([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecodeStmtsEmpty(t *testing.T) {
	stmts, err := decodeStmts([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, stmts)
}
