package main

import (
	"encoding/json"
	"fmt"

	"github.com/snapql/tyql/ast"
	"github.com/snapql/tyql/compileerr"
)

// decodeStmts is this CLI's stand-in for the surface-syntax parser: since
// the real grammar is an external collaborator this repository never
// implements (spec.md §1), the CLI instead reads a JSON-encoded []ast.Stmt
// directly, matching schema.Parser's func([]byte) ([]ast.Stmt, error)
// contract so the rest of the pipeline never notices the difference.
//
// SQL fragments (ast.Expr.SQL, typed `any` to keep ast decoupled from
// sqlast) do not round-trip through this format: encoding/json has no way
// to recover the concrete sqlast.Query/sqlast.Expr a bare interface value
// held, and sqlast is itself an external-collaborator contract this
// repository defines but never parses into. Programs fed through this CLI
// are therefore limited to SQL-free declarations: a top-level StmtExpr whose
// SQL field decodes non-nil is rejected here with compileerr.Internal, and
// any other ExprSQLQuery/ExprSQLExpr node reaches the compiler without a
// sqlast payload and fails there with compileerr.Internal rather than
// silently compiling wrong.
func decodeStmts(data []byte) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	if err := json.Unmarshal(data, &stmts); err != nil {
		return nil, fmt.Errorf("decoding AST JSON: %w", err)
	}
	for i, stmt := range stmts {
		if stmt.Kind == ast.StmtExpr && stmt.ExprValue.SQL != nil {
			return nil, compileerr.Internal(fmt.Sprintf("stmt %d: SQL expressions are not supported through the JSON AST CLI input format", i))
		}
	}
	return stmts, nil
}
