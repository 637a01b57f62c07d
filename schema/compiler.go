package schema

import (
	"context"
	"os"
	"path/filepath"

	"github.com/snapql/tyql/ast"
	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/ir"
	"github.com/snapql/tyql/sqlcompiler"
)

// Parser is the external surface-syntax parser's contract (spec.md §1:
// "consumed as a pure AST producer"). This package never implements one;
// callers supply it.
type Parser func(source []byte) ([]ast.Stmt, error)

// Compiler drives compilation of a root file and every schema it
// transitively imports. It owns one cell.Scheduler shared by every Schema
// it produces (spec.md §5: a single compilation thread).
//
// Grounded on original_source/qvm/src/compile/compile.rs's Compiler, minus
// its tokio runtime (replaced by cell.Scheduler per spec.md §4.8).
type Compiler struct {
	Sched *cell.Scheduler
	Parse Parser
	// Ext is the schema file extension resolved during import (spec.md §6,
	// default "tql").
	Ext string
	// SQL configures how `SQL ...` and `sql ...` language expressions
	// compile (dialect and table resolution); see schema/compile.go.
	SQL *sqlcompiler.Compiler

	compiling map[string]bool // cycle guard, keyed by canonical file path
}

// NewCompiler creates a Compiler. ext defaults to "tql" when empty. sql may
// be nil, in which case every SQL table reference compiles unbound rather
// than resolving against a catalog (spec.md §9's open "unbound" end).
func NewCompiler(parse Parser, ext string, sql *sqlcompiler.Compiler) *Compiler {
	if ext == "" {
		ext = "tql"
	}
	if sql == nil {
		sql = sqlcompiler.New(sqlcompiler.DialectPostgres, nil)
	}
	return &Compiler{
		Sched:     cell.NewScheduler(),
		Parse:     parse,
		Ext:       ext,
		SQL:       sql,
		compiling: make(map[string]bool),
	}
}

// CompileSource compiles stmts as the root of a new compilation, with
// folder used to resolve any relative imports it contains. Pass
// hasFolder=false for sources with no associated file.
func (c *Compiler) CompileSource(ctx context.Context, folder string, hasFolder bool, stmts []ast.Stmt) (*Schema, error) {
	s := New(c.Sched, "<source>", folder, hasFolder, c)
	if err := c.compileInto(ctx, s, stmts); err != nil {
		return nil, err
	}
	return s, nil
}

// CompileFile reads, parses, and compiles the file at path as the root of
// a new compilation (spec.md §6's import path resolution, applied to the
// entry point rather than an import statement).
func (c *Compiler) CompileFile(ctx context.Context, path string) (*Schema, error) {
	return c.compileImport(ctx, path)
}

// compileImport is the recursive entry point used both for the root file
// and for every `import` statement's target (spec.md §1 "module import may
// trigger the whole pipeline recursively").
func (c *Compiler) compileImport(ctx context.Context, path string) (*Schema, error) {
	canonical, err := filepath.Abs(path)
	if err != nil {
		return nil, compileerr.ImportError(nil, []string{path}, err.Error())
	}

	if c.compiling[canonical] {
		return nil, compileerr.ImportError(nil, []string{path}, "cycle")
	}
	c.compiling[canonical] = true
	defer delete(c.compiling, canonical)

	contents, err := os.ReadFile(canonical)
	if err != nil {
		return nil, compileerr.NoSuchEntry(nil, []string{path})
	}

	stmts, err := c.Parse(contents)
	if err != nil {
		return nil, compileerr.ImportError(nil, []string{path}, err.Error())
	}

	s := New(c.Sched, canonical, filepath.Dir(canonical), true, c)
	if err := c.compileInto(ctx, s, stmts); err != nil {
		return nil, err
	}
	return s, nil
}

// compileInto runs the full pipeline of spec.md §4.5 against an
// already-constructed (possibly child) scope: Declare, Compile,
// GatherExterns, then drain the scheduler and check for InferenceStuck.
func (c *Compiler) compileInto(ctx context.Context, s *Schema, stmts []ast.Stmt) error {
	if err := Declare(ctx, c, s, stmts); err != nil {
		return err
	}
	if err := Compile(ctx, c, s, stmts); err != nil {
		return err
	}
	if err := GatherExterns(s); err != nil {
		return err
	}

	trackDeclCells(c.Sched, s)
	if err := c.Sched.Drain(); err != nil {
		return err
	}
	if labels := c.Sched.UnresolvedLabels(); len(labels) > 0 {
		return compileerr.InferenceStuck(labels)
	}
	return nil
}

// trackDeclCells registers every non-extern Expr decl's type cell with the
// scheduler so that a compilation that ends with Unknown cells remaining
// surfaces as InferenceStuck (spec.md §4.8, Testable Properties invariant
// 2) instead of silently returning a partially-typed scope.
//
// A SQL-bodied decl with a nonempty unbound set is exempt: its row shape
// may legitimately stay Unknown when it references a table this compiler
// cannot resolve (spec.md §4.7 binding rule 2, end-to-end scenario 5) -
// that case is reported through names.unbound, not InferenceStuck.
func trackDeclCells(sched *cell.Scheduler, s *Schema) {
	for _, name := range s.declOrder {
		decl := s.Decls[name]
		if decl.Kind != DeclExpr || decl.Extern {
			continue
		}
		if decl.Expr != nil && decl.Expr.Kind == ir.ExprSQL && len(decl.Expr.SQL.Names.Unbound) > 0 {
			continue
		}
		sched.Track(decl.Scheme.Body)
	}
}
