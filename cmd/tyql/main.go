package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/snapql/tyql"
	"github.com/snapql/tyql/catalog"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/schema"
	"github.com/snapql/tyql/sqlcompiler"
)

// Context is the global CLI state every command's Run receives, grounded on
// cmd/snapsql/main.go's Context.
type Context struct {
	Config string
}

// CLI is the root command tree.
var CLI struct {
	Config  string     `help:"Configuration file path" default:"tyql.yaml"`
	Compile CompileCmd `cmd:"" help:"Compile a source file and print its declarations"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// CompileCmd compiles a root file (or stdin) and reports the result.
type CompileCmd struct {
	Path       string `arg:"" optional:"" help:"Path to a JSON-encoded AST file (omit or '-' to read stdin)"`
	Dialect    string `help:"SQL dialect for table resolution; overrides the config file" `
	CatalogDSN string `help:"Connect to this DSN to resolve otherwise-unbound SQL table names"`
	Externs    bool   `help:"Print only the extern declarations"`
}

func (cmd *CompileCmd) Run(appCtx *Context) error {
	config, err := tyql.LoadConfig(appCtx.Config)
	if err != nil {
		return err
	}

	data, err := readSource(cmd.Path)
	if err != nil {
		return err
	}

	dialect := config.SQLDialect()
	if cmd.Dialect != "" {
		dialect = sqlcompiler.Dialect(cmd.Dialect)
	}

	var resolver sqlcompiler.TableResolver
	ctx := context.Background()
	if cmd.CatalogDSN != "" {
		cat, err := catalog.Open(ctx, dialect, cmd.CatalogDSN)
		if err != nil {
			return err
		}
		defer cat.Close()
		resolver = cat
	}

	stmts, err := decodeStmts(data)
	if err != nil {
		return err
	}

	sqlComp := sqlcompiler.New(dialect, resolver)
	compiler := schema.NewCompiler(decodeStmts, config.Ext, sqlComp)

	result, err := compiler.CompileSource(ctx, "", false, stmts)
	if err != nil {
		printDiagnostic(err)
		os.Exit(1)
	}

	printReport(result, cmd.Externs)
	return nil
}

func readSource(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printReport(s *schema.Schema, externsOnly bool) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	for _, name := range s.DeclOrder() {
		decl := s.Decls[name]
		if externsOnly && !decl.Extern {
			continue
		}

		kind := "let"
		switch {
		case decl.Extern:
			kind = "extern"
		case decl.Kind == schema.DeclType:
			kind = "type"
		case decl.Kind == schema.DeclSchema:
			kind = "schema"
		}

		bold.Print(name)
		fmt.Print(" : ")
		green.Println(declType(decl))
		cyan.Printf("  (%s)\n", kind)
	}
}

func declType(decl *schema.Decl) string {
	switch decl.Kind {
	case schema.DeclType:
		if v, ok := decl.TypeCell.TryValue(); ok {
			return v.String()
		}
		return "<unresolved>"
	case schema.DeclExpr:
		if v, ok := decl.Scheme.Body.TryValue(); ok {
			return v.String()
		}
		return "<unresolved>"
	default:
		return "<schema>"
	}
}

func printDiagnostic(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(os.Stderr, "error: ")

	if ce, ok := asCompileError(err); ok && ce.Pos != nil {
		fmt.Fprintf(os.Stderr, "%s (line %d, col %d)\n", err.Error(), ce.Pos.Line, ce.Pos.Column)
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
}

func asCompileError(err error) (*compileerr.Error, bool) {
	ce, ok := err.(*compileerr.Error)
	return ce, ok
}

// VersionCmd prints the compiler's version.
type VersionCmd struct{}

func (cmd *VersionCmd) Run() error {
	fmt.Println("tyql v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &Context{Config: CLI.Config}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
