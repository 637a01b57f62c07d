// Package tokenizer provides the source-location type every AST node in
// this compiler carries. The teacher's own SQL lexer (keyword tables, a
// character-by-character scanner producing Token/TokenType) has no use here:
// the surface and SQL grammars are both parsed by external collaborators
// (spec.md §1), so this package never tokenizes source text itself. Position
// is the one piece those collaborators' outputs need from it.
package tokenizer

// Position is a location in a source file, attached to every ast/sqlast node
// so a compile error can point at the text that caused it.
type Position struct {
	Line   int
	Column int
	Offset int
}
