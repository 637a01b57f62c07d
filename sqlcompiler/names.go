package sqlcompiler

import (
	"fmt"

	"github.com/snapql/tyql/ir"
)

// placeholderCounter mints fresh `__p<k>` placeholder names for binding rule
// 1 of spec.md §4.7. One counter is scoped to a single top-level
// CompileQuery/CompileScalar call so that nested scalar subqueries never
// reuse a placeholder name.
type placeholderCounter struct{ n int }

func (p *placeholderCounter) next() string {
	name := fmt.Sprintf("__p%d", p.n)
	p.n++
	return name
}

// mergeNames is ir.SQLNames.Extend, spelled as a free function for call
// sites that build up names from several recursive calls at once.
func mergeNames(into *ir.SQLNames, parts ...ir.SQLNames) {
	for _, p := range parts {
		into.Extend(p)
	}
}
