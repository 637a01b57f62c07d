package types

import "github.com/snapql/tyql/cell"

// Scheme is the rank-1 type scheme S of spec.md §4.2: a set of bound
// variable names plus a monotype body. Instantiation replaces each bound
// name with a fresh cell.
//
// Grounded on original_source/qvm/src/compile/compile.rs's SType and its
// instantiate() method.
type Scheme struct {
	Vars []string
	Body *cell.Cell[Monotype]
}

// Mono builds a scheme with an empty bound set, used for let-bindings,
// function parameters, and externs (spec.md §4.2: "monomorphic bindings ...
// use an empty bound set").
func Mono(body *cell.Cell[Monotype]) Scheme {
	return Scheme{Body: body}
}

// Instantiate produces a fresh monotype graph from the scheme: a fresh
// Unknown cell for each bound variable, substituted into the body. Even a
// monomorphic scheme (no Vars, an empty substitution environment) walks the
// body and rebuilds a fresh cell graph rather than returning Body itself:
// Substitute's Known branch always constructs a new cell for the value it
// reads (see original_source's CRef<MType>::substitute, whose Known arm
// calls MType::substitute even with an empty variables map). This is what
// gives every extern a cell identity distinct from its declaring scheme
// (Testable Properties §8 invariant 6); nested cells that are still Unknown
// are passed through unsubstituted, because there is nothing yet to rebuild.
// A body (or nested cell) holding Name(v) is replaced by env[v] itself.
func (s Scheme) Instantiate(sched *cell.Scheduler, label string) *cell.Cell[Monotype] {
	env := make(map[string]*cell.Cell[Monotype], len(s.Vars))
	for _, v := range s.Vars {
		env[v] = cell.NewUnknown[Monotype](sched, label+"#"+v)
	}

	return s.Body.Then(label, func(body Monotype) (*cell.Cell[Monotype], error) {
		if body.Kind == KindName {
			if c, ok := env[body.Name]; ok {
				return c, nil
			}
		}
		substituted, err := Substitute(sched, body, env)
		if err != nil {
			return nil, err
		}
		return cell.NewKnown(sched, substituted), nil
	})
}
