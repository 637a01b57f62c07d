// Package types implements the kind-free monotype algebra and rank-1 type
// schemes (spec.md §3, §4.2-§4.3): atoms, records, lists, functions, and
// named scheme variables, plus their structural unification.
//
// Grounded on original_source/qvm/src/compile/schema.rs's MType (Atom,
// Record, List, Fn, Name) and CRef<MType>. Each sub-position here is a
// *cell.Cell[Monotype] rather than a bare Monotype, matching the source's
// use of CRef for every nested type slot.
package types

import (
	"fmt"

	"github.com/snapql/tyql/cell"
	"github.com/snapql/tyql/compileerr"
	"github.com/snapql/tyql/tokenizer"
)

// Atom enumerates the closed atomic type set reflecting the runtime
// columnar type system (spec.md §3).
type Atom int

const (
	AtomNull Atom = iota
	AtomBool
	AtomInt8
	AtomInt16
	AtomInt32
	AtomInt64
	AtomUInt8
	AtomUInt16
	AtomUInt32
	AtomUInt64
	AtomFloat32
	AtomFloat64
	AtomUtf8
	AtomDate
	AtomTime
	AtomTimestamp
)

func (a Atom) String() string {
	switch a {
	case AtomNull:
		return "Null"
	case AtomBool:
		return "Bool"
	case AtomInt8:
		return "Int8"
	case AtomInt16:
		return "Int16"
	case AtomInt32:
		return "Int32"
	case AtomInt64:
		return "Int64"
	case AtomUInt8:
		return "UInt8"
	case AtomUInt16:
		return "UInt16"
	case AtomUInt32:
		return "UInt32"
	case AtomUInt64:
		return "UInt64"
	case AtomFloat32:
		return "Float32"
	case AtomFloat64:
		return "Float64"
	case AtomUtf8:
		return "Utf8"
	case AtomDate:
		return "Date"
	case AtomTime:
		return "Time"
	case AtomTimestamp:
		return "Timestamp"
	default:
		return "Atom(?)"
	}
}

// Kind tags which variant a Monotype holds.
type Kind int

const (
	KindAtom Kind = iota
	KindRecord
	KindList
	KindFn
	KindName
)

// Field is one (name, type-cell, nullable) triple inside a Record. Order is
// significant for printing and for unification, which compares fields
// positionally (spec.md §4.3).
type Field struct {
	Name     string
	Type     *cell.Cell[Monotype]
	Nullable bool
}

// Monotype is the tagged variant M of spec.md §3. Only the fields matching
// Kind are meaningful; the zero value of the others is ignored.
//
// Name holds a scheme-bound variable name and is only ever present inside a
// Scheme body; resolved monotypes never carry a Name (invariant 3).
type Monotype struct {
	Kind Kind

	Atom Atom

	Fields []Field // Record

	Elem *cell.Cell[Monotype] // List

	Args *cell.Cell[Monotype] // Fn: always a Record monotype
	Ret  *cell.Cell[Monotype] // Fn

	Name string // Name
}

func NewAtom(a Atom) Monotype { return Monotype{Kind: KindAtom, Atom: a} }

func NewRecord(fields []Field) Monotype { return Monotype{Kind: KindRecord, Fields: fields} }

func NewList(elem *cell.Cell[Monotype]) Monotype { return Monotype{Kind: KindList, Elem: elem} }

func NewFn(args, ret *cell.Cell[Monotype]) Monotype { return Monotype{Kind: KindFn, Args: args, Ret: ret} }

func NewName(name string) Monotype { return Monotype{Kind: KindName, Name: name} }

// String renders a Monotype for diagnostics and debug cell labels. It does
// not attempt to resolve nested cells that are still Unknown.
func (m Monotype) String() string {
	switch m.Kind {
	case KindAtom:
		return m.Atom.String()
	case KindRecord:
		s := "{"
		for i, f := range m.Fields {
			if i > 0 {
				s += ", "
			}
			s += f.Name
			if f.Nullable {
				s += "?"
			}
		}
		return s + "}"
	case KindList:
		return "[" + cellString(m.Elem) + "]"
	case KindFn:
		return "(" + cellString(m.Args) + ") -> " + cellString(m.Ret)
	case KindName:
		return "'" + m.Name
	default:
		return "<?>"
	}
}

func cellString(c *cell.Cell[Monotype]) string {
	if v, ok := c.TryValue(); ok {
		return v.String()
	}
	return c.Label()
}

// Unify implements the structural rules of spec.md §4.3. It satisfies
// cell.Unifiable[Monotype], so Monotype cells can be unified through
// cell.Unify.
func (m Monotype) Unify(other Monotype) (Monotype, error) {
	return unify(nil, m, other)
}

// UnifyAt is identical to Unify but attaches pos to the WrongType errors it
// raises at the top level of the comparison, for diagnostics. Mismatches
// found while unifying nested cells carry no position.
func (m Monotype) UnifyAt(pos *tokenizer.Position, other Monotype) (Monotype, error) {
	return unify(pos, m, other)
}

func unify(pos *tokenizer.Position, a, b Monotype) (Monotype, error) {
	if a.Kind == KindName || b.Kind == KindName {
		return Monotype{}, compileerr.Internal("Name encountered during unification: schemes must be instantiated first")
	}
	if a.Kind != b.Kind {
		return Monotype{}, compileerr.WrongType(pos, a.String(), b.String())
	}

	switch a.Kind {
	case KindAtom:
		if a.Atom != b.Atom {
			return Monotype{}, compileerr.WrongType(pos, a.String(), b.String())
		}
		return a, nil

	case KindList:
		if err := cell.Unify[Monotype](a.Elem, b.Elem); err != nil {
			return Monotype{}, err
		}
		return a, nil

	case KindFn:
		if err := cell.Unify[Monotype](a.Args, b.Args); err != nil {
			return Monotype{}, err
		}
		if err := cell.Unify[Monotype](a.Ret, b.Ret); err != nil {
			return Monotype{}, err
		}
		return a, nil

	case KindRecord:
		if len(a.Fields) != len(b.Fields) {
			return Monotype{}, compileerr.WrongType(pos, a.String(), b.String())
		}
		for i := range a.Fields {
			fa, fb := a.Fields[i], b.Fields[i]
			if fa.Name != fb.Name {
				return Monotype{}, compileerr.WrongType(pos, fmt.Sprintf("field %q", fa.Name), fmt.Sprintf("field %q", fb.Name))
			}
			if fa.Nullable != fb.Nullable {
				return Monotype{}, compileerr.WrongType(pos, fmt.Sprintf("%s (nullable=%v)", fa.Name, fa.Nullable), fmt.Sprintf("%s (nullable=%v)", fb.Name, fb.Nullable))
			}
			if err := cell.Unify[Monotype](fa.Type, fb.Type); err != nil {
				return Monotype{}, err
			}
		}
		return a, nil

	default:
		return Monotype{}, compileerr.Internal("unknown Monotype kind")
	}
}

// Substitute walks m replacing every Name(v) with env[v], per spec.md §4.1's
// substitute(env). Used only during scheme instantiation; a ground monotype
// (invariant 4 of Testable Properties) is returned unchanged.
func Substitute(sched *cell.Scheduler, m Monotype, env map[string]*cell.Cell[Monotype]) (Monotype, error) {
	switch m.Kind {
	case KindName:
		c, ok := env[m.Name]
		if !ok {
			return Monotype{}, compileerr.NoSuchEntry(nil, []string{m.Name})
		}
		v, ok := c.TryValue()
		if !ok {
			return Monotype{}, compileerr.Internal("substitute: scheme variable cell not yet known")
		}
		return v, nil

	case KindAtom:
		return m, nil

	case KindList:
		elem, err := substituteCell(sched, m.Elem, env)
		if err != nil {
			return Monotype{}, err
		}
		return NewList(elem), nil

	case KindFn:
		args, err := substituteCell(sched, m.Args, env)
		if err != nil {
			return Monotype{}, err
		}
		ret, err := substituteCell(sched, m.Ret, env)
		if err != nil {
			return Monotype{}, err
		}
		return NewFn(args, ret), nil

	case KindRecord:
		fields := make([]Field, len(m.Fields))
		for i, f := range m.Fields {
			fc, err := substituteCell(sched, f.Type, env)
			if err != nil {
				return Monotype{}, err
			}
			fields[i] = Field{Name: f.Name, Type: fc, Nullable: f.Nullable}
		}
		return NewRecord(fields), nil

	default:
		return Monotype{}, compileerr.Internal("unknown Monotype kind")
	}
}

func substituteCell(sched *cell.Scheduler, c *cell.Cell[Monotype], env map[string]*cell.Cell[Monotype]) (*cell.Cell[Monotype], error) {
	v, ok := c.TryValue()
	if !ok {
		// Nothing to substitute into yet; scheme bodies are always fully
		// ground before instantiation, so an Unknown here means the cell
		// itself is the thing being substituted (no Name reachable through
		// it) and can be passed through untouched.
		return c, nil
	}
	if v.Kind == KindName {
		// Name(v) is replaced by the env cell itself, which is usually a
		// fresh Unknown from Instantiate.
		if ec, ok := env[v.Name]; ok {
			return ec, nil
		}
	}
	nv, err := Substitute(sched, v, env)
	if err != nil {
		return nil, err
	}
	return cell.NewKnown(sched, nv), nil
}
