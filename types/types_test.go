package types

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/snapql/tyql/cell"
)

func TestUnifyAtomsEqual(t *testing.T) {
	_, err := NewAtom(AtomFloat64).Unify(NewAtom(AtomFloat64))
	assert.NoError(t, err)
}

func TestUnifyAtomsMismatch(t *testing.T) {
	_, err := NewAtom(AtomFloat64).Unify(NewAtom(AtomUtf8))
	assert.Error(t, err)
}

func TestUnifyListsRecurse(t *testing.T) {
	sched := cell.NewScheduler()
	a := NewList(cell.NewKnown(sched, NewAtom(AtomUtf8)))
	b := NewList(cell.NewUnknown[Monotype](sched, "elem"))
	_, err := a.Unify(b)
	assert.NoError(t, err)
	assert.NoError(t, sched.Drain())
}

func TestUnifyRecordPositional(t *testing.T) {
	sched := cell.NewScheduler()
	a := NewRecord([]Field{
		{Name: "a", Type: cell.NewKnown(sched, NewAtom(AtomFloat64))},
		{Name: "b", Type: cell.NewKnown(sched, NewAtom(AtomUtf8))},
	})
	b := NewRecord([]Field{
		{Name: "b", Type: cell.NewKnown(sched, NewAtom(AtomUtf8))},
		{Name: "a", Type: cell.NewKnown(sched, NewAtom(AtomFloat64))},
	})
	_, err := a.Unify(b)
	assert.Error(t, err, "field-reordered records must be rejected as unequal")
}

func TestUnifyRecordFieldCountMismatch(t *testing.T) {
	a := NewRecord(nil)
	b := NewRecord([]Field{{Name: "a", Type: nil}})
	_, err := a.Unify(b)
	assert.Error(t, err)
}

func TestEmptyRecordUnifiesOnlyWithEmpty(t *testing.T) {
	_, err := NewRecord(nil).Unify(NewRecord(nil))
	assert.NoError(t, err)
}

func TestInstantiateMonomorphicSchemeIsIdentity(t *testing.T) {
	sched := cell.NewScheduler()
	body := cell.NewKnown(sched, NewAtom(AtomFloat64))
	s := Mono(body)
	out := s.Instantiate(sched, "x")
	v, err := out.Must()
	assert.NoError(t, err)
	assert.Equal(t, AtomFloat64, v.Atom)
}

func TestInstantiatePolymorphicSchemeFreshensVars(t *testing.T) {
	sched := cell.NewScheduler()
	body := cell.NewKnown(sched, NewName("R"))
	s := Scheme{Vars: []string{"R"}, Body: body}

	out1 := s.Instantiate(sched, "call1")
	out2 := s.Instantiate(sched, "call2")
	assert.NoError(t, sched.Drain())

	assert.True(t, !out1.IsKnown() && !out2.IsKnown(), "instantiation should leave fresh vars Unknown until bound by the call site")
}

func TestCoerceNumericWideningIsSymmetric(t *testing.T) {
	a := NewAtom(AtomInt32)
	b := NewAtom(AtomFloat64)

	r1, err := Coerce(OpAdd, a, b)
	assert.NoError(t, err)
	r2, err := Coerce(OpAdd, b, a)
	assert.NoError(t, err)
	assert.Equal(t, r1.Atom, r2.Atom)
	assert.Equal(t, AtomFloat64, r1.Atom)
}

func TestCoerceNoRuleErrors(t *testing.T) {
	_, err := Coerce(OpAdd, NewAtom(AtomUtf8), NewAtom(AtomBool))
	assert.Error(t, err)
}

func TestCoerceDoesNotMutateInputs(t *testing.T) {
	a := NewAtom(AtomInt32)
	b := NewAtom(AtomFloat64)
	_, err := Coerce(OpAdd, a, b)
	assert.NoError(t, err)
	assert.Equal(t, AtomInt32, a.Atom)
	assert.Equal(t, AtomFloat64, b.Atom)
}
