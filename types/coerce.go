package types

import "github.com/snapql/tyql/compileerr"

// CoerceOp names a SQL binary operator subject to widening rules. Only the
// operators that actually need coercion (arithmetic, comparison, string
// concatenation) are listed; equality/inequality never reaches Coerce
// because the SQL compiler unifies those operand cells directly instead.
type CoerceOp string

const (
	OpAdd      CoerceOp = "+"
	OpSub      CoerceOp = "-"
	OpMul      CoerceOp = "*"
	OpDiv      CoerceOp = "/"
	OpConcat   CoerceOp = "||"
	OpCompare  CoerceOp = "cmp"
)

var symmetric = map[CoerceOp]bool{
	OpAdd:    true,
	OpMul:    true,
	OpConcat: true,
}

// numericRank orders the numeric atoms for widening: coercing a+b with
// differing numeric atoms returns the wider of the two.
var numericRank = map[Atom]int{
	AtomInt8: 1, AtomInt16: 2, AtomInt32: 3, AtomInt64: 4,
	AtomUInt8: 1, AtomUInt16: 2, AtomUInt32: 3, AtomUInt64: 4,
	AtomFloat32: 5, AtomFloat64: 6,
}

func isNumeric(a Atom) bool {
	_, ok := numericRank[a]
	return ok
}

func isTemporal(a Atom) bool {
	return a == AtomDate || a == AtomTime || a == AtomTimestamp
}

// Coerce is the coerce(op, left, right) hook of spec.md §4.3: invoked only
// by the SQL compiler for arithmetic, comparison and concatenation
// operators, whether or not the operand atoms differ. It never mutates
// left or right; it returns a fresh
// Monotype or a Coercion error when no rule applies.
//
// Grounded on the widening table implicit in original_source/qvm's runtime
// type system plus the dialect concat-operator split captured in
// sqlcompiler's Capabilities table (string concatenation uses `||` on
// Postgres/SQLite but CONCAT() on MySQL/MariaDB; Coerce itself is
// dialect-agnostic about which operator spelling is used, only about the
// resulting type).
func Coerce(op CoerceOp, left, right Monotype) (Monotype, error) {
	if symmetric[op] {
		if r, err := coerce(op, left, right); err == nil {
			return r, nil
		}
		return coerce(op, right, left)
	}
	return coerce(op, left, right)
}

func coerce(op CoerceOp, left, right Monotype) (Monotype, error) {
	if left.Kind != KindAtom || right.Kind != KindAtom {
		return Monotype{}, compileerr.Coercion(nil, string(op), left.String(), right.String())
	}

	if left.Atom == right.Atom {
		return left, nil
	}

	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
		if isNumeric(left.Atom) && isNumeric(right.Atom) {
			if numericRank[left.Atom] >= numericRank[right.Atom] {
				return left, nil
			}
			return right, nil
		}

	case OpConcat:
		if left.Atom == AtomUtf8 && isTemporal(right.Atom) {
			return left, nil
		}
		if right.Atom == AtomUtf8 && isTemporal(left.Atom) {
			return right, nil
		}

	case OpCompare:
		if isNumeric(left.Atom) && isNumeric(right.Atom) {
			return NewAtom(AtomBool), nil
		}
		if isTemporal(left.Atom) && isTemporal(right.Atom) {
			return NewAtom(AtomBool), nil
		}
	}

	return Monotype{}, compileerr.Coercion(nil, string(op), left.String(), right.String())
}
