// Package compileerr defines the closed taxonomy of compile errors produced
// by the schema, exprcompiler, and sqlcompiler packages. Every error carries
// an optional source location and wraps a sentinel so callers can match on
// kind with errors.Is.
package compileerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/snapql/tyql/tokenizer"
)

// Sentinel errors, one per taxonomy entry (spec.md §7). Use errors.Is against
// these, not string comparison.
var (
	ErrNoSuchEntry    = errors.New("no such entry")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrWrongKind      = errors.New("wrong kind")
	ErrWrongType      = errors.New("wrong type")
	ErrCoercion       = errors.New("no coercion rule applies")
	ErrUnimplemented  = errors.New("unimplemented")
	ErrImportError    = errors.New("import error")
	ErrInferenceStuck = errors.New("inference stuck")
	ErrInternal       = errors.New("internal error")
)

// Kind identifies which taxonomy entry an Error belongs to.
type Kind int

const (
	KindNoSuchEntry Kind = iota
	KindDuplicateEntry
	KindWrongKind
	KindWrongType
	KindCoercion
	KindUnimplemented
	KindImportError
	KindInferenceStuck
	KindInternal
)

var sentinels = map[Kind]error{
	KindNoSuchEntry:    ErrNoSuchEntry,
	KindDuplicateEntry: ErrDuplicateEntry,
	KindWrongKind:      ErrWrongKind,
	KindWrongType:      ErrWrongType,
	KindCoercion:       ErrCoercion,
	KindUnimplemented:  ErrUnimplemented,
	KindImportError:    ErrImportError,
	KindInferenceStuck: ErrInferenceStuck,
	KindInternal:       ErrInternal,
}

// Error is the concrete error type raised throughout compilation. It wraps
// the Kind's sentinel so errors.Is(err, compileerr.ErrWrongType) works
// regardless of the specific message.
type Error struct {
	Kind Kind
	Pos  *tokenizer.Position
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s at %d:%d: %s", sentinels[e.Kind], e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return fmt.Sprintf("%s: %s", sentinels[e.Kind], e.Msg)
}

func (e *Error) Unwrap() error {
	return sentinels[e.Kind]
}

func newErr(kind Kind, pos *tokenizer.Position, msg string) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: msg}
}

// NoSuchEntry reports an unresolved name or missing imported file.
func NoSuchEntry(pos *tokenizer.Position, path []string) *Error {
	return newErr(KindNoSuchEntry, pos, strings.Join(path, "."))
}

// DuplicateEntry reports a repeated declaration or record field name within
// one scope.
func DuplicateEntry(pos *tokenizer.Position, name string) *Error {
	return newErr(KindDuplicateEntry, pos, name)
}

// WrongKind reports that a path resolved to a decl of the wrong kind (e.g.
// expected a public entry, expected a type, got a schema).
func WrongKind(pos *tokenizer.Position, path []string, expected, got string) *Error {
	return newErr(KindWrongKind, pos, fmt.Sprintf("%s: expected %s, got %s", strings.Join(path, "."), expected, got))
}

// WrongType reports a unification failure, including arity, name, or
// nullability mismatches within records.
func WrongType(pos *tokenizer.Position, expected, got string) *Error {
	return newErr(KindWrongType, pos, fmt.Sprintf("expected %s, got %s", expected, got))
}

// Coercion reports that no coercion rule applies to a SQL operator's
// operand types.
func Coercion(pos *tokenizer.Position, op, left, right string) *Error {
	return newErr(KindCoercion, pos, fmt.Sprintf("no coercion for %s(%s, %s)", op, left, right))
}

// Unimplemented reports reserved syntax that was reached but is rejected by
// design (struct include/exclude, argument-bearing imports, path imports,
// function generics, type externs).
func Unimplemented(pos *tokenizer.Position, what string) *Error {
	return newErr(KindUnimplemented, pos, what)
}

// ImportError reports I/O failure or an import cycle while resolving an
// imported file.
func ImportError(pos *tokenizer.Position, path []string, reason string) *Error {
	return newErr(KindImportError, pos, fmt.Sprintf("%s: %s", strings.Join(path, "."), reason))
}

// InferenceStuck reports that the scheduler drained with Unknown cells
// remaining, naming their debug labels.
func InferenceStuck(labels []string) *Error {
	return newErr(KindInferenceStuck, nil, strings.Join(labels, ", "))
}

// Internal reports a violated invariant. Never user-facing; surfacing one
// indicates a bug in this compiler, not in the source being compiled.
func Internal(msg string) *Error {
	return newErr(KindInternal, nil, msg)
}
