// Package cell implements the unifiable lazy type/expression cells that
// underlie the constraint engine (spec.md §4.1). A Cell[T] is a single-writer
// slot that starts Unknown, transitions to Known at most once, or is linked
// to another cell via union-find. All cell operations run on a single
// cooperative Scheduler; there is no locking because there is no concurrency
// (spec.md §5).
//
// Grounded on original_source/qvm/src/compile/schema.rs's CRef<T>/
// Constrainable, simplified from tokio's async runtime to a synchronous
// single-thread work queue.
package cell

import (
	"fmt"

	"github.com/snapql/tyql/compileerr"
)

type state int

const (
	stateUnknown state = iota
	stateKnown
	stateLinked
)

// Unifiable is the contract a cell payload must satisfy: structural
// unification of two known values of type T, returning the merged value
// (which may be either operand, or a fresh merge of both).
type Unifiable[T any] interface {
	Unify(other T) (T, error)
}

// continuation is a pending `then` callback: it receives the resolved value
// and must produce the cell that will be unified into `target`.
type continuation[T Unifiable[T]] struct {
	run func(value T) (*Cell[T], error)
	target *Cell[T]
}

// Cell is a unifiable lazy slot holding a value of type T. Zero value is not
// usable; construct with NewUnknown or NewKnown.
type Cell[T Unifiable[T]] struct {
	sched *Scheduler
	label string
	state state
	value T
	link  *Cell[T]
	conts []continuation[T]
}

// NewUnknown creates an Unknown cell with a debug label, registered with
// sched so that fill() can schedule its continuations.
func NewUnknown[T Unifiable[T]](sched *Scheduler, label string) *Cell[T] {
	return &Cell[T]{sched: sched, label: label, state: stateUnknown}
}

// NewKnown creates a cell that is already resolved.
func NewKnown[T Unifiable[T]](sched *Scheduler, value T) *Cell[T] {
	return &Cell[T]{sched: sched, state: stateKnown, value: value}
}

// find compresses the Linked chain (union-find path compression) and
// returns the representative cell.
func (c *Cell[T]) find() *Cell[T] {
	root := c
	for root.state == stateLinked {
		root = root.link
	}
	node := c
	for node.state == stateLinked {
		next := node.link
		node.link = root
		node = next
	}
	return root
}

// Label returns the cell's debug label, following links to the
// representative cell.
func (c *Cell[T]) Label() string {
	r := c.find()
	if r.label != "" {
		return r.label
	}
	return "<unlabeled>"
}

// IsKnown reports whether the cell (or its union-find representative) holds
// a resolved value.
func (c *Cell[T]) IsKnown() bool {
	return c.find().state == stateKnown
}

// Fill transitions an Unknown cell to Known. It fails if the cell is already
// Known. On success every pending continuation is pushed onto the scheduler
// (spec.md §4.1, §5): it does not run them inline.
func (c *Cell[T]) Fill(value T) error {
	r := c.find()
	switch r.state {
	case stateKnown:
		return compileerr.Internal(fmt.Sprintf("cell %q already known", r.Label()))
	case stateLinked:
		return compileerr.Internal("unreachable: find() never returns a Linked cell")
	}

	r.state = stateKnown
	r.value = value
	conts := r.conts
	r.conts = nil

	for _, k := range conts {
		k := k
		r.sched.push(func() error {
			produced, err := k.run(value)
			if err != nil {
				return err
			}
			return Unify[T](k.target, produced)
		})
	}
	return nil
}

// Then registers a continuation k that runs once the cell becomes Known.
// If the cell is already Known, k runs immediately and its result is unified
// into the returned cell before Then returns; an error from that inline run
// is queued on the scheduler and surfaces from the next Drain. On an Unknown
// cell, Then returns a fresh Unknown cell that will be unified with whatever
// cell k produces once the cell is filled.
func (c *Cell[T]) Then(label string, k func(value T) (*Cell[T], error)) *Cell[T] {
	r := c.find()
	target := NewUnknown[T](r.sched, label)

	if r.state == stateKnown {
		produced, err := k(r.value)
		if err == nil {
			err = Unify[T](target, produced)
		}
		if err != nil {
			r.sched.push(func() error { return err })
		}
		return target
	}

	r.conts = append(r.conts, continuation[T]{run: k, target: target})
	return target
}

// Must requires the cell to be Known, failing with an Internal error
// otherwise. Used once compilation has finished and every cell is expected
// to have been resolved.
func (c *Cell[T]) Must() (T, error) {
	r := c.find()
	if r.state != stateKnown {
		var zero T
		return zero, compileerr.Internal(fmt.Sprintf("unresolved cell %q", r.Label()))
	}
	return r.value, nil
}

// TryValue returns the cell's value and true if Known, or the zero value and
// false otherwise. Unlike Must it never errors; used by callers that have an
// alternate path for the not-yet-known case.
func (c *Cell[T]) TryValue() (T, bool) {
	r := c.find()
	if r.state != stateKnown {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Unify implements cell.unify(a, b) from spec.md §4.1: between two Unknowns,
// link the younger to the older; between Unknown and Known, fill the
// Unknown; between two Knowns, recurse structurally via T.Unify.
func Unify[T Unifiable[T]](a, b *Cell[T]) error {
	ra, rb := a.find(), b.find()
	if ra == rb {
		return nil
	}

	switch {
	case ra.state == stateUnknown && rb.state == stateUnknown:
		// Link the younger (b) to the older (a). "Older" has no externally
		// observable meaning other than a stable, arbitrary tie-break;
		// callers must not depend on which survives (spec.md §5).
		rb.link = ra
		rb.state = stateLinked
		conts := rb.conts
		rb.conts = nil
		ra.conts = append(ra.conts, conts...)
		return nil
	case ra.state == stateKnown && rb.state == stateUnknown:
		return rb.Fill(ra.value)
	case ra.state == stateUnknown && rb.state == stateKnown:
		return ra.Fill(rb.value)
	default: // both Known
		merged, err := ra.value.Unify(rb.value)
		if err != nil {
			return err
		}
		ra.value = merged
		var zero T
		rb.value = zero
		rb.link = ra
		rb.state = stateLinked
		return nil
	}
}
