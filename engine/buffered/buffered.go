// Package buffered implements the current/next/dirty double-buffering
// primitive (DoubleBuffered<T> in the spec) that lets agents publish state
// without locks on the hot path. It is the one mechanism by which agents
// observe each other: during the Tick phase a reader always sees the value
// published at the end of the previous tick, never a write made earlier in
// the same tick.
package buffered

import "github.com/simobility/shortterm/engine/barrier"

// Phase identifies which part of the macro-step a Buffered value currently
// permits. Set is only legal while the phase is PhaseTick.
type Phase uint8

const (
	// PhaseTick is the phase during which Role implementations run
	// frame_tick and may call Set on fields they own.
	PhaseTick Phase = iota
	// PhaseFlip is the phase during which a Worker walks its flip set and
	// calls Flip on each field; Set is not permitted.
	PhaseFlip
	// PhaseAura is the phase during which the SpatialIndex rebuilds from
	// current positions; both Get and Set on agent fields are read-only
	// observers, but Set remains illegal.
	PhaseAura
)

// Buffered holds a pair (current, next) plus a dirty flag, per §4.1 of the
// spec. The zero value is a usable buffer whose current value is the zero
// value of T.
type Buffered[T any] struct {
	current T
	next    T
	dirty   bool
	phase   *Phase
}

// New constructs a Buffered field that consults phase to guard writes. phase
// is the clock shared by a whole WorkGroup (workgroup.WorkGroup.Phase);
// WorkGroup.Step moves it through Tick -> Flip -> Aura once per macro-step.
func New[T any](initial T, phase *Phase) *Buffered[T] {
	return &Buffered[T]{current: initial, phase: phase}
}

// Get returns the current value. Callable from any reader at any phase; it
// never blocks and never observes a same-tick write made by any agent,
// including the field's own owner.
func (b *Buffered[T]) Get() T {
	return b.current
}

// Set assigns v to next and marks the field dirty. It is only legal during
// the Tick phase; calling it at any other time trips the precondition guard
// (barrier.ClosedPanicMessage) so that callers using barrier.Run/Value can
// downgrade the violation into a logged error instead of crashing the whole
// simulation.
func (b *Buffered[T]) Set(v T) {
	if b.phase != nil && *b.phase != PhaseTick {
		panic(barrier.ClosedPanicMessage)
	}
	b.next = v
	b.dirty = true
}

// Flip copies next into current and clears the dirty flag, if dirty. It must
// be called exactly once per field per tick, by the Worker that owns the
// field's subscription, during the Flip phase.
func (b *Buffered[T]) Flip() {
	if !b.dirty {
		return
	}
	b.current = b.next
	b.dirty = false
}

// Dirty reports whether Set has been called since the last Flip.
func (b *Buffered[T]) Dirty() bool {
	return b.dirty
}
