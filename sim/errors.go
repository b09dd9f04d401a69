package sim

import "errors"

// Sentinel error kinds, grounded on the teacher's domain-error idiom of
// a handful of package-level errors.New values checked with errors.Is
// (e.g. server/player/form's ErrAlreadyClosed, server/block's
// ErrInvalidState pattern) rather than typed error hierarchies.
var (
	// ErrConfiguration is returned for malformed or missing scenario
	// configuration.
	ErrConfiguration = errors.New("sim: invalid configuration")

	// ErrPathNotFound is returned when a requested network path (trip
	// origin/destination, segment, node) does not resolve.
	ErrPathNotFound = errors.New("sim: path not found")

	// ErrPrecondition names an operation attempted outside the phase it
	// requires. Nothing in this module returns it: a Buffered Set outside
	// the Tick phase panics with engine/barrier.ClosedPanicMessage, which
	// callers can recover through barrier.Run/Value.
	ErrPrecondition = errors.New("sim: precondition violated")

	// ErrNetworkInconsistency is returned when the road network's arenas
	// reference an id that does not exist (e.g. a Segment naming an
	// unknown Link).
	ErrNetworkInconsistency = errors.New("sim: network inconsistency")

	// ErrRuntimeExhaustion names a bounded computation that runs past its
	// bound without converging. Nothing in this module returns it:
	// engine/signal's SplitPlan.ComputeCurrPhase reports that case with its
	// own fmt.Errorf error, since engine/signal does not import sim.
	ErrRuntimeExhaustion = errors.New("sim: runtime exhaustion")
)
