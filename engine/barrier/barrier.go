// Package barrier provides the FlexiBarrier synchronisation primitive used to
// coordinate Workers across the three phases of a simulation macro-step, and
// the Guard helpers used to turn precondition violations (writes performed
// outside the phase that permits them) into recoverable panics.
package barrier

import "sync"

// FlexiBarrier is an N-party barrier whose expected party count is fixed at
// construction, but where a single goroutine may contribute on behalf of k
// parties in one Contribute call. This lets a WorkGroup advance a barrier on
// behalf of every Worker it owns during macro-step sub-stepping (see
// WorkGroup), instead of each sub-managed entity arriving individually.
//
// Built on sync.Mutex + sync.Cond, the same pairing the teacher's World uses
// for its weakExec condition variable (server/world/world.go).
type FlexiBarrier struct {
	mu       sync.Mutex
	cond     *sync.Cond
	parties  int
	arrived  int
	phase    uint64 // monotonically incremented each time the barrier releases, so late wakeups can detect a new round
}

// NewFlexiBarrier constructs a FlexiBarrier expecting parties arrivals (by
// weighted contribution) before it releases all blocked goroutines.
func NewFlexiBarrier(parties int) *FlexiBarrier {
	if parties <= 0 {
		panic("barrier: parties must be positive")
	}
	b := &FlexiBarrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Contribute adds k to the arrival count on behalf of the calling goroutine,
// then blocks until the barrier's party count is reached. The last arriver
// resets the count and wakes every blocked contributor. k must be positive.
func (b *FlexiBarrier) Contribute(k int) {
	if k <= 0 {
		panic("barrier: contribute requires k > 0")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	startPhase := b.phase
	b.arrived += k
	if b.arrived > b.parties {
		panic("barrier: contributions exceeded party count for this round")
	}
	if b.arrived == b.parties {
		b.arrived = 0
		b.phase++
		b.cond.Broadcast()
		return
	}
	for b.phase == startPhase {
		b.cond.Wait()
	}
}

// Wait is equivalent to Contribute(1); it is the method a single-agent
// Worker calls when it is not contributing on behalf of anyone else.
func (b *FlexiBarrier) Wait() {
	b.Contribute(1)
}

// Parties reports the configured party count.
func (b *FlexiBarrier) Parties() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parties
}

// Resize changes the expected party count. It must only be called when no
// goroutine is blocked in Contribute (e.g. between two WorkGroup.Step
// calls), mirroring the teacher's "all registered groups known before
// initBarriers" sequencing.
func (b *FlexiBarrier) Resize(parties int) {
	if parties <= 0 {
		panic("barrier: parties must be positive")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parties = parties
}
