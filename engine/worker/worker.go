// Package worker implements the per-Worker agent-ticking unit (spec §4.5):
// a goroutine-owned agent slice advanced through frame_tick/frame_output
// once per macro-step, plus pending add/remove queues only the owner ever
// drains.
//
// The goroutine-owns-state shape (an append-only local slice, pending
// add/remove queues drained only by the owner) is grounded on the teacher's
// ChunkWorker (server/world/redstone/worker.go): a single goroutine is the
// sole mutator of its state, and cross-goroutine requests are queued rather
// than protected by a lock. The coordinator (engine/workgroup) spawns one
// fresh goroutine per Worker per macro-step and joins them on a
// engine/barrier.FlexiBarrier, mirroring original_source's WorkGroup.hpp
// three-phase cycle (waitFrameTick/waitFlipBuffers/waitAuraManager)
// without requiring a long-lived goroutine per Worker.
package worker

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/simobility/shortterm/engine/agent"
	"github.com/simobility/shortterm/engine/message"
)

// Config bundles a Worker's fixed collaborators.
type Config struct {
	ID     int
	Logger *slog.Logger
	Bus    *message.Bus

	// OnRemove, if set, is called when a Role returns agent.Done, once per
	// such agent, before it is queued in this Worker's own pendingRemove.
	// The coordinator wires this to the Stager's removal bucket
	// (stager.Stager.MarkForRemoval), since a bare Worker has no reference
	// to the shared Stager.
	OnRemove func(a *agent.Agent)
}

// Worker owns a disjoint subset of the simulation's Agents and advances
// them one macro-step at a time. The zero value is not usable; construct
// with New.
type Worker struct {
	id  int
	log *slog.Logger
	bus *message.Bus
	rng *rand.Rand

	owned []*agent.Agent

	pendingAdd    []*agent.Agent
	pendingRemove []*agent.Agent

	onRemove func(a *agent.Agent)
}

// New constructs a Worker. Its owned slice starts empty; agents are added
// via Enqueue, applied at the next ApplyPending.
func New(cfg Config) *Worker {
	return &Worker{
		id:       cfg.ID,
		log:      cfg.Logger,
		bus:      cfg.Bus,
		rng:      rand.New(rand.NewSource(int64(cfg.ID))),
		onRemove: cfg.OnRemove,
	}
}

// ID returns the Worker's stable identifier (1-based; 0 means unowned, per
// engine/agent.Agent.OwnerWorkerID).
func (w *Worker) ID() int { return w.id }

// Len reports how many agents this Worker currently owns.
func (w *Worker) Len() int { return len(w.owned) }

// RNG returns the Worker's private random source, used for decisions that
// must not perturb any individual agent's own RNG stream (e.g. scheduling
// jitter), per spec §5's "per-agent RNG is independent of worker
// assignment" guarantee.
func (w *Worker) RNG() *rand.Rand { return w.rng }

// Enqueue hands a newly-staged agent to this Worker. It becomes visible in
// Len/owned only after the next ApplyPending.
func (w *Worker) Enqueue(a *agent.Agent) {
	a.SetOwnerWorkerID(w.id)
	w.pendingAdd = append(w.pendingAdd, a)
}

// Remove marks a, already owned by this Worker, to be dropped from owned at
// the next ApplyPending.
func (w *Worker) Remove(a *agent.Agent) {
	w.pendingRemove = append(w.pendingRemove, a)
}

// retire reports a's retirement to the Stager (via onRemove) and queues it
// for local removal from owned.
func (w *Worker) retire(a *agent.Agent) {
	if w.onRemove != nil {
		w.onRemove(a)
	}
	w.Remove(a)
}

// Flip walks every owned agent's current (and, for the one tick following a
// Role swap, previous) subscription list and calls each field's Flip,
// publishing this tick's Set calls to Get. Called once per macro-step
// during the Flip phase, strictly after RunTick's goroutines have all
// contributed to the tick barrier.
func (w *Worker) Flip() {
	for _, a := range w.owned {
		for _, sub := range a.BuildSubscriptionList() {
			sub.Flip()
		}
		if prev := a.PreviousRole(); prev != nil {
			for _, sub := range prev.SubscriptionList() {
				sub.Flip()
			}
			a.ClearPreviousRole()
		}
	}
}

// ApplyPending drains pendingAdd/pendingRemove into owned. Called once per
// macro-step during Flip, strictly after this Worker's own share of the
// tick barrier has been contributed, so no sibling Worker observes a
// half-applied owned slice.
func (w *Worker) ApplyPending() {
	if len(w.pendingRemove) > 0 {
		remove := make(map[int64]struct{}, len(w.pendingRemove))
		for _, a := range w.pendingRemove {
			remove[a.ID] = struct{}{}
			if w.bus != nil {
				w.bus.Unregister(message.Ref(a.ID))
			}
		}
		kept := w.owned[:0]
		for _, a := range w.owned {
			if _, gone := remove[a.ID]; gone {
				continue
			}
			kept = append(kept, a)
		}
		w.owned = kept
		w.pendingRemove = nil
	}
	if len(w.pendingAdd) > 0 {
		for _, a := range w.pendingAdd {
			if w.bus != nil {
				w.bus.Register(message.Ref(a.ID))
			}
		}
		w.owned = append(w.owned, w.pendingAdd...)
		w.pendingAdd = nil
	}
}

// RunTick runs one macro-step's FrameTick phase for every owned agent:
// deliver pending messages, run FrameInit once if needed, then FrameTick,
// then FrameOutput. Agents whose Role returns agent.Done are queued for
// removal via Remove but stay in owned until the following ApplyPending, so
// sibling Workers' aura/index reads this macro-step still see them.
func (w *Worker) RunTick(ctx context.Context, nowMs int64) {
	for _, a := range w.owned {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.tickOne(a, nowMs)
	}
}

func (w *Worker) tickOne(a *agent.Agent, nowMs int64) {
	if w.bus != nil {
		for _, env := range w.bus.Take(message.Ref(a.ID)) {
			if r := a.Role(); r != nil {
				r.OnMessage(env.Kind, env.Payload)
			}
		}
	}

	r := a.Role()
	if r == nil {
		return
	}

	if !a.Initialized() {
		if r.FrameInit(nowMs) == agent.Done {
			a.MarkToBeRemoved()
			w.retire(a)
			return
		}
		a.MarkInitialized()
	}

	result := r.FrameTick(nowMs)
	r.FrameOutput(nowMs)

	if result == agent.Done {
		a.MarkToBeRemoved()
		w.retire(a)
	}
}
