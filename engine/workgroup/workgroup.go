// Package workgroup implements the WorkGroup coordinator (spec §4.6): it
// owns a fixed pool of Workers, assigns Agents to them round-robin as they
// are staged, and drives the shared three-phase macro-step cycle
// (FrameTick, Flip, Aura).
//
// Naming and responsibilities are grounded on original_source's
// WorkGroup.hpp: scheduleEntity, stageEntities, collectRemovedEntities,
// waitFrameTick/waitFlipBuffers/waitAuraManager, and the coordinator being
// one more party on every barrier alongside its Workers (there,
// external_barr; here, Step's own contribution to each
// engine/barrier.FlexiBarrier below). Each macro-step forks one goroutine
// per Worker and joins them on the barrier before moving to the next
// phase — a fresh fork-join per Step call rather than long-lived per-Worker
// goroutines, which keeps a single Step deterministic and self-contained.
// The deterministic per-tick driving loop itself is grounded on the
// teacher's redstone.Scheduler.Step (server/world/redstone/scheduler.go):
// one pass over a fixed collection every tick, with cross-cutting
// bookkeeping (staging, removal collection, index rebuild, bus advance)
// done once by the coordinator between phases. Step also owns the shared
// buffered.Phase transitions (Tick during RunTick, Flip while Workers flip
// their owned agents' subscribed fields, Aura while the spatial index
// rebuilds) — the piece of the three-phase cycle that makes
// engine/buffered.Buffered's phase guard mean something rather than a
// dead check against a value nothing ever changes.
package workgroup

import (
	"context"
	"log/slog"

	"github.com/simobility/shortterm/engine/agent"
	"github.com/simobility/shortterm/engine/barrier"
	"github.com/simobility/shortterm/engine/buffered"
	"github.com/simobility/shortterm/engine/message"
	"github.com/simobility/shortterm/engine/spatialindex"
	"github.com/simobility/shortterm/engine/stager"
	"github.com/simobility/shortterm/engine/worker"
)

// Config bundles a WorkGroup's fixed collaborators.
type Config struct {
	Logger     *slog.Logger
	NumWorkers int
	Bus        *message.Bus
	Stager     *stager.Stager
	Index      *spatialindex.Index
	CellSize   float64
	Now        func() int64 // advances once per macro-step; tests may supply a fake clock

	// Phase, if set, is the shared clock every Agent constructed for this
	// WorkGroup must be built with (agent.New's phase argument), so that
	// Step's own phase transitions actually gate each Buffered field's
	// Set calls. If nil, New allocates one and exposes it via Phase().
	Phase *buffered.Phase
}

// WorkGroup coordinates a fixed pool of Workers through the FrameTick, Flip,
// and Aura phases of one macro-step. The zero value is not usable;
// construct with New.
type WorkGroup struct {
	log    *slog.Logger
	bus    *message.Bus
	stager *stager.Stager
	index  *spatialindex.Index
	now    func() int64
	phase  *buffered.Phase

	tickBarrier *barrier.FlexiBarrier

	workers []*worker.Worker
	nextRR  int

	linkAffinity map[int64]int // linkID -> worker index, for vehicles following a route

	allAgents map[int64]*agent.Agent // id -> agent, for spatial-index snapshot assembly
}

// New constructs a WorkGroup with cfg.NumWorkers Workers sharing one
// FlexiBarrier sized at NumWorkers+1 (the extra party is Step's own
// goroutine, matching WorkGroup.hpp's external_barr participant).
func New(cfg Config) *WorkGroup {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.Bus == nil {
		cfg.Bus = message.NewBus()
	}
	if cfg.Stager == nil {
		cfg.Stager = stager.New()
	}
	if cfg.Index == nil {
		cfg.Index = spatialindex.New(cfg.CellSize)
	}
	if cfg.Phase == nil {
		p := buffered.PhaseTick
		cfg.Phase = &p
	}

	wg := &WorkGroup{
		log:          cfg.Logger,
		bus:          cfg.Bus,
		stager:       cfg.Stager,
		index:        cfg.Index,
		now:          cfg.Now,
		phase:        cfg.Phase,
		tickBarrier:  barrier.NewFlexiBarrier(cfg.NumWorkers + 1),
		linkAffinity: make(map[int64]int),
		allAgents:    make(map[int64]*agent.Agent),
	}
	for i := 0; i < cfg.NumWorkers; i++ {
		workerID := i + 1
		wg.workers = append(wg.workers, worker.New(worker.Config{
			ID:     workerID,
			Logger: cfg.Logger,
			Bus:    cfg.Bus,
			OnRemove: func(a *agent.Agent) {
				wg.stager.MarkForRemoval(agentStaged{a}, workerID)
			},
		}))
	}
	return wg
}

// Phase returns the shared clock gating every Buffered field's Set calls.
// Agents scheduled on this WorkGroup must be constructed with this same
// pointer (agent.New's phase argument) for Step's phase transitions to take
// effect.
func (wg *WorkGroup) Phase() *buffered.Phase { return wg.phase }

// NumWorkers reports the size of the pool.
func (wg *WorkGroup) NumWorkers() int { return len(wg.workers) }

// Worker returns the 1-indexed Worker (matching agent.Agent.OwnerWorkerID),
// or nil if idx is out of range.
func (wg *WorkGroup) Worker(idx int) *worker.Worker {
	if idx < 1 || idx > len(wg.workers) {
		return nil
	}
	return wg.workers[idx-1]
}

// ScheduleEntity registers a into the Stager for later staging at its
// StartTimeMs. It does not assign a Worker yet; assignment happens when the
// agent is actually staged, matching WorkGroup.hpp::stageEntities running
// assignment at activation time rather than at scheduleEntity time.
func (wg *WorkGroup) ScheduleEntity(a *agent.Agent) {
	wg.allAgents[a.ID] = a
	wg.stager.Schedule(agentStaged{a})
}

// SetLinkAffinity records a linkID -> Worker pin in the affinity table
// modelled on WorkGroup.hpp's assignAWorkerConstraint/locateWorker. Step
// stages every agent without a link, so staged agents are always assigned
// round-robin and this table is not consulted for them.
func (wg *WorkGroup) SetLinkAffinity(linkID int64, workerIdx int) {
	if workerIdx < 1 || workerIdx > len(wg.workers) {
		return
	}
	wg.linkAffinity[linkID] = workerIdx
}

func (wg *WorkGroup) assign(linkID int64, hasLink bool) *worker.Worker {
	if hasLink {
		if idx, ok := wg.linkAffinity[linkID]; ok {
			return wg.workers[idx-1]
		}
	}
	w := wg.workers[wg.nextRR]
	wg.nextRR = (wg.nextRR + 1) % len(wg.workers)
	return w
}

// agentStaged adapts *agent.Agent to stager.Staged.
type agentStaged struct{ a *agent.Agent }

func (s agentStaged) ID() int64          { return s.a.ID }
func (s agentStaged) StartTimeMs() int64 { return s.a.StartTimeMs }

// Step runs exactly one macro-step. It forks a goroutine per Worker to run
// FrameTick, joins them (and itself, as the +1 party) on the tick barrier,
// then performs the Flip-phase bookkeeping (stage newly-due agents into
// their assigned Worker, apply each Worker's pending add/remove queue,
// finalise removed agents, advance the message bus), and finally rebuilds
// the spatial index for the next macro-step's Aura-phase reads.
func (wg *WorkGroup) Step(nowMs int64) {
	*wg.phase = buffered.PhaseTick

	ctx := context.Background()
	for _, w := range wg.workers {
		go func(w *worker.Worker) {
			w.RunTick(ctx, nowMs)
			wg.tickBarrier.Wait()
		}(w)
	}
	wg.tickBarrier.Wait()

	*wg.phase = buffered.PhaseFlip

	for _, w := range wg.workers {
		w.Flip()
	}

	wg.stager.StageUpTo(nowMs, func(s stager.Staged) {
		as := s.(agentStaged)
		w := wg.assign(0, false)
		w.Enqueue(as.a)
	})

	for _, w := range wg.workers {
		w.ApplyPending()
		for _, removed := range wg.stager.CollectRemoved(w.ID()) {
			delete(wg.allAgents, removed.ID())
		}
	}

	wg.bus.Advance()

	*wg.phase = buffered.PhaseAura

	wg.index.Rebuild(wg.snapshotPositions())
}

func (wg *WorkGroup) snapshotPositions() []spatialindex.Entry {
	entries := make([]spatialindex.Entry, 0, len(wg.allAgents))
	for id, a := range wg.allAgents {
		if a.IsNonSpatial() || a.ToBeRemoved() {
			continue
		}
		entries = append(entries, spatialindex.Entry{
			Agent: spatialindex.AgentRef(id),
			Pos:   a.Position.Get(),
		})
	}
	return entries
}

// Run drives successive macro-steps, one per call to cfg.Now, until ctx is
// cancelled.
func (wg *WorkGroup) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		wg.Step(wg.now())
	}
}
