// Package stager implements EntityStager (spec §4.4): a priority queue of
// pending agents keyed by start-time, and a per-worker removal bucket
// collected at the end of each tick. It mirrors the producer/consumer
// discipline of the teacher's World transaction queue
// (server/world/world.go's `queue chan transaction`: many producers, one
// coordinator drains) but specialised to agent arrival rather than
// arbitrary closures.
package stager

import (
	"container/heap"
	"sync"

	"github.com/brentp/intintmap"
)

// Staged is anything that can be scheduled: it only needs a start time and a
// tie-breaking id (ties are broken by id, per spec §5 ordering guarantees).
type Staged interface {
	ID() int64
	StartTimeMs() int64
}

type pendingItem struct {
	agent Staged
	index int
}

type pendingHeap []*pendingItem

func (h pendingHeap) Len() int { return len(h) }
func (h pendingHeap) Less(i, j int) bool {
	ai, aj := h[i].agent, h[j].agent
	if ai.StartTimeMs() != aj.StartTimeMs() {
		return ai.StartTimeMs() < aj.StartTimeMs()
	}
	return ai.ID() < aj.ID()
}
func (h pendingHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *pendingHeap) Push(x any) {
	item := x.(*pendingItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// location tracks, per agent id, which of the three disjoint locations an
// agent currently occupies: pending, owned (by some worker), or removed.
// This is pure bookkeeping used to enforce the spec's "each live agent
// appears in exactly one location" invariant in tests; it is not consulted
// on the hot path. Backed by brentp/intintmap (an int64->int64 open
// addressing map) rather than a Go map, following the Design Note "Raw
// pointer graphs ⇒ arena with integer indices": an agent's id already is its
// arena index, so a specialised int->int map is a better fit than a
// map[int64]int64.
type location int64

const (
	locPending location = iota
	locOwned
	locRemoved
)

// Stager is the EntityStager. The zero value is not usable; construct with
// New.
type Stager struct {
	mu       sync.Mutex
	pending  pendingHeap
	removed  map[int]/*workerID*/ []Staged
	tracking *intintmap.IntIntMap
}

// New constructs an empty Stager.
func New() *Stager {
	s := &Stager{
		removed:  make(map[int][]Staged),
		tracking: intintmap.New(1024, 0.65),
	}
	heap.Init(&s.pending)
	return s
}

// Schedule inserts agent into the priority queue, keyed ascending by
// StartTimeMs. Safe for concurrent callers, since scheduling may be
// performed by arbitrary existing agents during their own frame_tick.
func (s *Stager) Schedule(a Staged) {
	s.mu.Lock()
	defer s.mu.Unlock()
	heap.Push(&s.pending, &pendingItem{agent: a})
	s.tracking.Put(a.ID(), int64(locPending))
}

// StageUpTo pops every agent with StartTimeMs <= tMs (ascending, ties broken
// by id) and invokes callback for each. Intended to be called by the
// WorkGroup coordinator at the top of each tick, during the Flip phase.
func (s *Stager) StageUpTo(tMs int64, callback func(Staged)) {
	s.mu.Lock()
	var staged []Staged
	for s.pending.Len() > 0 && s.pending[0].agent.StartTimeMs() <= tMs {
		item := heap.Pop(&s.pending).(*pendingItem)
		s.tracking.Put(item.agent.ID(), int64(locOwned))
		staged = append(staged, item.agent)
	}
	s.mu.Unlock()

	for _, a := range staged {
		callback(a)
	}
}

// MarkForRemoval appends agent to workerID's removal bucket. Called by a
// Worker during its Tick phase when a Role returns Done.
func (s *Stager) MarkForRemoval(a Staged, workerID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed[workerID] = append(s.removed[workerID], a)
	s.tracking.Put(a.ID(), int64(locRemoved))
}

// CollectRemoved returns and clears workerID's removal bucket. Called once
// per tick, during the Flip phase.
func (s *Stager) CollectRemoved(workerID int) []Staged {
	s.mu.Lock()
	defer s.mu.Unlock()
	got := s.removed[workerID]
	delete(s.removed, workerID)
	return got
}

// PendingLen reports how many agents are currently waiting to be staged.
func (s *Stager) PendingLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

// Location reports which of pending/owned/removed an agent id is currently
// tracked under. ok is false if the id was never scheduled.
func (s *Stager) Location(id int64) (loc string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, found := s.tracking.Get(id)
	if !found {
		return "", false
	}
	switch location(v) {
	case locPending:
		return "pending", true
	case locOwned:
		return "owned", true
	case locRemoved:
		return "removed", true
	default:
		return "", false
	}
}
