package stager_test

import (
	"testing"

	"github.com/simobility/shortterm/engine/stager"
)

type fakeAgent struct {
	id    int64
	start int64
}

func (f fakeAgent) ID() int64          { return f.id }
func (f fakeAgent) StartTimeMs() int64 { return f.start }

func TestStageUpToOrdersByStartTimeThenID(t *testing.T) {
	s := stager.New()
	s.Schedule(fakeAgent{id: 3, start: 100})
	s.Schedule(fakeAgent{id: 1, start: 50})
	s.Schedule(fakeAgent{id: 2, start: 50})

	var order []int64
	s.StageUpTo(100, func(a stager.Staged) { order = append(order, a.ID()) })

	want := []int64{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestStageUpToLeavesFutureAgentsPending(t *testing.T) {
	// Scenario 2 from spec §8: deferred start.
	s := stager.New()
	s.Schedule(fakeAgent{id: 1, start: 5000})

	var staged []int64
	s.StageUpTo(4900, func(a stager.Staged) { staged = append(staged, a.ID()) })
	if len(staged) != 0 {
		t.Fatalf("agent staged early: %v", staged)
	}
	if loc, ok := s.Location(1); !ok || loc != "pending" {
		t.Fatalf("Location = %q, %v, want pending", loc, ok)
	}

	s.StageUpTo(5000, func(a stager.Staged) { staged = append(staged, a.ID()) })
	if len(staged) != 1 {
		t.Fatalf("agent not staged at its start time: %v", staged)
	}
	if loc, ok := s.Location(1); !ok || loc != "owned" {
		t.Fatalf("Location = %q, %v, want owned", loc, ok)
	}
}

func TestMarkForRemovalAndCollect(t *testing.T) {
	s := stager.New()
	a := fakeAgent{id: 9, start: 0}
	s.Schedule(a)
	s.StageUpTo(0, func(stager.Staged) {})

	s.MarkForRemoval(a, 2)
	if got := s.CollectRemoved(1); len(got) != 0 {
		t.Fatalf("wrong worker bucket returned entries: %v", got)
	}
	got := s.CollectRemoved(2)
	if len(got) != 1 || got[0].ID() != 9 {
		t.Fatalf("CollectRemoved(2) = %v, want [agent 9]", got)
	}
	if got := s.CollectRemoved(2); len(got) != 0 {
		t.Fatalf("CollectRemoved must clear the bucket: %v", got)
	}
	if loc, ok := s.Location(9); !ok || loc != "removed" {
		t.Fatalf("Location = %q, %v, want removed", loc, ok)
	}
}
