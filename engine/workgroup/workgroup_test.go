package workgroup_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simobility/shortterm/engine/agent"
	"github.com/simobility/shortterm/engine/buffered"
	"github.com/simobility/shortterm/engine/workgroup"
)

type stubRole struct{ ticks int }

func (s *stubRole) FrameInit(int64) agent.FrameResult           { return agent.Continue }
func (s *stubRole) FrameTick(int64) agent.FrameResult           { s.ticks++; return agent.Continue }
func (s *stubRole) FrameOutput(int64)                           {}
func (s *stubRole) SubscriptionList() []agent.Subscription      { return nil }
func (s *stubRole) OnMessage(agent.MessageKind, any)            {}
func (s *stubRole) OnEvent(string, any, ...any)                 {}

func newAgent(id, startMs int64) *agent.Agent {
	phase := buffered.PhaseTick
	a := agent.New(id, startMs, false, mgl64.Vec2{}, &phase)
	a.SetRole(&stubRole{})
	return a
}

func TestScheduleEntityAssignsRoundRobin(t *testing.T) {
	wg := workgroup.New(workgroup.Config{NumWorkers: 2, CellSize: 10, Now: func() int64 { return 0 }})

	a1 := newAgent(1, 0)
	a2 := newAgent(2, 0)
	wg.ScheduleEntity(a1)
	wg.ScheduleEntity(a2)

	wg.Step(0)

	w1, w2 := wg.Worker(1), wg.Worker(2)
	if w1.Len()+w2.Len() != 2 {
		t.Fatalf("total owned = %d, want 2", w1.Len()+w2.Len())
	}
	if w1.Len() != 1 || w2.Len() != 1 {
		t.Fatalf("round-robin assignment uneven: worker1=%d worker2=%d", w1.Len(), w2.Len())
	}
}

func TestScheduleEntityDeferredUntilStartTime(t *testing.T) {
	wg := workgroup.New(workgroup.Config{NumWorkers: 1, CellSize: 10, Now: func() int64 { return 0 }})

	late := newAgent(1, 5000)
	wg.ScheduleEntity(late)

	wg.Step(1000)
	if wg.Worker(1).Len() != 0 {
		t.Fatalf("agent staged before its start time: Len = %d", wg.Worker(1).Len())
	}

	wg.Step(5000)
	if wg.Worker(1).Len() != 1 {
		t.Fatalf("agent not staged at its start time: Len = %d", wg.Worker(1).Len())
	}
}
