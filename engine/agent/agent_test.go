package agent_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simobility/shortterm/engine/agent"
	"github.com/simobility/shortterm/engine/buffered"
)

type stubRole struct {
	subs []agent.Subscription
}

func (s *stubRole) FrameInit(int64) agent.FrameResult   { return agent.Continue }
func (s *stubRole) FrameTick(int64) agent.FrameResult   { return agent.Continue }
func (s *stubRole) FrameOutput(int64)                   {}
func (s *stubRole) SubscriptionList() []agent.Subscription { return s.subs }
func (s *stubRole) OnMessage(agent.MessageKind, any)    {}
func (s *stubRole) OnEvent(string, any, ...any)         {}

func TestAgentSeededDeterministically(t *testing.T) {
	phase := buffered.PhaseTick
	a1 := agent.New(42, 0, false, mgl64.Vec2{}, &phase)
	a2 := agent.New(42, 0, false, mgl64.Vec2{}, &phase)

	for i := 0; i < 10; i++ {
		if a1.RNG().Int63() != a2.RNG().Int63() {
			t.Fatal("agents with the same id must produce identical RNG streams")
		}
	}
}

func TestRoleSwapRetainsPreviousForOneTick(t *testing.T) {
	phase := buffered.PhaseTick
	a := agent.New(1, 0, false, mgl64.Vec2{}, &phase)

	first := &stubRole{}
	a.SetRole(first)
	if a.PreviousRole() != nil {
		t.Fatal("no previous role should exist before the first swap")
	}

	second := &stubRole{}
	a.SetRole(second)
	if a.PreviousRole() != first {
		t.Fatal("previous role must be retained across a swap")
	}
	if a.Role() != second {
		t.Fatal("current role must be the newly installed role")
	}

	a.ClearPreviousRole()
	if a.PreviousRole() != nil {
		t.Fatal("ClearPreviousRole must drop the retained role")
	}
}

func TestMarkToBeRemoved(t *testing.T) {
	phase := buffered.PhaseTick
	a := agent.New(1, 0, false, mgl64.Vec2{}, &phase)
	if a.ToBeRemoved() {
		t.Fatal("new agent must not start as to-be-removed")
	}
	a.MarkToBeRemoved()
	if !a.ToBeRemoved() {
		t.Fatal("MarkToBeRemoved must set the flag")
	}
}
