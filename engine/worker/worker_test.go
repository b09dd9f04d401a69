package worker_test

import (
	"context"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simobility/shortterm/engine/agent"
	"github.com/simobility/shortterm/engine/buffered"
	"github.com/simobility/shortterm/engine/message"
	"github.com/simobility/shortterm/engine/worker"
)

type countingRole struct {
	mu          sync.Mutex
	ticks       int
	initialized bool
	done        bool
	received    []message.Kind
}

func (r *countingRole) FrameInit(int64) agent.FrameResult {
	r.initialized = true
	return agent.Continue
}
func (r *countingRole) FrameTick(int64) agent.FrameResult {
	r.ticks++
	if r.done {
		return agent.Done
	}
	return agent.Continue
}
func (r *countingRole) FrameOutput(int64)                      {}
func (r *countingRole) SubscriptionList() []agent.Subscription { return nil }
func (r *countingRole) OnMessage(kind message.Kind, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, kind)
}
func (r *countingRole) OnEvent(string, any, ...any) {}

func TestRunTickCallsFrameInitOnceThenFrameTick(t *testing.T) {
	w := worker.New(worker.Config{ID: 1, Bus: message.NewBus()})

	phase := buffered.PhaseTick
	a := agent.New(1, 0, false, mgl64.Vec2{}, &phase)
	role := &countingRole{}
	a.SetRole(role)
	w.Enqueue(a)
	w.ApplyPending()

	ctx := context.Background()
	w.RunTick(ctx, 0)
	if !role.initialized {
		t.Fatal("FrameInit must run before FrameTick")
	}
	if role.ticks != 1 {
		t.Fatalf("ticks = %d, want 1 (FrameInit tick should not also count as FrameTick)", role.ticks)
	}

	w.RunTick(ctx, 1000)
	if role.ticks != 2 {
		t.Fatalf("ticks = %d, want 2 after second RunTick", role.ticks)
	}
}

func TestRunTickRetiresDoneAgentAtApplyPending(t *testing.T) {
	w := worker.New(worker.Config{ID: 1, Bus: message.NewBus()})

	phase := buffered.PhaseTick
	a := agent.New(1, 0, false, mgl64.Vec2{}, &phase)
	role := &countingRole{done: true}
	a.SetRole(role)
	w.Enqueue(a)
	w.ApplyPending()
	if w.Len() != 1 {
		t.Fatalf("Len = %d, want 1 before retirement", w.Len())
	}

	w.RunTick(context.Background(), 0)
	if !a.ToBeRemoved() {
		t.Fatal("agent whose Role returns Done from FrameTick must be marked to-be-removed")
	}
	if w.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (removal deferred to ApplyPending)", w.Len())
	}

	w.ApplyPending()
	if w.Len() != 0 {
		t.Fatalf("Len = %d, want 0 after ApplyPending", w.Len())
	}
}

func TestMessageDeliveredNoEarlierThanNextTick(t *testing.T) {
	bus := message.NewBus()
	w := worker.New(worker.Config{ID: 1, Bus: bus})

	phase := buffered.PhaseTick
	a := agent.New(7, 0, false, mgl64.Vec2{}, &phase)
	role := &countingRole{}
	a.SetRole(role)
	w.Enqueue(a)
	w.ApplyPending()

	_ = bus.Send(message.Ref(7), message.Envelope{Kind: message.WaitingPersonArrival, SentTick: 0})

	w.RunTick(context.Background(), 0)
	if len(role.received) != 0 {
		t.Fatalf("message delivered same tick it was sent: %v", role.received)
	}

	bus.Advance()
	w.RunTick(context.Background(), 1000)
	if len(role.received) != 1 || role.received[0] != message.WaitingPersonArrival {
		t.Fatalf("received = %v, want one WaitingPersonArrival after Advance", role.received)
	}
}
