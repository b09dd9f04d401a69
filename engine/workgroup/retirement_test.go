package workgroup_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simobility/shortterm/engine/agent"
	"github.com/simobility/shortterm/engine/buffered"
	"github.com/simobility/shortterm/engine/spatialindex"
	"github.com/simobility/shortterm/engine/workgroup"
)

// doneAtInitRole is Done the very first time it is ticked, modelling an
// agent whose trip chain is already exhausted at arrival.
type doneAtInitRole struct{}

func (doneAtInitRole) FrameInit(int64) agent.FrameResult      { return agent.Done }
func (doneAtInitRole) FrameTick(int64) agent.FrameResult      { return agent.Done }
func (doneAtInitRole) FrameOutput(int64)                      {}
func (doneAtInitRole) SubscriptionList() []agent.Subscription { return nil }
func (doneAtInitRole) OnMessage(agent.MessageKind, any)       {}
func (doneAtInitRole) OnEvent(string, any, ...any)            {}

// TestMassRetirementClearsWorkersAndIndex covers spec §8 scenario 5: many
// agents retiring on the same tick must all leave their Worker's owned set
// and the coordinator's bookkeeping by the end of that Step, with no
// leftover entries surviving into the next macro-step's spatial snapshot.
func TestMassRetirementClearsWorkersAndIndex(t *testing.T) {
	idx := spatialindex.New(10)
	wg := workgroup.New(workgroup.Config{NumWorkers: 3, CellSize: 10, Index: idx, Now: func() int64 { return 0 }})

	const n = 9
	for i := int64(1); i <= n; i++ {
		phase := buffered.PhaseTick
		a := agent.New(i, 0, false, mgl64.Vec2{float64(i), 0}, &phase)
		a.SetRole(doneAtInitRole{})
		wg.ScheduleEntity(a)
	}

	wg.Step(0) // stages all n agents onto their Workers, nothing ticked yet

	total := 0
	for i := 1; i <= wg.NumWorkers(); i++ {
		total += wg.Worker(i).Len()
	}
	if total != n {
		t.Fatalf("after staging, total owned = %d, want %d", total, n)
	}

	wg.Step(0) // FrameInit runs, returns Done for every agent, all retire

	total = 0
	for i := 1; i <= wg.NumWorkers(); i++ {
		total += wg.Worker(i).Len()
	}
	if total != 0 {
		t.Fatalf("after mass retirement, total owned = %d, want 0", total)
	}
	if idx.Len() != 0 {
		t.Fatalf("after mass retirement, spatial index holds %d entries, want 0", idx.Len())
	}
}
