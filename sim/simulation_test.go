package sim_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simobility/shortterm/engine/buffered"
	"github.com/simobility/shortterm/engine/network"
	"github.com/simobility/shortterm/engine/signal"
	"github.com/simobility/shortterm/sim"
	"github.com/simobility/shortterm/sim/config"
)

func straightLineNetwork(t *testing.T) (*network.InMemory, network.NodeID, network.NodeID) {
	t.Helper()
	b := network.NewBuilder()
	a := b.AddNode(network.Node{Pos: mgl64.Vec2{0, 0}})
	c := b.AddNode(network.Node{Pos: mgl64.Vec2{100, 0}, Signaled: true})
	link := b.AddLink(network.Link{Start: a, End: c})
	b.AddSegment(network.Segment{Link: link, Start: a, End: c, LengthM: 100, MaxSpeedKPH: 50})

	net, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return net, a, c
}

func TestSimulationStepsTravelerTowardDestination(t *testing.T) {
	net, a, c := straightLineNetwork(t)

	scenario := &config.Scenario{
		Engine: config.EngineConfig{TickMs: 1000, NumWorkers: 1, CellSizeM: 10},
		Agents: []config.AgentConfig{
			{
				ID:             1,
				StartTimeMs:    0,
				StartSegmentID: 0,
				InitialSpeed:   10, // m/s
				TripChain: []config.TripItem{
					{Kind: "trip", OriginID: int64(a), DestID: int64(c)},
				},
			},
		},
	}

	s, err := sim.New(nil, scenario, net, nil, nil)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	defer s.Close()

	s.Step() // stages the agent
	for i := 0; i < 12; i++ {
		s.Step() // 1000ms ticks at 10m/s cover 10m each; 100m needs 10 ticks
	}

	total := 0
	for i := 1; i <= s.WorkGroup().NumWorkers(); i++ {
		total += s.WorkGroup().Worker(i).Len()
	}
	if total != 0 {
		t.Fatalf("traveler should have arrived and retired by now, still owned: %d", total)
	}
}

func TestSimulationRejectsUnknownSegment(t *testing.T) {
	net, _, _ := straightLineNetwork(t)
	scenario := &config.Scenario{
		Engine: config.EngineConfig{TickMs: 1000, NumWorkers: 1, CellSizeM: 10},
		Agents: []config.AgentConfig{{ID: 1, StartSegmentID: 99}},
	}
	if _, err := sim.New(nil, scenario, net, nil, nil); err == nil {
		t.Fatal("sim.New must reject an agent starting on an unknown segment")
	}
}

func TestAttachSignalControllerRequiresSignaledNode(t *testing.T) {
	net, a, _ := straightLineNetwork(t)
	scenario := &config.Scenario{Engine: config.EngineConfig{TickMs: 1000, NumWorkers: 1, CellSizeM: 10}}
	s, err := sim.New(nil, scenario, net, nil, nil)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	defer s.Close()

	clock := buffered.PhaseTick
	ph := signal.NewPhase("A", &clock)
	ph.AddLinkMapping(1, 2)
	cycle := signal.NewCycle(90000, 60000, 120000)
	sp := signal.NewSplitPlan(nil, []*signal.Phase{ph}, [][]float64{{100}}, 0, cycle, 5)
	ctrl := signal.NewController(sp, nil, 1000)

	if err := s.AttachSignalController(a, ctrl, 0); err == nil {
		t.Fatal("AttachSignalController must reject a non-Signaled node")
	}
}
