// Command simmobility loads a scenario, runs the simulation engine, and
// attaches an interactive console, mirroring the construct-then-run shape
// of examples/plugins/demo/demo.go (construct, log, register, loop) at the
// scale of a whole process rather than a single plugin.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simobility/shortterm/engine/network"
	trafficsignal "github.com/simobility/shortterm/engine/signal"
	"github.com/simobility/shortterm/sim"
	"github.com/simobility/shortterm/sim/config"
	"github.com/simobility/shortterm/sim/output"
	"github.com/simobility/shortterm/sim/store"

	"github.com/simobility/shortterm/simcmd/builtin"

	"github.com/simobility/shortterm/console"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a scenario TOML file (bundled demo network used if empty)")
	interactive := flag.Bool("console", true, "attach an interactive console on stdin")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	cfg, net, err := loadScenario(*scenarioPath, log)
	if err != nil {
		log.Error("simmobility: failed to load scenario", "err", err)
		os.Exit(1)
	}
	usingDemo := *scenarioPath == ""

	var out *output.Writer
	if cfg.Engine.OutputPath != "" {
		out, err = output.Open(cfg.Engine.OutputPath, cfg.Engine.OutputGzip)
		if err != nil {
			log.Error("simmobility: failed to open output", "err", err)
			os.Exit(1)
		}
	}

	var st *store.Store
	if cfg.Engine.StorePath != "" {
		st, err = store.Open(cfg.Engine.StorePath)
		if err != nil {
			log.Error("simmobility: failed to open agent store", "err", err)
			os.Exit(1)
		}
	}

	s, err := sim.New(log, cfg, net, out, st)
	if err != nil {
		log.Error("simmobility: failed to construct simulation", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Error("simmobility: close failed", "err", err)
		}
	}()

	if usingDemo {
		if err := attachDemoSignal(s, network.NodeID(1), 0); err != nil {
			log.Error("simmobility: failed to attach demo signal controller", "err", err)
			os.Exit(1)
		}
	}

	builtin.Register(s)
	log.Info("simmobility: ready",
		"tickMs", cfg.Engine.TickMs,
		"numWorkers", cfg.Engine.NumWorkers,
		"agents", len(cfg.Agents),
		"pluginsEnabled", s.PluginsEnabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *interactive {
		runWithConsole(ctx, s, log, cfg.Engine.TickMs)
		return
	}
	runHeadless(ctx, s, cfg.Engine.TickMs)
}

// runWithConsole drives the simulation clock from a background ticker
// while an interactive console (the same command surface runHeadless's
// operator would otherwise have no way to reach) reads from stdin.
func runWithConsole(ctx context.Context, s *sim.Simulation, log *slog.Logger, tickMs int64) {
	go runHeadless(ctx, s, tickMs)

	c := console.New(log)
	c.Run(ctx)
}

func runHeadless(ctx context.Context, s *sim.Simulation, tickMs int64) {
	ticker := time.NewTicker(time.Duration(tickMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// loadScenario reads path via config.Load, or falls back to a bundled
// straight-line demo network and config.Default when path is empty —
// there is no network-file format in scope (AIMSUN/SOCI loading is
// excluded), so a scenario file only ever describes agents and engine
// parameters, never the road network itself.
func loadScenario(path string, log *slog.Logger) (*config.Scenario, network.Network, error) {
	net, err := demoNetwork()
	if err != nil {
		return nil, nil, err
	}

	if path == "" {
		log.Info("simmobility: no -scenario given, using bundled demo network and agent")
		return config.Default(), net, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, net, nil
}

// demoNetwork builds the two-node, one-link, one-segment network the
// bundled demo scenario's agent travels across, with the destination node
// signaled so AttachSignalController has something to exercise.
func demoNetwork() (*network.InMemory, error) {
	b := network.NewBuilder()
	start := b.AddNode(network.Node{Pos: mgl64.Vec2{0, 0}})
	end := b.AddNode(network.Node{Pos: mgl64.Vec2{500, 0}, Signaled: true})
	link := b.AddLink(network.Link{Start: start, End: end})
	b.AddSegment(network.Segment{Link: link, Start: start, End: end, LengthM: 500, MaxSpeedKPH: 50})

	return b.Build()
}

// attachDemoSignal wires a two-phase, fixed split-plan controller onto the
// bundled demo network's signaled end node, run whenever simmobility
// starts without an explicit -scenario file. A real deployment wiring its
// own network would call AttachSignalController the same way, once per
// signaled node, with phases and a choice set derived from its own
// approach data instead of these placeholder link ids.
func attachDemoSignal(s *sim.Simulation, node network.NodeID, startMs int64) error {
	phase1 := trafficsignal.NewPhase("main", s.WorkGroup().Phase())
	phase1.AddLinkMapping(0, 1)
	phase2 := trafficsignal.NewPhase("side", s.WorkGroup().Phase())
	phase2.AddLinkMapping(2, 3)

	cycle := trafficsignal.NewCycle(60000, 40000, 120000)
	choiceSet := [][]float64{{60, 40}, {50, 50}, {40, 60}}
	plan := trafficsignal.NewSplitPlan(s.Logger(), []*trafficsignal.Phase{phase1, phase2}, choiceSet, 0, cycle, 5)
	ctrl := trafficsignal.NewController(plan, nil, 1000)

	return s.AttachSignalController(node, ctrl, startMs)
}
