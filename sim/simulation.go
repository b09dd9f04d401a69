// Package sim wires the engine packages (workgroup, stager, spatialindex,
// message, network, tripchain) and the ambient stack (config, output,
// store) into a runnable Simulation context. There are no global
// registries: every collaborator is constructed once and held by the
// Simulation value returned from New, mirroring the teacher's own
// Config.New()-returns-a-*Server pattern (server/conf.go) rather than
// package-level state.
package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/simobility/shortterm/engine/agent"
	"github.com/simobility/shortterm/engine/message"
	"github.com/simobility/shortterm/engine/network"
	"github.com/simobility/shortterm/engine/tripchain"
	"github.com/simobility/shortterm/engine/workgroup"
	"github.com/simobility/shortterm/roleplugin"
	"github.com/simobility/shortterm/sim/config"
	"github.com/simobility/shortterm/sim/output"
	"github.com/simobility/shortterm/sim/store"
)

// Simulation is the top-level engine context for one scenario run.
type Simulation struct {
	log *slog.Logger

	net   network.Network
	bus   *message.Bus
	wg    *workgroup.WorkGroup
	out   *output.Writer
	store *store.Store

	cfg       *config.Scenario
	plugins   *roleplugin.Manager[*Simulation, *config.Scenario]
	startTime time.Time

	tickMs int64
	nowMs  int64
}

// New constructs a Simulation from cfg, scheduling every configured agent
// as a Traveler over net. out and st may be nil (no output recording /
// no persisted agent store, respectively).
func New(log *slog.Logger, cfg *config.Scenario, net network.Network, out *output.Writer, st *store.Store) (*Simulation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sim: %w: nil scenario", ErrConfiguration)
	}
	if net == nil {
		return nil, fmt.Errorf("sim: %w: nil network", ErrConfiguration)
	}
	if log == nil {
		log = slog.Default()
	}

	bus := message.NewBus()
	wg := workgroup.New(workgroup.Config{
		Logger:     log,
		NumWorkers: cfg.Engine.NumWorkers,
		Bus:        bus,
		CellSize:   cfg.Engine.CellSizeM,
		Now:        nil, // Simulation drives its own clock via Step, not WorkGroup.Run
	})

	s := &Simulation{
		log:       log,
		net:       net,
		bus:       bus,
		wg:        wg,
		out:       out,
		store:     st,
		cfg:       cfg,
		startTime: time.Now(),
		tickMs:    cfg.Engine.TickMs,
	}
	s.plugins = roleplugin.NewManager[*Simulation, *config.Scenario](s, cfg.RolePlugins)
	if s.plugins.Enabled() {
		s.plugins.LoadConfigured()
	}

	for _, ac := range cfg.Agents {
		if err := s.scheduleFromConfig(ac); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Instance implements roleplugin.Host.
func (s *Simulation) Instance() *Simulation { return s }

// Config implements roleplugin.Host, returning the scenario this
// Simulation was constructed from.
func (s *Simulation) Config() *config.Scenario { return s.cfg }

// Logger implements roleplugin.Host.
func (s *Simulation) Logger() *slog.Logger { return s.log }

// StartTime reports when this Simulation was constructed.
func (s *Simulation) StartTime() time.Time { return s.startTime }

// PluginsEnabled reports whether the roleplugin subsystem is active.
func (s *Simulation) PluginsEnabled() bool { return s.plugins.Enabled() }

// Plugins returns metadata for all loaded role plugins.
func (s *Simulation) Plugins() []roleplugin.Info { return s.plugins.Infos() }

// EnablePlugin loads and enables a role plugin by .so file path.
func (s *Simulation) EnablePlugin(path string) (roleplugin.Info, error) { return s.plugins.Enable(path) }

// DisablePlugin disables a role plugin by name.
func (s *Simulation) DisablePlugin(name string) (roleplugin.Info, error) {
	return s.plugins.Disable(name)
}

// ReloadPlugin reloads a role plugin by name.
func (s *Simulation) ReloadPlugin(name string) (roleplugin.Info, error) {
	return s.plugins.Reload(name)
}

func (s *Simulation) scheduleFromConfig(ac config.AgentConfig) error {
	startPos, ok := s.segmentStartPos(ac.StartSegmentID, ac.SegmentStartOffset)
	if !ok {
		return fmt.Errorf("sim: agent %d: %w: segment %d", ac.ID, ErrPathNotFound, ac.StartSegmentID)
	}

	a := agent.New(ac.ID, ac.StartTimeMs, false, startPos, s.wg.Phase())
	a.ExternalDBID = uuid.New()

	chain := buildChain(ac.TripChain)
	role := NewTraveler(s.log, ac.ID, a, a.Position, chain, s.net, ac.InitialSpeed, s.tickMs, s.out)
	a.SetRole(role)

	s.wg.ScheduleEntity(a)

	if s.store != nil {
		rec := store.AgentRecord{
			StartTimeMs:        ac.StartTimeMs,
			StartSegmentID:     ac.StartSegmentID,
			StartLaneIndex:     ac.StartLaneIndex,
			SegmentStartOffset: ac.SegmentStartOffset,
			InitialSpeed:       ac.InitialSpeed,
		}
		if err := s.store.Put(a.ExternalDBID, rec); err != nil {
			s.log.Warn("sim: failed to persist agent record", "agent", ac.ID, "err", err)
		}
	}
	return nil
}

func (s *Simulation) segmentStartPos(segmentID int64, offset float64) (mgl64.Vec2, bool) {
	seg, ok := s.net.Segment(network.SegmentID(segmentID))
	if !ok {
		return mgl64.Vec2{}, false
	}
	start, ok := s.net.Node(seg.Start)
	if !ok {
		return mgl64.Vec2{}, false
	}
	end, ok := s.net.Node(seg.End)
	if !ok {
		return mgl64.Vec2{}, false
	}
	if seg.LengthM <= 0 {
		return start.Pos, true
	}
	frac := offset / seg.LengthM
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return start.Pos.Add(end.Pos.Sub(start.Pos).Mul(frac)), true
}

func buildChain(items []config.TripItem) *tripchain.Chain {
	var out []tripchain.Item
	for _, it := range items {
		switch it.Kind {
		case "activity":
			out = append(out, tripchain.Item{
				Kind: tripchain.ItemActivity,
				Activity: tripchain.Activity{
					Description: it.Description,
					LocationID:  it.LocationID,
					StartTimeMs: it.StartTimeMs,
					EndTimeMs:   it.EndTimeMs,
				},
			})
		default:
			out = append(out, tripchain.Item{
				Kind: tripchain.ItemTrip,
				Trip: tripchain.Trip{
					OriginID: it.OriginID,
					DestID:   it.DestID,
					SubTrips: []tripchain.SubTrip{{
						Mode:     it.Mode,
						OriginID: it.OriginID,
						DestID:   it.DestID,
					}},
				},
			})
		}
	}
	return tripchain.New(out)
}

// Step advances the simulation by exactly one macro-step.
func (s *Simulation) Step() {
	s.wg.Step(s.nowMs)
	s.nowMs += s.tickMs
}

// NowMs reports the absolute simulation clock, in ms.
func (s *Simulation) NowMs() int64 { return s.nowMs }

// WorkGroup exposes the underlying coordinator, e.g. for SetLinkAffinity or
// diagnostics.
func (s *Simulation) WorkGroup() *workgroup.WorkGroup { return s.wg }

// Bus exposes the shared message bus, e.g. so a SignalController or other
// infrastructure Agent can be registered against it directly.
func (s *Simulation) Bus() *message.Bus { return s.bus }

// Close flushes and closes the output writer and agent store, if set.
func (s *Simulation) Close() error {
	if s.plugins != nil {
		s.plugins.Shutdown()
	}
	var firstErr error
	if s.out != nil {
		if err := s.out.Close(); err != nil {
			firstErr = err
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
