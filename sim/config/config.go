// Package config loads scenario and engine configuration from TOML,
// grounded on the teacher's own use of go-toml for its whitelist file
// (server/whitelist.go) rather than the original source's XML config
// loader (XML parsing is out of scope). A scenario file describes the
// engine's fixed parameters (tick length, worker count, cell size) and the
// population of agents to schedule at startup.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/simobility/shortterm/roleplugin"
)

// TripItem is one entry in an agent's trip chain, TOML-decoded. Kind is
// "trip" or "activity"; the irrelevant fields for the other kind are left
// zero.
type TripItem struct {
	Kind string `toml:"kind"`

	// Trip fields.
	OriginID int64  `toml:"originId"`
	DestID   int64  `toml:"destId"`
	Mode     string `toml:"mode"`

	// Activity fields.
	Description string `toml:"description"`
	LocationID  int64  `toml:"locationId"`
	StartTimeMs int64  `toml:"startTimeMs"`
	EndTimeMs   int64  `toml:"endTimeMs"`
}

// AgentConfig is one scheduled agent, TOML-decoded from the scenario's
// [[agents]] array of tables. Mirrors §6's "per-agent keys": startTime,
// startSegmentId, startLaneIndex, segmentStartOffset, initialSpeed, plus
// the trip-chain items.
type AgentConfig struct {
	ID                 int64      `toml:"id"`
	StartTimeMs        int64      `toml:"startTime"`
	StartSegmentID     int64      `toml:"startSegmentId"`
	StartLaneIndex     int        `toml:"startLaneIndex"`
	SegmentStartOffset float64    `toml:"segmentStartOffset"`
	InitialSpeed       float64    `toml:"initialSpeed"`
	TripChain          []TripItem `toml:"tripChain"`
}

// EngineConfig is the fixed, scenario-wide engine parameterization.
type EngineConfig struct {
	TickMs     int64   `toml:"tickMs"`
	NumWorkers int     `toml:"numWorkers"`
	CellSizeM  float64 `toml:"cellSizeM"`
	OutputPath string  `toml:"outputPath"`
	OutputGzip bool    `toml:"outputGzip"`
	StorePath  string  `toml:"storePath"`
}

// Scenario is the full TOML-decoded configuration document.
type Scenario struct {
	Engine      EngineConfig      `toml:"engine"`
	RolePlugins roleplugin.Config `toml:"rolePlugins"`
	Agents      []AgentConfig     `toml:"agents"`
}

// Load reads and decodes a scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var s Scenario
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if s.Engine.TickMs <= 0 {
		s.Engine.TickMs = 100
	}
	if s.Engine.NumWorkers <= 0 {
		s.Engine.NumWorkers = 1
	}
	if s.Engine.CellSizeM <= 0 {
		s.Engine.CellSizeM = 50
	}
	return &s, nil
}

// Default returns a demo Scenario with 1000ms ticks, 2 workers and 50m cells
// (Load's fallbacks for an incomplete file are 100ms, 1 worker and 50m),
// and a single demo agent timed to enter
// the bundled straight-line network cmd/simmobility builds when run
// without a scenario file, mirroring DefaultConfig (server/conf.go).
func Default() *Scenario {
	return &Scenario{
		Engine: EngineConfig{
			TickMs:     1000,
			NumWorkers: 2,
			CellSizeM:  50,
		},
		Agents: []AgentConfig{
			{
				ID:           1,
				StartTimeMs:  0,
				InitialSpeed: 12,
				TripChain: []TripItem{
					{Kind: "trip", OriginID: 0, DestID: 1},
				},
			},
		},
	}
}
