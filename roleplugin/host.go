package roleplugin

import "log/slog"

// Host exposes the subset of the running Simulation a RoleFactory plugin
// needs: the Simulation value itself (so a plugin can call
// sim.Simulation.Bus()/WorkGroup() etc.), a snapshot of the scenario
// configuration, and a logger. Trimmed from server/plugin.Host, which
// additionally exposed player/world/listener accessors with no traffic-
// simulation analogue.
type Host[S any, C any] interface {
	// Instance returns the running Simulation (or a test double).
	Instance() S
	// Config returns a snapshot of the scenario configuration.
	Config() C
	// Logger returns the logger used for structured diagnostics.
	Logger() *slog.Logger
}
