// Package roleplugin loads behavioral models — car-following, lane-
// changing, route-choice, transit itinerary expansion — as dynamically
// loaded Go plugins (.so files built with `go build -buildmode=plugin`)
// implementing RoleFactory, rather than compiling them into the engine.
// The spec explicitly keeps these models out of scope for the engine
// itself (see engine/agent's Non-goals); roleplugin is the seam a real
// deployment hangs them from.
//
// Adapted from server/plugin's Manager[S, C], trimmed of the handler-
// wrapping machinery (player.Handler/world.Handler/inventory.Handler have
// no traffic-simulation analogue) since a RoleFactory's only job is to
// produce a Role, not subscribe to gameplay event streams.
package roleplugin

import "errors"

// RoleFactory is the constructor signature a plugin .so file must export
// (as one of the symbols InitRole, Init, NewRole, or New) to be loadable.
// The Manager keeps the returned Role under its name (see Manager.Plugin);
// it does not attach it to any Agent.
type RoleFactory[S any, C any] func(api *API[S, C]) (Role, error)

// Role is what a plugin-supplied behavioral model must implement to be
// managed: a name and a Close hook. It is separate from engine/agent.Role,
// which has neither method. Defined locally (rather than importing
// engine/agent) so this package has no hard dependency on the engine's
// scheduling internals — only the contract a plugin needs to satisfy.
type Role interface {
	Name() string
	Close() error
}

// VersionedRole may be implemented by a Role to expose a version string.
type VersionedRole interface {
	Version() string
}

// Info describes a plugin currently loaded by the Manager.
type Info struct {
	Name    string
	Version string
	Path    string
}

var (
	// ErrDisabled is returned when the plugin subsystem is disabled.
	ErrDisabled = errors.New("roleplugin: subsystem disabled")
	// ErrAlreadyLoaded is returned when enabling a plugin already loaded
	// from the same resolved path.
	ErrAlreadyLoaded = errors.New("roleplugin: already loaded")
	// ErrNameConflict is returned when another loaded plugin already uses
	// the same case-insensitive name.
	ErrNameConflict = errors.New("roleplugin: name already registered")
	// ErrNotFound is returned when disabling or reloading a plugin that is
	// not currently loaded.
	ErrNotFound = errors.New("roleplugin: not found")
)
