// Package builtin registers the console command set against a running
// Simulation. Adapted from server/cmd/builtin, trimmed to the subset that
// makes sense for a headless traffic simulator (no players/gamemode/kick/
// chat/whitelist commands — those have no analogue here).
package builtin

import (
	"time"

	"github.com/simobility/shortterm/engine/workgroup"
	"github.com/simobility/shortterm/roleplugin"
	"github.com/simobility/shortterm/simcmd"
)

// Host is the subset of *sim.Simulation (plus its roleplugin.Manager, if
// any) the builtin command set needs. Grounded on builtin.serverAdapter.
type Host interface {
	NowMs() int64
	Step()
	WorkGroup() *workgroup.WorkGroup
	StartTime() time.Time
	Close() error

	PluginsEnabled() bool
	Plugins() []roleplugin.Info
	EnablePlugin(path string) (roleplugin.Info, error)
	DisablePlugin(name string) (roleplugin.Info, error)
	ReloadPlugin(name string) (roleplugin.Info, error)
}

// Register registers the full builtin command set against host.
func Register(host Host) {
	simcmd.Register(newAboutCommand(host))
	simcmd.Register(newHelpCommand())
	simcmd.Register(newStatusCommand(host))
	simcmd.Register(newStepCommand(host))
	simcmd.Register(newAgentsCommand(host))
	simcmd.Register(newPluginCommand(host))
	simcmd.Register(newStopCommand(host))
}
