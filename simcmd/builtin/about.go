package builtin

import (
	"runtime"
	"runtime/debug"
	"time"

	"github.com/simobility/shortterm/simcmd"
)

type aboutCommand struct {
	host Host
}

func newAboutCommand(host Host) simcmd.Command { return aboutCommand{host: host} }

func (aboutCommand) Name() string        { return "about" }
func (aboutCommand) Description() string { return "Displays build and runtime information." }
func (aboutCommand) Aliases() []string    { return nil }

func (a aboutCommand) Run(_ simcmd.Source, _ []string, o *simcmd.Output) {
	o.Print("SimMobility Short-Term (simobility/shortterm)")

	info, ok := debug.ReadBuildInfo()
	goVersion := runtime.Version()
	if ok && info != nil && info.GoVersion != "" {
		goVersion = info.GoVersion
	}
	o.Printf("Go runtime: %s", goVersion)

	if info != nil {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				o.Printf("Commit: %s", setting.Value)
				break
			}
		}
	}

	if started := a.host.StartTime(); !started.IsZero() {
		o.Printf("Uptime: %s", time.Since(started).Round(time.Second))
	}
	o.Printf("Simulation clock: %dms", a.host.NowMs())
}
