package builtin

import (
	"strconv"

	"github.com/simobility/shortterm/simcmd"
)

type stepCommand struct {
	host Host
}

func newStepCommand(host Host) simcmd.Command { return stepCommand{host: host} }

func (stepCommand) Name() string        { return "step" }
func (stepCommand) Description() string { return "Advances the simulation by one or more macro-steps." }
func (stepCommand) Aliases() []string    { return []string{"tick"} }

func (s stepCommand) Run(_ simcmd.Source, args []string, o *simcmd.Output) {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			o.Errorf("invalid step count: %q", args[0])
			return
		}
		n = v
	}
	for i := 0; i < n; i++ {
		s.host.Step()
	}
	o.Printf("Stepped %d macro-step(s); clock now %dms.", n, s.host.NowMs())
}
