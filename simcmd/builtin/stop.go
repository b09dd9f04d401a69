package builtin

import "github.com/simobility/shortterm/simcmd"

type stopCommand struct {
	host Host
}

func newStopCommand(host Host) simcmd.Command { return stopCommand{host: host} }

func (stopCommand) Name() string        { return "stop" }
func (stopCommand) Description() string { return "Stops the simulation, flushing output and storage." }
func (stopCommand) Aliases() []string    { return []string{"quit", "exit"} }

func (s stopCommand) Run(_ simcmd.Source, _ []string, o *simcmd.Output) {
	o.Print("Stopping simulation...")
	if err := s.host.Close(); err != nil {
		o.Error(err)
	}
}
