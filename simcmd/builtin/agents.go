package builtin

import "github.com/simobility/shortterm/simcmd"

type agentsCommand struct {
	host Host
}

func newAgentsCommand(host Host) simcmd.Command { return agentsCommand{host: host} }

func (agentsCommand) Name() string        { return "agents" }
func (agentsCommand) Description() string { return "Lists per-worker agent counts." }
func (agentsCommand) Aliases() []string    { return []string{"list"} }

func (a agentsCommand) Run(_ simcmd.Source, _ []string, o *simcmd.Output) {
	wg := a.host.WorkGroup()
	total := 0
	for i := 1; i <= wg.NumWorkers(); i++ {
		n := wg.Worker(i).Len()
		total += n
		o.Printf("Worker %d: %d agents", i, n)
	}
	o.Printf("%d agents currently owned across %d workers.", total, wg.NumWorkers())
}
