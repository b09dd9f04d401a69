package builtin

import (
	"runtime"
	"time"

	"github.com/simobility/shortterm/simcmd"
)

type statusCommand struct {
	host Host
}

func newStatusCommand(host Host) simcmd.Command { return statusCommand{host: host} }

func (statusCommand) Name() string        { return "status" }
func (statusCommand) Description() string { return "Displays simulation performance statistics." }
func (statusCommand) Aliases() []string    { return nil }

func (s statusCommand) Run(_ simcmd.Source, _ []string, o *simcmd.Output) {
	if started := s.host.StartTime(); !started.IsZero() {
		o.Printf("Uptime: %s", time.Since(started).Round(time.Second))
	}
	o.Printf("Simulation clock: %dms", s.host.NowMs())

	wg := s.host.WorkGroup()
	total := 0
	for i := 1; i <= wg.NumWorkers(); i++ {
		n := wg.Worker(i).Len()
		total += n
		o.Printf("Worker %d: %d agents", i, n)
	}
	o.Printf("Agents owned (all workers): %d", total)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	o.Printf("Heap: %.2f MiB used / %.2f MiB reserved", bytesToMiB(mem.HeapAlloc), bytesToMiB(mem.HeapSys))
	o.Printf("Goroutines: %d | GOMAXPROCS: %d | GC cycles: %d", runtime.NumGoroutine(), runtime.GOMAXPROCS(0), mem.NumGC)
}

func bytesToMiB(v uint64) float64 { return float64(v) / (1024 * 1024) }
