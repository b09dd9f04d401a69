package builtin_test

import (
	"testing"
	"time"

	"github.com/simobility/shortterm/engine/workgroup"
	"github.com/simobility/shortterm/roleplugin"
	"github.com/simobility/shortterm/simcmd"
	"github.com/simobility/shortterm/simcmd/builtin"
)

type fakeHost struct {
	wg        *workgroup.WorkGroup
	nowMs     int64
	steps     int
	startTime time.Time
	closed    bool
}

func (h *fakeHost) NowMs() int64                     { return h.nowMs }
func (h *fakeHost) Step()                            { h.steps++; h.nowMs += 100 }
func (h *fakeHost) WorkGroup() *workgroup.WorkGroup  { return h.wg }
func (h *fakeHost) StartTime() time.Time             { return h.startTime }
func (h *fakeHost) Close() error                     { h.closed = true; return nil }
func (h *fakeHost) PluginsEnabled() bool              { return false }
func (h *fakeHost) Plugins() []roleplugin.Info        { return nil }
func (h *fakeHost) EnablePlugin(string) (roleplugin.Info, error) {
	return roleplugin.Info{}, roleplugin.ErrDisabled
}
func (h *fakeHost) DisablePlugin(string) (roleplugin.Info, error) {
	return roleplugin.Info{}, roleplugin.ErrDisabled
}
func (h *fakeHost) ReloadPlugin(string) (roleplugin.Info, error) {
	return roleplugin.Info{}, roleplugin.ErrDisabled
}

type testSource struct{}

func (testSource) Name() string { return "test" }

func TestStepCommandAdvancesClock(t *testing.T) {
	host := &fakeHost{wg: workgroup.New(workgroup.Config{NumWorkers: 1}), startTime: time.Now()}
	builtin.Register(host)

	out := &simcmd.Output{}
	simcmd.ExecuteLine(testSource{}, "/step 3", out)

	if host.steps != 3 {
		t.Fatalf("steps = %d, want 3", host.steps)
	}
	if host.nowMs != 300 {
		t.Fatalf("nowMs = %d, want 300", host.nowMs)
	}
	if len(out.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", out.Errors())
	}
}

func TestPluginCommandReportsDisabled(t *testing.T) {
	host := &fakeHost{wg: workgroup.New(workgroup.Config{NumWorkers: 1})}
	builtin.Register(host)

	out := &simcmd.Output{}
	simcmd.ExecuteLine(testSource{}, "/plugin list", out)
	if len(out.Errors()) != 1 {
		t.Fatalf("expected plugin subsystem disabled error, got %v", out.Errors())
	}
}

func TestStopCommandClosesHost(t *testing.T) {
	host := &fakeHost{wg: workgroup.New(workgroup.Config{NumWorkers: 1})}
	builtin.Register(host)

	out := &simcmd.Output{}
	simcmd.ExecuteLine(testSource{}, "/stop", out)
	if !host.closed {
		t.Fatal("stop command did not close the host")
	}
}
