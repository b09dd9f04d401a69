package signal_test

import (
	"testing"

	"github.com/simobility/shortterm/engine/agent"
	"github.com/simobility/shortterm/engine/signal"
)

type fakeDS struct{ calls int }

func (f *fakeDS) DegreesOfSaturation() []float64 {
	f.calls++
	return []float64{0.9, 0.2}
}

func TestControllerVotesOnceAtCycleWraparound(t *testing.T) {
	sp, ph0, ph1 := twoPhaseSplitPlan()
	// Prime the phases directly (the same percentages/offsets SplitPlan's
	// own initialize() would derive for plan 0's [60,40] row over a 90s
	// cycle), without calling Update first, since Update would also
	// re-derive the cycle length from the sampled DS.
	ph0.SetPercentage(60)
	ph0.SetPhaseOffsetMs(0)
	if err := ph0.Initialize(sp.CycleLengthMs()); err != nil {
		t.Fatalf("ph0.Initialize: %v", err)
	}
	ph1.SetPercentage(40)
	ph1.SetPhaseOffsetMs(54000)
	if err := ph1.Initialize(sp.CycleLengthMs()); err != nil {
		t.Fatalf("ph1.Initialize: %v", err)
	}

	ds := &fakeDS{}
	ctrl := signal.NewController(sp, ds, 10000) // 10s ticks, 90s cycle => 9 ticks/cycle

	if ctrl.FrameInit(0) != agent.Continue {
		t.Fatal("FrameInit must return Continue")
	}

	for i := 0; i < 8; i++ {
		ctrl.FrameTick(int64(i) * 10000)
	}
	if ds.calls != 0 {
		t.Fatalf("DS sampled %d times before wraparound, want 0", ds.calls)
	}

	ctrl.FrameTick(80000) // 9th tick: 80000+10000=90000 >= cycleLengthMs, wraps
	if ds.calls != 1 {
		t.Fatalf("DS sampled %d times at wraparound, want exactly 1", ds.calls)
	}
}
