package signal_test

import (
	"testing"

	"github.com/simobility/shortterm/engine/buffered"
	"github.com/simobility/shortterm/engine/signal"
)

func twoPhaseSplitPlan() (*signal.SplitPlan, *signal.Phase, *signal.Phase) {
	clock := buffered.PhaseTick
	ph0 := signal.NewPhase("A", &clock)
	ph0.AddLinkMapping(1, 2)
	ph1 := signal.NewPhase("B", &clock)
	ph1.AddLinkMapping(3, 4)

	choiceSet := [][]float64{
		{60, 40}, // plan 0: current
		{40, 60}, // plan 1: alternative
	}
	cycle := signal.NewCycle(90000, 60000, 120000)
	sp := signal.NewSplitPlan(nil, []*signal.Phase{ph0, ph1}, choiceSet, 0, cycle, 5)
	return sp, ph0, ph1
}

func TestSplitPlanEndOfCycleVoteScenario(t *testing.T) {
	// Scenario 4 from spec §8: cycle 90s, choice set of two plans, current
	// plan [60,40], alternative [40,60], DS = [0.9, 0.2]. Current must win.
	sp, _, _ := twoPhaseSplitPlan()

	if err := sp.Update([]float64{0.9, 0.2}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := sp.CurrSplitPlanID(); got != 0 {
		t.Fatalf("CurrSplitPlanID = %d, want 0 (current plan should win the vote)", got)
	}
}

func TestSplitPlanAlternativeWinsWhenBetter(t *testing.T) {
	sp, _, _ := twoPhaseSplitPlan()

	// DS so skewed toward phase B that the alternative's larger phase-B
	// share yields a lower maxProjDS.
	for i := 0; i < 5; i++ {
		if err := sp.Update([]float64{0.1, 0.9}); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	if got := sp.CurrSplitPlanID(); got != 1 {
		t.Fatalf("CurrSplitPlanID = %d, want 1 (alternative should win after repeated votes)", got)
	}
}

func TestSplitPlanEmptyChoiceSetDoesNotCrash(t *testing.T) {
	clock := buffered.PhaseTick
	ph := signal.NewPhase("A", &clock)
	ph.AddLinkMapping(1, 2)
	cycle := signal.NewCycle(90000, 60000, 120000)
	sp := signal.NewSplitPlan(nil, []*signal.Phase{ph}, nil, 0, cycle, 5)

	if err := sp.Update([]float64{0.5}); err != nil {
		t.Fatalf("Update with empty choice set must not error: %v", err)
	}
	if got := sp.CurrSplitPlanID(); got != 0 {
		t.Fatalf("CurrSplitPlanID = %d, want unchanged 0", got)
	}
}

func TestComputeCurrPhaseWalksCumulativeBoundaries(t *testing.T) {
	sp, _, _ := twoPhaseSplitPlan()
	if err := sp.Update([]float64{0.5, 0.5}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	id, err := sp.ComputeCurrPhase(0)
	if err != nil || id != 0 {
		t.Fatalf("ComputeCurrPhase(0) = %d, %v, want phase 0", id, err)
	}

	cycleLen := sp.CycleLengthMs()
	phase0LenMs := int64(float64(cycleLen) * 60 / 100)
	id, err = sp.ComputeCurrPhase(phase0LenMs + 1)
	if err != nil || id != 1 {
		t.Fatalf("ComputeCurrPhase(just after phase 0) = %d, %v, want phase 1", id, err)
	}
}
