package signal_test

import (
	"testing"

	"github.com/simobility/shortterm/engine/buffered"
	"github.com/simobility/shortterm/engine/signal"
)

func TestPhaseInitializeDerivesGreenFromPercentage(t *testing.T) {
	phaseClock := buffered.PhaseTick
	ph := signal.NewPhase("NS", &phaseClock)
	lm := ph.AddLinkMapping(1, 2)
	ph.SetPercentage(50) // half of a 90s cycle = 45000ms

	if err := ph.Initialize(90000); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	wantGreen := int64(45000 - signal.AmberMs - signal.AllRedMs)
	if got := lm.Sequence.GreenMs(); got != wantGreen {
		t.Fatalf("GreenMs = %d, want %d", got, wantGreen)
	}
}

func TestPhaseCrossingSplitsGreenOneThirdTwoThirds(t *testing.T) {
	phaseClock := buffered.PhaseTick
	ph := signal.NewPhase("NS", &phaseClock)
	cm := ph.AddCrossingMapping(1)
	ph.SetPercentage(100)

	if err := ph.Initialize(12000); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	remainder := int64(12000 - signal.AmberMs - signal.AllRedMs)
	wantGreen := remainder / 3
	got, err := cm.Sequence.ComputeColor(wantGreen - 1)
	if err != nil || got != signal.Green {
		t.Fatalf("color just before the green/flashing boundary = %v, %v, want Green", got, err)
	}
	got, err = cm.Sequence.ComputeColor(wantGreen + 1)
	if err != nil || got != signal.FlashingGreen {
		t.Fatalf("color just after the green/flashing boundary = %v, %v, want FlashingGreen", got, err)
	}
}

func TestPhaseUpdateSkipsBeforeOffset(t *testing.T) {
	phaseClock := buffered.PhaseTick
	ph := signal.NewPhase("NS", &phaseClock)
	lm := ph.AddLinkMapping(1, 2)
	ph.SetPercentage(100)
	ph.SetPhaseOffsetMs(5000)
	if err := ph.Initialize(20000); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if err := ph.Update(1000); err != nil {
		t.Fatalf("Update before offset: %v", err)
	}
	lm.CurrColor().Flip()
	if got := lm.CurrColor().Get(); got != signal.Red {
		t.Fatalf("color before phase start = %v, want Red (unset default, Update must be a no-op)", got)
	}

	if err := ph.Update(5000); err != nil {
		t.Fatalf("Update at offset: %v", err)
	}
	lm.CurrColor().Flip()
	if got := lm.CurrColor().Get(); got != signal.Green {
		t.Fatalf("color at lapse 0 = %v, want Green", got)
	}
}
