package buffered_test

import (
	"testing"

	"github.com/simobility/shortterm/engine/barrier"
	"github.com/simobility/shortterm/engine/buffered"
)

func TestGetReturnsCurrentUntilFlip(t *testing.T) {
	phase := buffered.PhaseTick
	b := buffered.New(1, &phase)

	b.Set(2)
	if got := b.Get(); got != 1 {
		t.Fatalf("Get() = %d, want 1 (unflipped write must stay invisible)", got)
	}

	phase = buffered.PhaseFlip
	b.Flip()
	if got := b.Get(); got != 2 {
		t.Fatalf("Get() after Flip = %d, want 2", got)
	}
}

func TestFlipIsNoopWhenNotDirty(t *testing.T) {
	phase := buffered.PhaseFlip
	b := buffered.New("hello", &phase)
	b.Flip()
	if got := b.Get(); got != "hello" {
		t.Fatalf("Get() = %q, want unchanged %q", got, "hello")
	}
}

func TestSetOutsideTickPanics(t *testing.T) {
	phase := buffered.PhaseFlip
	b := buffered.New(0, &phase)

	ok := barrier.Run(func() {
		b.Set(5)
	})
	if ok {
		t.Fatal("Set outside Tick phase should trip the precondition guard")
	}
	if got := b.Get(); got != 0 {
		t.Fatalf("Get() = %d, want unchanged 0 after rejected Set", got)
	}
}

func TestNilPhaseAlwaysAllowsSet(t *testing.T) {
	b := buffered.New(0, nil)
	b.Set(7)
	b.Flip()
	if got := b.Get(); got != 7 {
		t.Fatalf("Get() = %d, want 7", got)
	}
}
