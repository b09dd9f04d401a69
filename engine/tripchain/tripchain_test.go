package tripchain_test

import (
	"testing"

	"github.com/simobility/shortterm/engine/tripchain"
)

func twoSubTripTrip() tripchain.Item {
	return tripchain.Item{
		Kind: tripchain.ItemTrip,
		Trip: tripchain.Trip{
			OriginID: 1,
			DestID:   3,
			SubTrips: []tripchain.SubTrip{
				{Mode: "Car", OriginID: 1, DestID: 2},
				{Mode: "Car", OriginID: 2, DestID: 3},
			},
		},
	}
}

func TestAdvanceWithinTripThenToNextItem(t *testing.T) {
	chain := tripchain.New([]tripchain.Item{
		twoSubTripTrip(),
		{Kind: tripchain.ItemActivity, Activity: tripchain.Activity{Description: "Work", LocationID: 3}},
	})

	st, ok := chain.CurrentSubTrip()
	if !ok || st.OriginID != 1 {
		t.Fatalf("CurrentSubTrip = %+v, %v, want first sub-trip", st, ok)
	}

	if !chain.Advance() {
		t.Fatal("Advance within trip must succeed")
	}
	st, ok = chain.CurrentSubTrip()
	if !ok || st.OriginID != 2 {
		t.Fatalf("CurrentSubTrip after Advance = %+v, %v, want second sub-trip", st, ok)
	}

	if !chain.Advance() {
		t.Fatal("Advance to next Item must succeed")
	}
	item, ok := chain.CurrentItem()
	if !ok || item.Kind != tripchain.ItemActivity {
		t.Fatalf("CurrentItem = %+v, %v, want Activity", item, ok)
	}

	if chain.Advance() {
		t.Fatal("Advance past the last Item must return false")
	}
	if !chain.AtEnd() {
		t.Fatal("chain must report AtEnd after exhausting all items")
	}
}

func TestSeekClampsOutOfRange(t *testing.T) {
	chain := tripchain.New([]tripchain.Item{twoSubTripTrip()})
	chain.Seek(5, 0)
	if !chain.AtEnd() {
		t.Fatal("Seek past the end must clamp to AtEnd")
	}
}

type stubExpander struct{}

func (stubExpander) Expand(planned tripchain.SubTrip) []tripchain.SubTrip {
	return []tripchain.SubTrip{
		{Mode: "Walk", OriginID: planned.OriginID, DestID: -1},
		{Mode: "Bus", OriginID: -1, DestID: planned.DestID},
	}
}

func TestExpandCurrentTripRebuildsSubTrips(t *testing.T) {
	chain := tripchain.New([]tripchain.Item{
		{Kind: tripchain.ItemTrip, Trip: tripchain.Trip{SubTrips: []tripchain.SubTrip{{Mode: "PublicBus", OriginID: 1, DestID: 2}}}},
	})

	if !chain.ExpandCurrentTrip(stubExpander{}) {
		t.Fatal("ExpandCurrentTrip must succeed on a Trip item")
	}
	item, _ := chain.CurrentItem()
	if len(item.Trip.SubTrips) != 2 {
		t.Fatalf("expanded SubTrips = %v, want 2", item.Trip.SubTrips)
	}
	if item.Trip.SubTrips[0].Mode != "Walk" || item.Trip.SubTrips[1].Mode != "Bus" {
		t.Fatalf("expanded SubTrips = %+v, want Walk then Bus", item.Trip.SubTrips)
	}
}
