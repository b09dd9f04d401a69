// Package signal implements the SignalController split-plan state machine
// (spec §4.9): a non-spatial Agent whose Role cycles through Phases,
// publishing per-approach colors, and periodically re-votes its SplitPlan
// from loop-detector degree-of-saturation readings.
//
// It is grounded on original_source's signal subsystem
// (dev/Basic/shared/entities/signal/Phase.cpp,
// dev/Basic/entities/signal/SplitPlan.cpp): the same color/phase/split-plan
// vocabulary and formulas, reworked from C++ iterator/const_cast idioms
// into plain Go values and explicit mutation (per the spec's Open Question
// resolution — see DESIGN.md).
package signal

import "fmt"

// TrafficColor is one of the six colors a ColorSequence may hold.
type TrafficColor uint8

const (
	Red TrafficColor = iota
	Amber
	Green
	FlashingRed
	FlashingAmber
	FlashingGreen
)

func (c TrafficColor) String() string {
	switch c {
	case Red:
		return "Red"
	case Amber:
		return "Amber"
	case Green:
		return "Green"
	case FlashingRed:
		return "FlashingRed"
	case FlashingAmber:
		return "FlashingAmber"
	case FlashingGreen:
		return "FlashingGreen"
	default:
		return fmt.Sprintf("TrafficColor(%d)", uint8(c))
	}
}

// colorDuration is one segment of a ColorSequence.
type colorDuration struct {
	Color      TrafficColor
	DurationMs int64
}

// ColorSequence is an ordered, non-empty list of (color, duration)
// segments that together span one Phase's active window. ComputeColor maps
// an elapsed offset within that window to the segment it falls in.
type ColorSequence struct {
	segments []colorDuration
	total    int64
}

// NewColorSequence builds a ColorSequence from alternating
// (color, durationMs) segments, in order.
func NewColorSequence(segments ...colorDuration) ColorSequence {
	var total int64
	for _, s := range segments {
		total += s.DurationMs
	}
	return ColorSequence{segments: segments, total: total}
}

// Segment constructs one (color, duration) pair for NewColorSequence.
func Segment(c TrafficColor, durationMs int64) colorDuration {
	return colorDuration{Color: c, DurationMs: durationMs}
}

// TotalMs returns the sequence's total span.
func (cs ColorSequence) TotalMs() int64 { return cs.total }

// GreenMs returns the cumulative duration of every Green and FlashingGreen
// segment; Amber and Red segments are not counted.
func (cs ColorSequence) GreenMs() int64 {
	var green int64
	for _, s := range cs.segments {
		if s.Color == Green || s.Color == FlashingGreen {
			green += s.DurationMs
		}
	}
	return green
}

// ErrColorOutOfRange is returned by ComputeColor when lapseMs falls outside
// every segment: a malformed cycle, per spec §4.9's domain-error rule.
type ErrColorOutOfRange struct {
	LapseMs int64
	TotalMs int64
}

func (e ErrColorOutOfRange) Error() string {
	return fmt.Sprintf("signal: lapse %dms outside color sequence span [0,%dms)", e.LapseMs, e.TotalMs)
}

// ComputeColor returns the active color at lapseMs, measured from the start
// of this sequence's window. lapseMs must be in [0, TotalMs()); otherwise
// ErrColorOutOfRange is returned.
func (cs ColorSequence) ComputeColor(lapseMs int64) (TrafficColor, error) {
	if lapseMs < 0 || lapseMs >= cs.total {
		return 0, ErrColorOutOfRange{LapseMs: lapseMs, TotalMs: cs.total}
	}
	var acc int64
	for _, s := range cs.segments {
		acc += s.DurationMs
		if lapseMs < acc {
			return s.Color, nil
		}
	}
	return 0, ErrColorOutOfRange{LapseMs: lapseMs, TotalMs: cs.total}
}
