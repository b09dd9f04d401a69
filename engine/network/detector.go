package network

// LoopDetector accumulates per-segment occupancy samples over a signal
// cycle, the data source behind a real engine/signal.DSProvider — grounded
// on dev/Basic/shared/entities/Sensor.hpp's role as the vehicle-occupancy
// sampling point feeding signal degree-of-saturation.
type LoopDetector struct {
	Segment SegmentID
	// CapacityVehPerHour is the segment's saturation flow rate; degree of
	// saturation is occupied volume over this capacity.
	CapacityVehPerHour float64

	occupiedCount int
}

// Sample records one vehicle occupying the detector during the current
// cycle.
func (d *LoopDetector) Sample() {
	d.occupiedCount++
}

// DegreeOfSaturation returns occupiedCount/capacity for the cycle elapsed
// over cycleLengthMs, then resets the counter for the next cycle.
func (d *LoopDetector) DegreeOfSaturation(cycleLengthMs int64) float64 {
	if cycleLengthMs <= 0 || d.CapacityVehPerHour <= 0 {
		d.occupiedCount = 0
		return 0
	}
	hoursPerCycle := float64(cycleLengthMs) / 3_600_000.0
	capacityThisCycle := d.CapacityVehPerHour * hoursPerCycle
	ds := float64(d.occupiedCount) / capacityThisCycle
	d.occupiedCount = 0
	if ds > 1 {
		ds = 1
	}
	return ds
}

// ApproachDetectors implements engine/signal.DSProvider over a fixed,
// ordered set of LoopDetectors — one per SplitPlan choice-set column — and
// a shared cycle length read at sample time.
type ApproachDetectors struct {
	Detectors     []*LoopDetector
	CycleLengthMs func() int64
}

func (a *ApproachDetectors) DegreesOfSaturation() []float64 {
	cycleLenMs := int64(0)
	if a.CycleLengthMs != nil {
		cycleLenMs = a.CycleLengthMs()
	}
	out := make([]float64, len(a.Detectors))
	for i, d := range a.Detectors {
		out[i] = d.DegreeOfSaturation(cycleLenMs)
	}
	return out
}
