package signal

import "github.com/simobility/shortterm/engine/buffered"

// Fixed overhead subtracted from every phase's green-time budget, per spec
// §4.9's green-time derivation: "fixed colors (Amber ≈ 3s, Red all-red ≈
// 1s) are subtracted; the remainder is assigned to Green".
const (
	AmberMs  int64 = 3000
	AllRedMs int64 = 1000
)

// LinkMapping is one incoming-approach→outgoing-approach movement a Phase
// grants the right of way to, with its own ColorSequence and published
// current color.
type LinkMapping struct {
	FromApproachID int64
	ToApproachID   int64
	Sequence       ColorSequence
	currColor      *buffered.Buffered[TrafficColor]
}

// CurrColor returns the buffered current color; readers call Get, the
// owning Phase calls Set during its own Update (which only runs during the
// Tick phase, enforced by the shared *buffered.Phase passed to New).
func (lm *LinkMapping) CurrColor() *buffered.Buffered[TrafficColor] { return lm.currColor }

// CrossingMapping is a pedestrian crossing whose color is driven by the
// same Phase, independently of the link movements (a phase typically has
// at most one crossing per link, but the mapping is a slice to match
// original_source's "kept a container for it just in case").
type CrossingMapping struct {
	CrossingID int64
	Sequence   ColorSequence
	currColor  *buffered.Buffered[TrafficColor]
}

// CurrColor returns the buffered current color for this crossing.
func (cm *CrossingMapping) CurrColor() *buffered.Buffered[TrafficColor] { return cm.currColor }

// Phase is a named segment of a signal cycle: a set of link movements and
// pedestrian crossings, each with a ColorSequence computed from the
// Phase's share of the cycle (percentage) and its offset within the cycle.
type Phase struct {
	Name          string
	percentage    float64
	phaseOffsetMs int64

	links      []*LinkMapping
	crossings  []*CrossingMapping

	clockPhase *buffered.Phase
}

// NewPhase constructs an empty, unconfigured Phase named name. clockPhase
// is the shared buffered.Phase gating every buffered color field this Phase
// owns — normally the same one the owning Agent's Position uses.
func NewPhase(name string, clockPhase *buffered.Phase) *Phase {
	return &Phase{Name: name, clockPhase: clockPhase}
}

// AddLinkMapping registers a link movement. Call before Initialize.
func (p *Phase) AddLinkMapping(fromApproachID, toApproachID int64) *LinkMapping {
	lm := &LinkMapping{
		FromApproachID: fromApproachID,
		ToApproachID:   toApproachID,
		currColor:      buffered.New(Red, p.clockPhase),
	}
	p.links = append(p.links, lm)
	return lm
}

// AddCrossingMapping registers a pedestrian crossing. Call before
// Initialize.
func (p *Phase) AddCrossingMapping(crossingID int64) *CrossingMapping {
	cm := &CrossingMapping{
		CrossingID: crossingID,
		currColor:  buffered.New(Red, p.clockPhase),
	}
	p.crossings = append(p.crossings, cm)
	return cm
}

// Links returns the Phase's link mappings.
func (p *Phase) Links() []*LinkMapping { return p.links }

// Crossings returns the Phase's crossing mappings.
func (p *Phase) Crossings() []*CrossingMapping { return p.crossings }

// SetPercentage sets this Phase's share of the cycle, 0-100.
func (p *Phase) SetPercentage(pct float64) { p.percentage = pct }

// Percentage returns this Phase's configured share of the cycle.
func (p *Phase) Percentage() float64 { return p.percentage }

// SetPhaseOffsetMs sets how far into the cycle this Phase begins.
func (p *Phase) SetPhaseOffsetMs(offsetMs int64) { p.phaseOffsetMs = offsetMs }

// PhaseOffsetMs returns this Phase's configured start offset.
func (p *Phase) PhaseOffsetMs() int64 { return p.phaseOffsetMs }

// PhaseLengthMs derives this Phase's duration from cycleLengthMs and its
// configured percentage.
func (p *Phase) PhaseLengthMs(cycleLengthMs int64) int64 {
	return int64(float64(cycleLengthMs) * p.percentage / 100)
}

// Initialize derives every link's and crossing's ColorSequence from this
// Phase's percentage of cycleLengthMs, per spec §4.9's green-time
// derivation. For link mappings: green = phaseLength - Amber - AllRed (the
// whole remainder). For crossings: that same remainder is split one-third
// Green, two-thirds FlashingGreen, per spec.
func (p *Phase) Initialize(cycleLengthMs int64) error {
	phaseLength := p.PhaseLengthMs(cycleLengthMs)
	remainder := phaseLength - AmberMs - AllRedMs
	if remainder < 0 {
		remainder = 0
	}
	for _, lm := range p.links {
		lm.Sequence = NewColorSequence(
			Segment(Green, remainder),
			Segment(Amber, AmberMs),
			Segment(Red, AllRedMs),
		)
	}
	for _, cm := range p.crossings {
		greenShare := remainder / 3
		flashingShare := remainder - greenShare
		cm.Sequence = NewColorSequence(
			Segment(Green, greenShare),
			Segment(FlashingGreen, flashingShare),
			Segment(Amber, AmberMs),
			Segment(Red, AllRedMs),
		)
	}
	return nil
}

// Update recomputes every link's and crossing's current color from
// currentCycleTimerMs. lapse = currentCycleTimerMs - phaseOffsetMs; if
// lapse < 0 the phase has not started yet this cycle and Update is a
// no-op, matching original_source's Phase::update guard. Must be called
// during the Tick phase (the currColor fields enforce this themselves).
func (p *Phase) Update(currentCycleTimerMs int64) error {
	lapse := currentCycleTimerMs - p.phaseOffsetMs
	if lapse < 0 {
		return nil
	}
	for _, lm := range p.links {
		c, err := lm.Sequence.ComputeColor(lapse)
		if err != nil {
			return err
		}
		lm.currColor.Set(c)
	}
	for _, cm := range p.crossings {
		c, err := cm.Sequence.ComputeColor(lapse)
		if err != nil {
			return err
		}
		cm.currColor.Set(c)
	}
	return nil
}

// TotalGreenMs returns the largest green-time budget (Green-colored
// duration) among this Phase's link mappings, matching
// Phase::computeTotalG's "maximum of the linkFrom(s)" rule.
func (p *Phase) TotalGreenMs() int64 {
	var max int64
	for _, lm := range p.links {
		if g := lm.Sequence.GreenMs(); g > max {
			max = g
		}
	}
	return max
}
