package signal

import (
	"fmt"
	"log/slog"
)

// Cycle derives the next cycle length from the overall degree-of-saturation
// observed over the just-finished cycle. original_source calls
// `cycle_.Update(DS_all)` without the `Cycle` class's body being available
// in the retrieved source (see DESIGN.md's Open Question decision); this is
// the "documented monotone schedule" the spec permits as a substitute:
// cycle length increases linearly with DS_all between MinMs and MaxMs,
// clamped to [0,1] so degenerate DS readings cannot produce an
// out-of-bounds cycle length.
type Cycle struct {
	MinMs, MaxMs int64
	currentMs    int64
}

// NewCycle constructs a Cycle starting at initialMs, clamped to
// [minMs, maxMs].
func NewCycle(initialMs, minMs, maxMs int64) *Cycle {
	c := &Cycle{MinMs: minMs, MaxMs: maxMs, currentMs: initialMs}
	if c.currentMs < minMs {
		c.currentMs = minMs
	}
	if c.currentMs > maxMs {
		c.currentMs = maxMs
	}
	return c
}

// CurrCL returns the current cycle length.
func (c *Cycle) CurrCL() int64 { return c.currentMs }

// Update recomputes the cycle length from dsAll, the maximum degree of
// saturation across all approaches over the just-finished cycle.
func (c *Cycle) Update(dsAll float64) {
	if dsAll < 0 {
		dsAll = 0
	}
	if dsAll > 1 {
		dsAll = 1
	}
	span := c.MaxMs - c.MinMs
	c.currentMs = c.MinMs + int64(float64(span)*dsAll)
}

// ErrEmptyChoiceSet is returned by CurrSplitPlan (and so by
// ComputeCurrPhase) when no alternative plans are configured.
// SplitPlan.Update does not return it: with an empty choice set it logs a
// warning and keeps the current plan.
var ErrEmptyChoiceSet = fmt.Errorf("signal: choice set is empty")

// SplitPlan is a cycle length, an offset, a matrix of alternative per-phase
// percentage allocations (the choice set), and the sliding K-cycle vote
// history used to pick the next active plan. Grounded on
// original_source's SplitPlan class.
type SplitPlan struct {
	log *slog.Logger

	choiceSet [][]float64 // choiceSet[planID][phaseID] = percentage of cycle

	currSplitPlanID int
	nextSplitPlanID int
	currPhaseID     int

	offsetMs int64
	cycle    *Cycle

	phases []*Phase

	votes           [][]int // sliding window, one row per cycle, one column per plan
	numVotingCycles int
}

// NewSplitPlan constructs a SplitPlan over phases, with the given choice
// set (each row must have len(phases) entries), starting at plan 0.
func NewSplitPlan(log *slog.Logger, phases []*Phase, choiceSet [][]float64, offsetMs int64, cycle *Cycle, numVotingCycles int) *SplitPlan {
	if numVotingCycles <= 0 {
		numVotingCycles = 5 // spec §4.9 default K
	}
	return &SplitPlan{
		log:             log,
		choiceSet:       choiceSet,
		offsetMs:        offsetMs,
		cycle:           cycle,
		phases:          phases,
		numVotingCycles: numVotingCycles,
	}
}

// CurrSplitPlanID returns the currently active plan's index.
func (sp *SplitPlan) CurrSplitPlanID() int { return sp.currSplitPlanID }

// CycleLengthMs returns the current cycle length.
func (sp *SplitPlan) CycleLengthMs() int64 { return sp.cycle.CurrCL() }

// OffsetMs returns the configured offset.
func (sp *SplitPlan) OffsetMs() int64 { return sp.offsetMs }

// Phases returns the ordered list of Phases this plan cycles through.
func (sp *SplitPlan) Phases() []*Phase { return sp.phases }

// CurrPhaseID returns the index of the Phase currently active, as last
// computed by ComputeCurrPhase.
func (sp *SplitPlan) CurrPhaseID() int { return sp.currPhaseID }

// CurrPhase returns the Phase currently active.
func (sp *SplitPlan) CurrPhase() *Phase { return sp.phases[sp.currPhaseID] }

// CurrSplitPlan returns the active plan's per-phase percentages.
func (sp *SplitPlan) CurrSplitPlan() ([]float64, error) {
	if len(sp.choiceSet) == 0 {
		return nil, ErrEmptyChoiceSet
	}
	return sp.choiceSet[sp.currSplitPlanID], nil
}

// ComputeCurrPhase determines which Phase is active at currentCycleTimerMs,
// by walking cumulative phaseLength boundaries. It records and returns the
// index; if no phase covers the given timer, it is a runtime-exhaustion
// error per spec §7.
func (sp *SplitPlan) ComputeCurrPhase(currentCycleTimerMs int64) (int, error) {
	choice, err := sp.CurrSplitPlan()
	if err != nil {
		return 0, err
	}
	var sum float64
	for i, pct := range choice {
		sum += float64(sp.CycleLengthMs()) * pct / 100
		if int64(sum) > currentCycleTimerMs {
			sp.currPhaseID = i
			return i, nil
		}
	}
	return 0, fmt.Errorf("signal: no phase matches cycle timer %dms (runtime exhaustion)", currentCycleTimerMs)
}

// calcMaxProjDS computes, for every alternative plan i, the maximum
// (over phases j) of the projected degree of saturation
// DS[j] * choice[current][j] / choice[i][j], per spec §4.9 step 1.
func (sp *SplitPlan) calcMaxProjDS(ds []float64) ([]float64, error) {
	curr, err := sp.CurrSplitPlan()
	if err != nil {
		return nil, err
	}
	maxProj := make([]float64, len(sp.choiceSet))
	for i, plan := range sp.choiceSet {
		var max float64
		for j := range plan {
			if plan[j] == 0 {
				continue
			}
			proj := ds[j] * curr[j] / plan[j]
			if proj > max {
				max = proj
			}
		}
		maxProj[i] = max
	}
	return maxProj, nil
}

// fminID returns the index of the smallest value in vs; ties keep the
// smallest index, per spec §4.9's determinism tie-break rule.
func fminID(vs []float64) int {
	min := 0
	for i := 1; i < len(vs); i++ {
		if vs[i] < vs[min] {
			min = i
		}
	}
	return min
}

// vote records one cycle's winning plan (by lowest maxProjDS) into the
// sliding window, trims the window to numVotingCycles, and returns the
// plan with the highest total vote count, tie-broken by smallest index.
func (sp *SplitPlan) vote(maxProjDS []float64) int {
	row := make([]int, len(sp.choiceSet))
	row[fminID(maxProjDS)]++
	sp.votes = append(sp.votes, row)
	if len(sp.votes) > sp.numVotingCycles {
		sp.votes = sp.votes[1:]
	}
	return sp.maxVoteIndex()
}

func (sp *SplitPlan) maxVoteIndex() int {
	best := -1
	bestTotal := -1
	for plan := 0; plan < len(sp.choiceSet); plan++ {
		total := 0
		for _, row := range sp.votes {
			total += row[plan]
		}
		if total > bestTotal {
			bestTotal = total
			best = plan
		}
	}
	return best
}

// findNextPlanIndex runs steps 1-3 of the end-of-cycle split-plan
// selection and records the result as nextSplitPlanID.
func (sp *SplitPlan) findNextPlanIndex(ds []float64) error {
	maxProjDS, err := sp.calcMaxProjDS(ds)
	if err != nil {
		return err
	}
	sp.nextSplitPlanID = sp.vote(maxProjDS)
	return nil
}

// initialize derives each Phase's percentage and offset from the active
// plan's choice row, then has each Phase rebuild its ColorSequences.
func (sp *SplitPlan) initialize() error {
	choice, err := sp.CurrSplitPlan()
	if err != nil {
		return err
	}
	if len(choice) != len(sp.phases) {
		return fmt.Errorf("signal: choice set row has %d entries, want %d (one per phase)", len(choice), len(sp.phases))
	}
	var percentageSum float64
	for i, ph := range sp.phases {
		ph.SetPercentage(choice[i])
		ph.SetPhaseOffsetMs(int64(percentageSum * float64(sp.CycleLengthMs()) / 100))
		percentageSum += choice[i]
		if err := ph.Initialize(sp.CycleLengthMs()); err != nil {
			return err
		}
	}
	return nil
}

// Update runs the full end-of-cycle split-plan selection (spec §4.9, steps
// 1-5): derives a new cycle length from the overall degree of saturation,
// votes on the next plan, activates it, and rebuilds every Phase's
// percentages, offsets, and color sequences. If the choice set is empty,
// it logs a warning and leaves the current plan and cycle length
// untouched, per the spec's "does not crash" failure semantics.
func (sp *SplitPlan) Update(ds []float64) error {
	if len(sp.choiceSet) == 0 {
		if sp.log != nil {
			sp.log.Warn("signal: empty choice set at end of cycle, retaining previous plan")
		}
		return nil
	}
	dsAll := maxOf(ds)
	sp.cycle.Update(dsAll)

	if err := sp.findNextPlanIndex(ds); err != nil {
		return err
	}
	sp.currSplitPlanID = sp.nextSplitPlanID
	return sp.initialize()
}

func maxOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	max := vs[0]
	for _, v := range vs[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
