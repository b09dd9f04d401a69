package signal

import (
	"github.com/simobility/shortterm/engine/agent"
	"github.com/simobility/shortterm/engine/message"
)

// DSProvider supplies the per-approach degree-of-saturation readings
// accumulated over the cycle just ending (spec §4.9: loop-detector
// occupancy). In a full deployment this would be backed by loop-detector
// counts aggregated by the road-network layer; here it is injected so the
// signal subsystem has no compile-time dependency on engine/network.
type DSProvider interface {
	DegreesOfSaturation() []float64
}

// Controller is the SignalController Role (spec §4.9): a non-spatial
// Agent's behavior, advancing an internal cycle timer each frame_tick and
// running the SplitPlan's end-of-cycle vote on wraparound. It is the
// spec's worked example of the Agent/Role contract (engine/agent.Role)
// applied to infrastructure rather than a mobile entity.
type Controller struct {
	plan   *SplitPlan
	ds     DSProvider
	tickMs int64 // size of one frame_tick, in ms

	currCycleTimerMs int64
}

// NewController constructs a Controller driving plan, sampling ds once per
// cycle, advancing its internal clock by tickMs every frame_tick.
func NewController(plan *SplitPlan, ds DSProvider, tickMs int64) *Controller {
	return &Controller{plan: plan, ds: ds, tickMs: tickMs}
}

// Plan exposes the underlying SplitPlan, e.g. for output/diagnostics.
func (c *Controller) Plan() *SplitPlan { return c.plan }

// FrameInit initializes the SplitPlan's phases for the initial plan.
func (c *Controller) FrameInit(int64) agent.FrameResult {
	c.currCycleTimerMs = 0
	if err := c.plan.initialize(); err != nil && c.plan.log != nil {
		c.plan.log.Warn("signal: could not initialize split plan phases", "err", err)
	}
	return agent.Continue
}

// FrameTick updates the published colors of the Phase active at the
// current cycle timer, advances the timer, and runs the end-of-cycle
// split-plan vote on wraparound. Only the active Phase is updated; the
// other Phases keep the colors they last published.
func (c *Controller) FrameTick(int64) agent.FrameResult {
	if _, err := c.plan.ComputeCurrPhase(c.currCycleTimerMs); err == nil {
		_ = c.plan.CurrPhase().Update(c.currCycleTimerMs)
	}

	c.currCycleTimerMs += c.tickMs
	if c.currCycleTimerMs >= c.plan.CycleLengthMs() {
		c.currCycleTimerMs -= c.plan.CycleLengthMs()
		if c.ds != nil {
			_ = c.plan.Update(c.ds.DegreesOfSaturation())
		}
	}
	return agent.Continue
}

// FrameOutput is a no-op: the signal's per-tick state is read directly from
// each Phase's buffered colors rather than emitted as a separate record.
func (c *Controller) FrameOutput(int64) {}

// SubscriptionList returns one Subscription per buffered color field, so
// the owning Worker's Flip phase flushes them.
func (c *Controller) SubscriptionList() []agent.Subscription {
	var subs []agent.Subscription
	for _, ph := range c.plan.Phases() {
		for _, lm := range ph.Links() {
			lm := lm
			subs = append(subs, agent.Subscription{
				FieldID: ph.Name,
				Flip:    lm.CurrColor().Flip,
			})
		}
		for _, cm := range ph.Crossings() {
			cm := cm
			subs = append(subs, agent.Subscription{
				FieldID: ph.Name,
				Flip:    cm.CurrColor().Flip,
			})
		}
	}
	return subs
}

// OnMessage is a no-op: the signal subsystem does not currently consume
// any message kind.
func (c *Controller) OnMessage(message.Kind, any) {}

// OnEvent is a no-op.
func (c *Controller) OnEvent(string, any, ...any) {}
