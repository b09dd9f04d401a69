package sim

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simobility/shortterm/engine/agent"
	"github.com/simobility/shortterm/engine/buffered"
	"github.com/simobility/shortterm/engine/geom"
	"github.com/simobility/shortterm/engine/message"
	"github.com/simobility/shortterm/engine/network"
	"github.com/simobility/shortterm/engine/tripchain"
	"github.com/simobility/shortterm/sim/output"
)

// Traveler is the bundled Role for a mobile agent working through a
// tripchain.Chain: it advances position toward the current SubTrip's
// destination Node at a constant speed and advances the chain on arrival.
// It deliberately contains no car-following, lane-changing, or route-choice
// equations (out of scope per spec Non-goals) — movement is a straight-line
// interpolation toward the next Node, the same role engine/signal.Controller
// plays for infrastructure: a worked example of the Agent/Role contract for
// a mobile entity, not a calibrated driver model. A full behavioral model
// is expected to be supplied as a roleplugin.RoleFactory instead.
//
// At a trip-chain boundary whose next Item/SubTrip carries a different mode
// (spec §4.8 step 2, "swaps its Role at boundaries"), FrameTick installs a
// fresh Traveler parameterized for the new mode via agent.SetRole rather
// than reusing speedMps in place, so the Role identity itself changes at
// the boundary the way a roleplugin-supplied behavioral model's Role would.
type Traveler struct {
	log *slog.Logger

	owner *agent.Agent
	pos   *buffered.Buffered[mgl64.Vec2]
	net   network.Network

	chain     *tripchain.Chain
	mode      string
	speedMps  float64
	tickLenMs int64

	target   mgl64.Vec2
	hasTgt   bool
	velocity mgl64.Vec2

	out     *output.Writer
	agentID int64
}

// NewTraveler constructs a Traveler for agentID, publishing through pos,
// working through chain at speedMps, resolving trip-chain node ids against
// net. owner is the Agent this Role is (or will be) installed on; it is
// used to call agent.SetRole when the chain advances across a mode
// boundary, and may be nil for callers that only drive FrameTick/FrameInit
// directly (e.g. unit tests) and never cross such a boundary. tickLenMs
// must match the macro-step length the owning WorkGroup is driven at
// (defaults to 100ms if <= 0); out may be nil to suppress per-tick output
// records.
func NewTraveler(log *slog.Logger, agentID int64, owner *agent.Agent, pos *buffered.Buffered[mgl64.Vec2], chain *tripchain.Chain, net network.Network, speedMps float64, tickLenMs int64, out *output.Writer) *Traveler {
	if tickLenMs <= 0 {
		tickLenMs = 100
	}
	return &Traveler{
		log:       log,
		agentID:   agentID,
		owner:     owner,
		pos:       pos,
		chain:     chain,
		net:       net,
		speedMps:  speedMps,
		tickLenMs: tickLenMs,
		out:       out,
	}
}

func (t *Traveler) nodePos(nodeID int64) (mgl64.Vec2, bool) {
	n, ok := t.net.Node(network.NodeID(nodeID))
	if !ok {
		return mgl64.Vec2{}, false
	}
	return n.Pos, true
}

// currentMode reports the mode of the chain's current position: a SubTrip's
// Mode field ("drive" when that field is empty), "activity" while
// stationary at an Activity, or "" if the
// chain has nothing current to report (AtEnd, or an unresolvable SubTrip
// position).
func (t *Traveler) currentMode() string {
	item, ok := t.chain.CurrentItem()
	if !ok {
		return ""
	}
	if item.Kind == tripchain.ItemActivity {
		return "activity"
	}
	st, ok := t.chain.CurrentSubTrip()
	if !ok {
		return ""
	}
	if st.Mode == "" {
		return "drive"
	}
	return st.Mode
}

// modeSpeedMps returns the constant travel speed to use for mode. Real
// per-mode speed profiles belong to a calibrated behavioral model (out of
// scope per spec Non-goals); these are placeholder defaults a roleplugin
// RoleFactory is expected to override for any mode it cares about.
func modeSpeedMps(mode string) float64 {
	switch mode {
	case "walk":
		return 1.4
	case "bus", "transit":
		return 8.3
	case "activity":
		return 0
	default: // "drive", "car", "" and anything unrecognized
		return 13.9
	}
}

// resolveTarget sets t.target to the current SubTrip's destination, or the
// current Activity's location if the chain has reached a stationary item.
// Returns false if the chain is exhausted or the target cannot be resolved.
func (t *Traveler) resolveTarget() bool {
	item, ok := t.chain.CurrentItem()
	if !ok {
		return false
	}
	var destID int64
	switch item.Kind {
	case tripchain.ItemTrip:
		st, ok := t.chain.CurrentSubTrip()
		if !ok {
			return false
		}
		destID = st.DestID
	case tripchain.ItemActivity:
		destID = item.Activity.LocationID
	}
	p, ok := t.nodePos(destID)
	if !ok {
		if t.log != nil {
			t.log.Warn("traveler: unresolved trip-chain destination", "agent", t.agentID, "nodeId", destID)
		}
		return false
	}
	t.target = p
	t.hasTgt = true
	return true
}

func (t *Traveler) FrameInit(int64) agent.FrameResult {
	if t.chain == nil || t.chain.AtEnd() {
		return agent.Done
	}
	if t.mode == "" {
		t.mode = t.currentMode()
	}
	if !t.resolveTarget() {
		return agent.Done
	}
	return agent.Continue
}

// FrameTick moves toward target at speedMps over one tick (nowMs here is an
// absolute clock; the per-tick delta is the tickLenMs passed to
// NewTraveler, defaulting to 100ms).
func (t *Traveler) FrameTick(int64) agent.FrameResult {
	if t.chain.AtEnd() {
		return agent.Done
	}
	if !t.hasTgt && !t.resolveTarget() {
		return agent.Done
	}

	cur := t.pos.Get()
	dist := geom.Distance(cur, t.target)
	step := t.speedMps * (float64(t.tickMs()) / 1000.0)

	if dist <= step {
		t.pos.Set(t.target)
		t.velocity = mgl64.Vec2{}
		if !t.chain.Advance() {
			return agent.Done
		}
		return t.crossBoundary()
	}

	toTarget := t.target.Sub(cur)
	dir := toTarget.Mul(1 / dist)
	t.velocity = dir.Mul(t.speedMps)
	t.pos.Set(cur.Add(t.velocity.Mul(float64(t.tickMs()) / 1000.0)))
	return agent.Continue
}

// crossBoundary runs once the chain has just Advance()'d onto a new
// Item/SubTrip. If the new position's mode differs from this Traveler's
// own, it installs a freshly-parameterized Traveler as the Agent's current
// Role (spec §4.8 step 2) instead of continuing to drive the old mode's
// speed in place; otherwise it simply re-resolves the target in place.
func (t *Traveler) crossBoundary() agent.FrameResult {
	newMode := t.currentMode()
	if newMode == "" {
		return agent.Done
	}
	if t.owner != nil && newMode != t.mode {
		next := NewTraveler(t.log, t.agentID, t.owner, t.pos, t.chain, t.net, modeSpeedMps(newMode), t.tickLenMs, t.out)
		next.mode = newMode
		t.owner.SetRole(next)
		return agent.Continue
	}
	t.mode = newMode
	t.hasTgt = false
	if !t.resolveTarget() {
		return agent.Done
	}
	return agent.Continue
}

func (t *Traveler) tickMs() int64 { return t.tickLenMs }

// Mode reports the travel mode this Traveler instance was parameterized
// for, e.g. "walk" or "drive" — set from the tripchain SubTrip that was
// current when this Traveler was installed as the Agent's Role.
func (t *Traveler) Mode() string { return t.mode }

func (t *Traveler) FrameOutput(nowMs int64) {
	if t.out == nil {
		return
	}
	p := t.pos.Get()
	_ = t.out.Write(output.Record{
		Tick:    nowMs,
		AgentID: t.agentID,
		Role:    "Traveler",
		X:       p[0],
		Y:       p[1],
		VX:      t.velocity[0],
		VY:      t.velocity[1],
	})
}

func (t *Traveler) SubscriptionList() []agent.Subscription {
	return []agent.Subscription{{FieldID: "position", Flip: t.pos.Flip}}
}

func (t *Traveler) OnMessage(kind message.Kind, payload any) {
	if t.log == nil {
		return
	}
	switch kind {
	case message.ReRouteRequest:
		t.log.Debug("traveler: re-route request received, ignored (route-choice out of scope)", "agent", t.agentID)
	case message.WaitingPersonArrival:
		t.log.Debug("traveler: waiting-person arrival notice", "agent", t.agentID)
	}
}

func (t *Traveler) OnEvent(string, any, ...any) {}

var _ agent.Role = (*Traveler)(nil)
