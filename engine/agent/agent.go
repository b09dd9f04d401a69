// Package agent defines the Agent/Role contract (spec §4.7): the polymorphic
// capability set a simulated entity must implement to be advanced by a
// Worker. The engine never inspects anything about a Role beyond these
// calls, matching the Design Note "Class hierarchies vs. sum types" — Role
// variants are plain interfaces rather than a class hierarchy.
package agent

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/simobility/shortterm/engine/buffered"
)

// FrameResult is the outcome of a frame_init/frame_tick call.
type FrameResult uint8

const (
	// Continue indicates the Role remains active for another tick.
	Continue FrameResult = iota
	// Done indicates the Role (and, if it is the agent's last Role, the
	// Agent) has nothing further to do and should be retired at the next
	// Flip phase.
	Done
	// ContinueIncomplete indicates frame_tick ran out of its allotted
	// sub-step work but the Role remains active; only meaningful for
	// frame_tick, not frame_init.
	ContinueIncomplete
)

// MessageKind identifies the kind of message delivered through onMessage.
// Concrete kinds are defined in engine/message; this package only needs the
// shape of the delivery.
type MessageKind uint8

// Subscription is a single buffered field a Role contributes to its Worker's
// flip set, identified by a stable id scoped to the owning Agent.
type Subscription struct {
	FieldID string
	Flip    func()
}

// Role is the polymorphic capability bound to an Agent; at most one Role is
// "current" at a time, with one "previous" Role retained for a single tick
// after a swap so its buffered fields can be unsubscribed cleanly (see
// engine/tripchain).
type Role interface {
	// FrameInit runs once, the first tick after the Role becomes current.
	FrameInit(nowMs int64) FrameResult
	// FrameTick runs every tick (or every macro-step, for coarse-grained
	// roles) the Role is current. It must be a finite computation with no
	// I/O and no suspension: a Role that needs external data must obtain
	// it during FrameInit or via a message delivered between ticks.
	FrameTick(nowMs int64) FrameResult
	// FrameOutput is called once per tick after FrameTick, to publish any
	// per-tick output records.
	FrameOutput(nowMs int64)
	// SubscriptionList returns the buffered fields this Role owns. It may
	// be recomputed when the Role changes but is otherwise treated as
	// static for the Role's lifetime.
	SubscriptionList() []Subscription
	// OnMessage delivers a message of the given kind and payload, no
	// earlier than the start of the tick following the one it was sent in.
	OnMessage(kind MessageKind, payload any)
	// OnEvent delivers a generic named event with contextual args.
	OnEvent(id string, ctx any, args ...any)
}

// Agent is a simulated entity: a stable identity, a start-time before which
// it is dormant, a published position (non-spatial agents never read this),
// a current Role, an owning Worker reference, a to-be-removed flag, and a
// per-agent RNG seeded from its id for reproducibility.
type Agent struct {
	ID            int64
	ExternalDBID  uuid.UUID // optional; uuid.Nil if the agent has no external database identity
	StartTimeMs   int64
	NonSpatial    bool
	Position      *buffered.Buffered[mgl64.Vec2]
	rng           *rand.Rand
	role          Role
	previousRole  Role
	ownerWorkerID int // 0 means unowned; Workers are numbered from 1
	toBeRemoved   bool
	initialized   bool
}

// New constructs an Agent with a per-agent RNG seeded deterministically from
// id, as required for reproducibility independent of worker assignment.
func New(id int64, startTimeMs int64, nonSpatial bool, initialPos mgl64.Vec2, phase *buffered.Phase) *Agent {
	return &Agent{
		ID:          id,
		StartTimeMs: startTimeMs,
		NonSpatial:  nonSpatial,
		Position:    buffered.New(initialPos, phase),
		rng:         rand.New(rand.NewSource(id)),
	}
}

// RNG returns the agent's private random source.
func (a *Agent) RNG() *rand.Rand { return a.rng }

// Role returns the agent's current Role, or nil if none has been assigned.
func (a *Agent) Role() Role { return a.role }

// PreviousRole returns the Role retained for one tick after the most recent
// swap, or nil.
func (a *Agent) PreviousRole() Role { return a.previousRole }

// SetRole installs a new current Role, retaining the old one (if any) as
// PreviousRole for exactly one tick. ClearPreviousRole must be called by the
// owning Worker during the Flip phase following the swap.
func (a *Agent) SetRole(r Role) {
	a.previousRole = a.role
	a.role = r
	a.initialized = false
}

// ClearPreviousRole drops the retained previous Role. Called by the Worker
// during Flip, one tick after a Role swap.
func (a *Agent) ClearPreviousRole() { a.previousRole = nil }

// Initialized reports whether FrameInit has been called for the current
// Role.
func (a *Agent) Initialized() bool { return a.initialized }

// MarkInitialized records that FrameInit has run for the current Role.
func (a *Agent) MarkInitialized() { a.initialized = true }

// OwnerWorkerID returns the id of the Worker that currently owns this agent,
// or 0 if unowned.
func (a *Agent) OwnerWorkerID() int { return a.ownerWorkerID }

// SetOwnerWorkerID sets or clears (0) the owning Worker.
func (a *Agent) SetOwnerWorkerID(id int) { a.ownerWorkerID = id }

// ToBeRemoved reports whether the agent has been marked for retirement.
func (a *Agent) ToBeRemoved() bool { return a.toBeRemoved }

// MarkToBeRemoved flags the agent for retirement at the next Flip phase.
func (a *Agent) MarkToBeRemoved() { a.toBeRemoved = true }

// IsNonSpatial reports whether this agent ever occupies map coordinates; if
// true the agent is excluded from the spatial index.
func (a *Agent) IsNonSpatial() bool { return a.NonSpatial }

// BuildSubscriptionList delegates to the current Role, or returns nil if no
// Role is assigned.
func (a *Agent) BuildSubscriptionList() []Subscription {
	if a.role == nil {
		return nil
	}
	return a.role.SubscriptionList()
}
