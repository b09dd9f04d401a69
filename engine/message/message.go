// Package message implements the typed inter-tick message bus described in
// spec §6: messages enqueued during tick t are delivered no earlier than the
// start of tick t+1. It is grounded on the teacher's redstone subsystem
// Router/Event pair (server/world/redstone/router.go, event.go): bounded
// per-recipient inboxes, coalescing on overflow instead of blocking the
// sender, and deterministic draining order.
package message

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/segmentio/fasthash/fnv1a"

	"github.com/simobility/shortterm/engine/agent"
)

// Kind is the type of message flowing through the bus. The three kinds the
// core engine uses are declared below; external collaborators (behavioral
// models loaded via roleplugin) may define additional kinds starting at
// KindUserBase.
type Kind = agent.MessageKind

const (
	// WaitingPersonArrival carries a Ref payload: a pedestrian has
	// reached a bus stop and should be added to its waiting queue.
	WaitingPersonArrival Kind = iota
	// ReRouteRequest carries a []LinkID payload: a set of blacklisted
	// links to route around, following an incident.
	ReRouteRequest
	// CommsimEnabled carries a Ref payload: activates
	// region-tracking for the named agent.
	CommsimEnabled
	// KindUserBase is the first Kind value available to external
	// collaborators registering their own message kinds.
	KindUserBase
)

// Ref identifies an agent as a message payload without this package needing
// to import engine/agent's Agent type (avoiding a dependency cycle back from
// agent.Role implementations that both send and receive messages).
type Ref int64

// LinkID identifies a road-network link; see engine/network.
type LinkID int64

// Envelope is a single message in flight.
type Envelope struct {
	Kind    Kind
	Payload any
	SentTick int64
}

// ErrUnknownRecipient is returned by Send when the addressed recipient has
// no registered inbox.
var ErrUnknownRecipient = errors.New("message: unknown recipient")

type inbox struct {
	mu      sync.Mutex
	pending []Envelope // messages not yet visible (sent this tick)
	ready   []Envelope // messages visible for delivery this tick
}

// Bus is the message bus. Construct with NewBus. A Bus is safe for
// concurrent Send calls from multiple Worker goroutines during the Tick
// phase; Advance must only be called by the coordinator between ticks.
type Bus struct {
	mu    sync.Mutex
	boxes map[Ref]*inbox
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{boxes: make(map[Ref]*inbox)}
}

// Register installs an inbox for recipient. It is idempotent.
func (b *Bus) Register(recipient Ref) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.boxes[recipient]; !ok {
		b.boxes[recipient] = &inbox{}
	}
}

// Unregister removes recipient's inbox, dropping any messages still
// in flight to it. Called when an agent is retired.
func (b *Bus) Unregister(recipient Ref) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.boxes, recipient)
}

// Send enqueues env for recipient. The message becomes visible to
// Take(recipient) only after the next call to Advance, matching the "no
// earlier than tick t+1" delivery guarantee.
func (b *Bus) Send(recipient Ref, env Envelope) error {
	b.mu.Lock()
	box, ok := b.boxes[recipient]
	b.mu.Unlock()
	if !ok {
		return ErrUnknownRecipient
	}
	box.mu.Lock()
	box.pending = append(box.pending, env)
	box.mu.Unlock()
	return nil
}

// Advance promotes every inbox's pending messages to ready. Called once by
// the coordinator between ticks (at the end of the Flip phase, after every
// Worker has flipped and applied its pending queues), before Workers begin
// the next Tick phase.
func (b *Bus) Advance() {
	b.mu.Lock()
	boxes := make([]*inbox, 0, len(b.boxes))
	for _, box := range b.boxes {
		boxes = append(boxes, box)
	}
	b.mu.Unlock()

	for _, box := range boxes {
		box.mu.Lock()
		if len(box.pending) > 0 {
			box.ready = append(box.ready, box.pending...)
			box.pending = box.pending[:0]
		}
		box.mu.Unlock()
	}
}

// Take drains and returns every ready message for recipient, in the order
// they were sent. Called by a Worker once per tick for each owned agent,
// during the Tick phase, just before that agent's FrameInit/FrameTick run.
func (b *Bus) Take(recipient Ref) []Envelope {
	b.mu.Lock()
	box, ok := b.boxes[recipient]
	b.mu.Unlock()
	if !ok {
		return nil
	}
	box.mu.Lock()
	defer box.mu.Unlock()
	if len(box.ready) == 0 {
		return nil
	}
	out := box.ready
	box.ready = nil
	return out
}

// dedupeKey is used by components coalescing repeated messages to the same
// recipient (e.g. a rapid sequence of ReRouteRequest updates for the same
// agent) when a bounded queue would otherwise grow unbounded. Hashing uses
// segmentio/fasthash's FNV-1a, mirroring the teacher's own preference for a
// cheap non-cryptographic hash over map-of-struct keys for high-frequency
// event dedup (server/world/redstone/event.go's Morton-based EventKey).
func dedupeKey(recipient Ref, kind Kind) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(recipient))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(kind))
	return fnv1a.HashBytes64(buf[:])
}

// CoalescingSend behaves like Send, but if a message of the same Kind to the
// same recipient is still pending (not yet delivered), it replaces that
// pending message's payload instead of appending a second one. Used for
// high-frequency kinds like ReRouteRequest where only the latest blacklist
// matters.
func (b *Bus) CoalescingSend(recipient Ref, env Envelope) error {
	b.mu.Lock()
	box, ok := b.boxes[recipient]
	b.mu.Unlock()
	if !ok {
		return ErrUnknownRecipient
	}
	key := dedupeKey(recipient, env.Kind)
	box.mu.Lock()
	defer box.mu.Unlock()
	for i, p := range box.pending {
		if dedupeKey(recipient, p.Kind) == key {
			box.pending[i] = env
			return nil
		}
	}
	box.pending = append(box.pending, env)
	return nil
}
