package message_test

import (
	"testing"

	"github.com/simobility/shortterm/engine/message"
)

func TestMessageNotVisibleUntilAdvance(t *testing.T) {
	b := message.NewBus()
	b.Register(1)

	if err := b.Send(1, message.Envelope{Kind: message.WaitingPersonArrival, SentTick: 10}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := b.Take(1); len(got) != 0 {
		t.Fatalf("Take before Advance = %v, want empty", got)
	}

	b.Advance()
	got := b.Take(1)
	if len(got) != 1 || got[0].Kind != message.WaitingPersonArrival {
		t.Fatalf("Take after Advance = %v, want one WaitingPersonArrival", got)
	}
	if got := b.Take(1); len(got) != 0 {
		t.Fatalf("Take must drain: %v", got)
	}
}

func TestSendToUnknownRecipient(t *testing.T) {
	b := message.NewBus()
	if err := b.Send(42, message.Envelope{Kind: message.CommsimEnabled}); err != message.ErrUnknownRecipient {
		t.Fatalf("Send to unregistered recipient = %v, want ErrUnknownRecipient", err)
	}
}

func TestUnregisterDropsPending(t *testing.T) {
	b := message.NewBus()
	b.Register(1)
	_ = b.Send(1, message.Envelope{Kind: message.ReRouteRequest})
	b.Unregister(1)
	b.Register(1)
	b.Advance()
	if got := b.Take(1); len(got) != 0 {
		t.Fatalf("Take after re-register = %v, want empty", got)
	}
}

func TestCoalescingSendReplacesPending(t *testing.T) {
	b := message.NewBus()
	b.Register(1)

	_ = b.CoalescingSend(1, message.Envelope{Kind: message.ReRouteRequest, Payload: []message.LinkID{1}})
	_ = b.CoalescingSend(1, message.Envelope{Kind: message.ReRouteRequest, Payload: []message.LinkID{1, 2}})
	b.Advance()

	got := b.Take(1)
	if len(got) != 1 {
		t.Fatalf("Take = %v, want one coalesced envelope", got)
	}
	links := got[0].Payload.([]message.LinkID)
	if len(links) != 2 {
		t.Fatalf("payload = %v, want the latest ReRouteRequest", links)
	}
}

func TestCoalescingSendDistinctKindsDoNotMerge(t *testing.T) {
	b := message.NewBus()
	b.Register(1)

	_ = b.CoalescingSend(1, message.Envelope{Kind: message.ReRouteRequest})
	_ = b.CoalescingSend(1, message.Envelope{Kind: message.WaitingPersonArrival})
	b.Advance()

	if got := b.Take(1); len(got) != 2 {
		t.Fatalf("Take = %v, want two distinct-kind envelopes", got)
	}
}
