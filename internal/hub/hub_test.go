package hub

import (
	"testing"

	"go.uber.org/zap"
)

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	h := New(zap.NewNop())
	a := h.Attach()
	b := h.Attach()
	defer h.Close()

	h.Broadcast(Event{Kind: EventStatus, Data: "ready"})

	for _, sub := range []*Subscriber{a, b} {
		select {
		case ev := <-sub.Events:
			if ev.Kind != EventStatus {
				t.Errorf("kind = %q, want status", ev.Kind)
			}
		default:
			t.Errorf("subscriber %s received nothing", sub.ID)
		}
	}
}

func TestPerSubscriberOrderPreserved(t *testing.T) {
	h := New(zap.NewNop())
	sub := h.Attach()
	defer h.Close()

	kinds := []string{EventStatus, EventQR, EventMessage, EventChats}
	for _, k := range kinds {
		h.Broadcast(Event{Kind: k})
	}

	for i, want := range kinds {
		ev := <-sub.Events
		if ev.Kind != want {
			t.Fatalf("event %d = %q, want %q (order must match emission)", i, ev.Kind, want)
		}
	}
}

func TestSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	h := New(zap.NewNop())
	slow := h.Attach()
	fast := h.Attach()
	defer h.Close()

	// Overflow the slow subscriber's buffer; Broadcast must not block and
	// the fast subscriber must still see every drop-free event it can hold.
	for i := 0; i < subscriberBuffer+10; i++ {
		h.Broadcast(Event{Kind: EventMessage})
	}

	if len(slow.Events) != subscriberBuffer {
		t.Errorf("slow buffer = %d, want %d (full, extra dropped)", len(slow.Events), subscriberBuffer)
	}
	if len(fast.Events) != subscriberBuffer {
		t.Errorf("fast buffer = %d, want %d", len(fast.Events), subscriberBuffer)
	}
}

func TestSendTargetsOneSubscriber(t *testing.T) {
	h := New(zap.NewNop())
	target := h.Attach()
	other := h.Attach()
	defer h.Close()

	h.Send(target, Event{Kind: EventContacts})

	if len(target.Events) != 1 {
		t.Errorf("target received %d events, want 1", len(target.Events))
	}
	if len(other.Events) != 0 {
		t.Errorf("other received %d events, want 0", len(other.Events))
	}
}

func TestDetachStopsDelivery(t *testing.T) {
	h := New(zap.NewNop())
	sub := h.Attach()
	h.Detach(sub)

	select {
	case <-sub.Done:
	default:
		t.Error("Done not closed on detach")
	}

	h.Broadcast(Event{Kind: EventStatus})
	if len(sub.Events) != 0 {
		t.Error("detached subscriber still receiving events")
	}
	if h.Count() != 0 {
		t.Errorf("Count() = %d, want 0", h.Count())
	}
}

func TestDetachTwiceIsSafe(t *testing.T) {
	h := New(zap.NewNop())
	sub := h.Attach()
	h.Detach(sub)
	h.Detach(sub) // must not panic on double close
}
