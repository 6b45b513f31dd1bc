package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestPublishEncodesEvent(t *testing.T) {
	h := NewHub(nil)

	h.Publish(Event{Type: TypeStockUpdate, Action: EventSaleCreated, Data: map[string]string{"sale_id": "s1"}})

	select {
	case msg := <-h.Broadcast:
		var got Event
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != TypeStockUpdate || got.Action != EventSaleCreated {
			t.Fatalf("unexpected event %+v", got)
		}
		if got.At.IsZero() {
			t.Fatalf("expected timestamp to be filled")
		}
	default:
		t.Fatalf("expected a queued message")
	}
}

func TestPublishNeverBlocksWhenBacklogIsFull(t *testing.T) {
	h := NewHub(nil)

	for i := 0; i < defaultBroadcastBacklog+10; i++ {
		h.Publish(Event{Type: TypeStockUpdate, Action: EventProductUpdated})
	}
	if got := len(h.Broadcast); got != defaultBroadcastBacklog {
		t.Fatalf("expected backlog capped at %d, got %d", defaultBroadcastBacklog, got)
	}
}

func TestStoppedHubReleasesConnections(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	cancel()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatalf("hub did not stop")
	}

	finished := make(chan bool, 1)
	go func() {
		joined := h.join(nil)
		h.leave(nil)
		finished <- joined
	}()

	select {
	case joined := <-finished:
		if joined {
			t.Fatalf("a stopped hub must not accept connections")
		}
	case <-time.After(time.Second):
		t.Fatalf("join/leave blocked on a stopped hub")
	}
}
