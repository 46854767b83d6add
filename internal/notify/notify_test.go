package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestPublisherCategoryChanged(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sub := client.Subscribe(context.Background(), Channel)
	defer sub.Close()
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	ownerID := uuid.New()
	p := NewPublisher(client)
	p.CategoryChanged(context.Background(), Event{
		Action:     ActionDeleted,
		CategoryID: "tech-research",
		OwnerID:    ownerID,
	})

	select {
	case msg := <-sub.Channel():
		var e Event
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if e.Action != ActionDeleted {
			t.Errorf("action: got %q, want %q", e.Action, ActionDeleted)
		}
		if e.CategoryID != "tech-research" {
			t.Errorf("category_id: got %q, want %q", e.CategoryID, "tech-research")
		}
		if e.OwnerID != ownerID {
			t.Errorf("owner_id: got %s, want %s", e.OwnerID, ownerID)
		}
		if e.At.IsZero() {
			t.Error("expected At to be stamped")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestPublisherSwallowsErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client.Close()
	mr.Close()

	// A dead connection must not panic or propagate.
	p := NewPublisher(client)
	p.CategoryChanged(context.Background(), Event{
		Action:     ActionCreated,
		CategoryID: "market-analysis",
		OwnerID:    uuid.New(),
	})
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = Noop{}
	n.CategoryChanged(context.Background(), Event{Action: ActionUpdated})
}
