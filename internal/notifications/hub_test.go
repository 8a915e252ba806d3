package notifications

import (
	"testing"
	"time"
)

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(1)
	defer unsubscribe()

	hub.Publish(1, Event{Type: EventPlanGenerated})

	select {
	case event := <-ch:
		if event.Type != EventPlanGenerated {
			t.Fatalf("expected event type %s, got %s", EventPlanGenerated, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubIsolatesUsers проверяет, что события не уходят чужим подписчикам.
func TestHubIsolatesUsers(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(1)
	defer unsubscribe()

	hub.Publish(2, Event{Type: EventExtraction})

	select {
	case event := <-ch:
		t.Fatalf("unexpected event %s", event.Type)
	default:
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(1)
	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	if hub.Subscribers(1) != 0 {
		t.Fatalf("expected no subscribers, got %d", hub.Subscribers(1))
	}
}

// TestHubDropsWhenFull проверяет, что переполненный подписчик не блокирует публикацию.
func TestHubDropsWhenFull(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(1)
	defer unsubscribe()

	for i := 0; i < subscriberBufferSize+5; i++ {
		hub.Publish(1, Event{Type: EventExtraction})
	}

	if len(ch) != subscriberBufferSize {
		t.Fatalf("expected %d buffered events, got %d", subscriberBufferSize, len(ch))
	}
}
