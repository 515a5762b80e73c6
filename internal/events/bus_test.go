package events

import (
	"testing"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBus()
	var a, c int
	b.Subscribe(TopicAuthChanged, func(any) { a++ })
	b.Subscribe(TopicAuthChanged, func(any) { c++ })

	b.Publish(TopicAuthChanged, nil)
	if a != 1 || c != 1 {
		t.Errorf("deliveries = %d/%d, want 1/1", a, c)
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	b := NewBus()
	var n int
	b.Subscribe(TopicAuthChanged, func(any) { n++ })
	b.Publish(TopicDashboardStateUpdated, StateUpdate{})
	if n != 0 {
		t.Error("handler received a payload from another topic")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := NewBus()
	var n int
	cancel := b.Subscribe(TopicAuthChanged, func(any) { n++ })
	b.Publish(TopicAuthChanged, nil)
	cancel()
	b.Publish(TopicAuthChanged, nil)
	if n != 1 {
		t.Errorf("deliveries = %d, want 1", n)
	}
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	b := NewBus()
	var n int
	b.Subscribe(TopicAuthChanged, func(any) { panic("boom") })
	b.Subscribe(TopicAuthChanged, func(any) { n++ })

	b.Publish(TopicAuthChanged, nil)
	if n != 1 {
		t.Error("panic in one handler suppressed delivery to another")
	}
}

func TestPublishWithNoSubscribers(t *testing.T) {
	b := NewBus()
	b.Publish(TopicDashboardStateUpdated, StateUpdate{ChangedBy: "resume_agent"})
}
