package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBroker_DeliversToSubscribers(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	assert.Equal(t, 2, b.SubscriberCount())

	b.Publish(&Event{Type: EventSubjectAdded, SubjectID: "1"})

	for _, sub := range []Subscriber{sub1, sub2} {
		select {
		case ev := <-sub:
			assert.Equal(t, EventSubjectAdded, ev.Type)
			assert.Equal(t, "1", ev.SubjectID)
			assert.False(t, ev.Timestamp.IsZero())
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()

	b.Unsubscribe(sub)
	assert.Equal(t, 0, b.SubscriberCount())

	_, open := <-sub
	assert.False(t, open)

	// Second unsubscribe must not panic on a closed channel
	b.Unsubscribe(sub)
}

func TestBroker_PublishNeverBlocks(t *testing.T) {
	b := NewBroker()
	// Not started: the buffer fills and further events are dropped
	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			b.Publish(&Event{Type: EventEntryUpserted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}

func TestBroker_PublishAfterStop(t *testing.T) {
	b := NewBroker()
	b.Start()
	sub := b.Subscribe()
	b.Stop()
	b.Stop()

	b.Publish(&Event{Type: EventLimitsUpdated})

	select {
	case ev := <-sub:
		t.Fatalf("unexpected event after stop: %v", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_SubscribeFiltersTypes(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe(EventLimitsUpdated)
	b.Publish(&Event{Type: EventEntryUpserted})
	b.Publish(&Event{Type: EventLimitsUpdated})

	select {
	case ev := <-sub:
		assert.Equal(t, EventLimitsUpdated, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case ev := <-sub:
		t.Fatalf("unexpected event: %v", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_CountsDropped(t *testing.T) {
	b := NewBroker()
	for i := 0; i < queueSize+5; i++ {
		b.Publish(&Event{Type: EventEntryUpserted})
	}
	assert.Equal(t, int64(5), b.Dropped())

	b.Stop()
	b.Publish(&Event{Type: EventEntryUpserted})
	assert.Equal(t, int64(6), b.Dropped())
}

func TestEvent_String(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{Event{Type: EventStateLoaded}, "state.loaded"},
		{Event{Type: EventSubjectAdded, SubjectID: "1"}, "subject.added subject=1"},
		{Event{Type: EventEntryReset, SubjectID: "1", Date: "2025-11-01"}, "entry.reset subject=1 date=2025-11-01"},
		{Event{Type: EventEntryUpserted, SubjectID: "1", EntryID: "rec1", Date: "2025-11-01"}, "entry.upserted subject=1 entry=rec1 date=2025-11-01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.event.String())
	}
}
