package events

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// EventType names a kind of tracker change
type EventType string

const (
	EventStateLoaded    EventType = "state.loaded"
	EventSubjectAdded   EventType = "subject.added"
	EventSubjectUpdated EventType = "subject.updated"
	EventSubjectRemoved EventType = "subject.removed"
	EventEntryUpserted  EventType = "entry.upserted"
	EventEntryReset     EventType = "entry.reset"
	EventLimitsUpdated  EventType = "limits.updated"
)

const (
	queueSize      = 100
	subscriberSize = 50
)

// Event represents a change to tracker state
type Event struct {
	Type      EventType
	Timestamp time.Time
	SubjectID string
	EntryID   string
	Date      string
	Metadata  map[string]string
}

func (e *Event) String() string {
	switch {
	case e.EntryID != "":
		return fmt.Sprintf("%s subject=%s entry=%s date=%s", e.Type, e.SubjectID, e.EntryID, e.Date)
	case e.Date != "":
		return fmt.Sprintf("%s subject=%s date=%s", e.Type, e.SubjectID, e.Date)
	case e.SubjectID != "":
		return fmt.Sprintf("%s subject=%s", e.Type, e.SubjectID)
	}
	return string(e.Type)
}

// Subscriber is a channel that receives events
type Subscriber chan *Event

// filter is the set of types a subscriber wants; nil means all
type filter map[EventType]bool

func (f filter) match(t EventType) bool {
	return f == nil || f[t]
}

// Broker fans tracker events out to subscribers
type Broker struct {
	mu          sync.RWMutex
	subscribers map[Subscriber]filter

	queue    chan *Event
	stopCh   chan struct{}
	stopOnce sync.Once
	dropped  atomic.Int64
}

// NewBroker creates a broker. Call Start before publishing.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]filter),
		queue:       make(chan *Event, queueSize),
		stopCh:      make(chan struct{}),
	}
}

// Start begins distributing queued events
func (b *Broker) Start() {
	go b.run()
}

// Stop ends distribution. It is safe to call more than once.
func (b *Broker) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
}

// Subscribe returns a channel receiving events of the given types, or of
// every type when none are given.
func (b *Broker) Subscribe(types ...EventType) Subscriber {
	var f filter
	if len(types) > 0 {
		f = make(filter, len(types))
		for _, t := range types {
			f[t] = true
		}
	}

	sub := make(Subscriber, subscriberSize)
	b.mu.Lock()
	b.subscribers[sub] = f
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes sub and closes it
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[sub]; ok {
		delete(b.subscribers, sub)
		close(sub)
	}
}

// Publish queues an event without blocking. Events published after Stop or
// while the queue is full are dropped and counted.
func (b *Broker) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case <-b.stopCh:
		b.dropped.Add(1)
		return
	default:
	}

	select {
	case b.queue <- event:
	default:
		b.dropped.Add(1)
	}
}

// Dropped returns how many events never reached the queue or a subscriber
func (b *Broker) Dropped() int64 {
	return b.dropped.Load()
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.queue:
			b.deliver(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) deliver(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub, f := range b.subscribers {
		if !f.match(event.Type) {
			continue
		}
		select {
		case sub <- event:
		default:
			// slow subscriber
			b.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
