/*
Package events provides an in-memory event broker for tracker change
notifications.

The tracker publishes one event per accepted mutation. Subscribers, such as
the metrics collector, react without the tracker knowing about them.

	tracker ──Publish──► queue (100) ──► deliver ──► subscriber (50 each)

Delivery is best effort. Publish never blocks the caller: events are dropped
when the broker is stopped or its buffer is full, and a slow subscriber misses
events rather than stalling others. Dropped reports how many were lost.
Nothing that must not be lost (such as persistence) goes through the
broker.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe() // or Subscribe(events.EventLimitsUpdated)
	defer broker.Unsubscribe(sub)

	for ev := range sub {
		fmt.Println(ev.Type, ev.SubjectID)
	}
*/
package events
