package metrics

import (
	"github.com/cuemby/tally/pkg/aggregate"
	"github.com/cuemby/tally/pkg/events"
	"github.com/cuemby/tally/pkg/storage"
	"github.com/cuemby/tally/pkg/types"
)

// Source provides the state the collector derives gauges from
type Source interface {
	Snapshot() storage.Snapshot
}

// Collector refreshes state gauges whenever the tracker publishes a change
type Collector struct {
	source Source
	broker *events.Broker
	sub    events.Subscriber
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(source Source, broker *events.Broker) *Collector {
	return &Collector{
		source: source,
		broker: broker,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start collects once and then again after every event
func (c *Collector) Start() {
	c.sub = c.broker.Subscribe()
	go func() {
		defer close(c.doneCh)

		// Collect immediately on start
		c.Collect()

		for {
			select {
			case _, ok := <-c.sub:
				if !ok {
					return
				}
				c.Collect()
			case <-c.stopCh:
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
	<-c.doneCh
	c.broker.Unsubscribe(c.sub)
}

// Collect recomputes every state gauge from the current snapshot
func (c *Collector) Collect() {
	snap := c.source.Snapshot()

	SubjectsTotal.Set(float64(len(snap.Subjects)))

	counts := map[types.Status]int{
		types.StatusPresent: 0,
		types.StatusAbsent:  0,
		types.StatusNoClass: 0,
	}
	for _, e := range snap.Entries {
		counts[e.Status]++
	}
	for status, n := range counts {
		EntriesTotal.WithLabelValues(string(status)).Set(float64(n))
	}

	summaries := aggregate.Summarize(snap.Subjects, snap.Entries, snap.Limits)

	// Removed subjects must not keep reporting
	SubjectAttendance.Reset()
	severities := map[types.Severity]int{
		types.SeverityGood:     0,
		types.SeverityWarning:  0,
		types.SeverityCritical: 0,
	}
	for _, s := range summaries {
		SubjectAttendance.WithLabelValues(s.Subject.Name).Set(s.Percentage)
		severities[s.Severity]++
	}
	for severity, n := range severities {
		SubjectsBySeverity.WithLabelValues(string(severity)).Set(float64(n))
	}

	OverallAttendance.Set(aggregate.Overall(summaries, snap.Limits).Percentage)
	EventsDropped.Set(float64(c.broker.Dropped()))
}
