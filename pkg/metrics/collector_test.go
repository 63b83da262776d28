package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/cuemby/tally/pkg/events"
	"github.com/cuemby/tally/pkg/storage"
	"github.com/cuemby/tally/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type staticSource struct {
	mu   sync.Mutex
	snap storage.Snapshot
}

func (s *staticSource) Snapshot() storage.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *staticSource) set(snap storage.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

func TestCollector_Collect(t *testing.T) {
	src := &staticSource{snap: storage.Seed()}
	c := NewCollector(src, events.NewBroker())

	c.Collect()

	assert.Equal(t, 4.0, testutil.ToFloat64(SubjectsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(EntriesTotal.WithLabelValues("present")))
	assert.Equal(t, 2.0, testutil.ToFloat64(EntriesTotal.WithLabelValues("absent")))
	assert.Equal(t, 0.0, testutil.ToFloat64(EntriesTotal.WithLabelValues("no-class")))

	// Mathematics: 1 of 2, Physics and Chemistry: 1 of 1, Computer Science: 0 of 1
	assert.Equal(t, 50.0, testutil.ToFloat64(SubjectAttendance.WithLabelValues("Mathematics")))
	assert.Equal(t, 100.0, testutil.ToFloat64(SubjectAttendance.WithLabelValues("Physics")))
	assert.Equal(t, 2.0, testutil.ToFloat64(SubjectsBySeverity.WithLabelValues("good")))
	assert.Equal(t, 2.0, testutil.ToFloat64(SubjectsBySeverity.WithLabelValues("critical")))
	assert.Equal(t, 60.0, testutil.ToFloat64(OverallAttendance))
	assert.Equal(t, 0.0, testutil.ToFloat64(EventsDropped))
}

func TestCollector_RemovedSubjectStopsReporting(t *testing.T) {
	src := &staticSource{snap: storage.Seed()}
	c := NewCollector(src, events.NewBroker())
	c.Collect()

	src.set(storage.Snapshot{
		Subjects: []types.Subject{{ID: "9", Name: "Art", ClassDays: []int{2}}},
		Limits:   types.DefaultLimits(),
	})
	c.Collect()

	assert.Equal(t, 1, testutil.CollectAndCount(SubjectAttendance))
}

func TestCollector_RecollectsOnEvent(t *testing.T) {
	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	src := &staticSource{snap: storage.Snapshot{Limits: types.DefaultLimits()}}
	c := NewCollector(src, broker)
	c.Start()
	defer c.Stop()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(SubjectsTotal) == 0
	}, time.Second, 10*time.Millisecond)

	src.set(storage.Seed())
	broker.Publish(&events.Event{Type: events.EventSubjectAdded})

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(SubjectsTotal) == 4
	}, time.Second, 10*time.Millisecond)
}
