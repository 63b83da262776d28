package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cuemby/tally/pkg/log"
	"github.com/cuemby/tally/pkg/metrics"
	"github.com/cuemby/tally/pkg/storage"
	"github.com/rs/zerolog"
)

// ErrStopped is returned by Enqueue after Stop
var ErrStopped = errors.New("save queue stopped")

// DefaultWriteTimeout bounds a single snapshot write
const DefaultWriteTimeout = 5 * time.Second

// Queue writes snapshots through a gateway on a single goroutine, in the
// order they were enqueued. A snapshot still waiting to be written is
// replaced by a newer one, so the most recent state always wins.
type Queue struct {
	gw      storage.Gateway
	timeout time.Duration
	logger  zerolog.Logger

	mu         sync.Mutex
	pending    map[string][]byte
	hasPending bool
	enqueued   uint64
	processed  uint64
	saved      uint64
	failures   uint64
	lastErr    error
	progress   chan struct{}
	stopped    bool

	wakeCh  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// NewQueue creates a save queue writing to gw
func NewQueue(gw storage.Gateway) *Queue {
	return &Queue{
		gw:       gw,
		timeout:  DefaultWriteTimeout,
		logger:   log.WithComponent("persist"),
		progress: make(chan struct{}),
		wakeCh:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the write loop
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true
	go q.run()
}

// Stop writes any pending snapshot and stops the write loop
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	started := q.started
	q.mu.Unlock()

	close(q.stopCh)
	if started {
		<-q.doneCh
	}
}

// Enqueue encodes snap and schedules it for writing. It never waits for I/O.
func (q *Queue) Enqueue(snap storage.Snapshot) error {
	values, err := snap.Encode()
	if err != nil {
		return err
	}

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return ErrStopped
	}
	if q.hasPending {
		metrics.SavesCoalesced.Inc()
	}
	q.pending = values
	q.hasPending = true
	q.enqueued++
	q.mu.Unlock()

	select {
	case q.wakeCh <- struct{}{}:
	default:
		// A wakeup is already queued
	}
	return nil
}

// Flush waits until every snapshot enqueued before the call has been
// attempted. It returns the error of the last attempt, if any.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	target := q.enqueued
	q.mu.Unlock()

	for {
		q.mu.Lock()
		if q.processed >= target {
			err := q.lastErr
			q.mu.Unlock()
			return err
		}
		ch := q.progress
		q.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// LastError returns the error of the most recent write attempt, or nil if it
// succeeded
func (q *Queue) LastError() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

// Saved returns how many snapshots were written successfully
func (q *Queue) Saved() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.saved
}

// Failures returns how many snapshot writes failed
func (q *Queue) Failures() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.failures
}

func (q *Queue) run() {
	defer close(q.doneCh)
	for {
		select {
		case <-q.wakeCh:
			q.writePending()
		case <-q.stopCh:
			q.writePending()
			return
		}
	}
}

func (q *Queue) writePending() {
	q.mu.Lock()
	if !q.hasPending {
		q.mu.Unlock()
		return
	}
	values := q.pending
	seq := q.enqueued
	q.pending = nil
	q.hasPending = false
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	timer := metrics.NewTimer()
	err := storage.Save(ctx, q.gw, values)
	cancel()
	timer.ObserveDuration(metrics.SaveDuration)

	if err != nil {
		// Never retried; the next mutation enqueues a fresh snapshot
		q.logger.Error().Err(err).Uint64("seq", seq).Msg("Failed to save snapshot")
		metrics.SavesTotal.WithLabelValues("error").Inc()
	} else {
		q.logger.Debug().Uint64("seq", seq).Msg("Snapshot saved")
		metrics.SavesTotal.WithLabelValues("ok").Inc()
	}

	q.mu.Lock()
	q.processed = seq
	q.lastErr = err
	if err != nil {
		q.failures++
	} else {
		q.saved++
	}
	close(q.progress)
	q.progress = make(chan struct{})
	q.mu.Unlock()
}
