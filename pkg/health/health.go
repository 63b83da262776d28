package health

import (
	"context"
	"fmt"
	"time"
)

// Result is the outcome of one check
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker probes one component
type Checker interface {
	Check(ctx context.Context) Result
}

// CheckFunc adapts a function returning an error to a Checker
type CheckFunc func(ctx context.Context) error

// Check calls f and times it
func (f CheckFunc) Check(ctx context.Context) Result {
	return timed(func() (string, error) { return "ok", f(ctx) })
}

// timed runs fn and builds a Result from its message or error
func timed(fn func() (string, error)) Result {
	start := time.Now()
	msg, err := fn()
	r := Result{Healthy: err == nil, Message: msg, CheckedAt: start, Duration: time.Since(start)}
	if err != nil {
		r.Message = err.Error()
	}
	return r
}

// Config controls how often components are checked
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
	// Retries is the number of consecutive failures before a component is
	// reported unhealthy
	Retries int
}

// DefaultConfig returns the configuration used by serve
func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Second,
		Timeout:  2 * time.Second,
		Retries:  2,
	}
}

// Validate rejects configurations the monitor cannot run with
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	return nil
}

// Status is the folded history of one component's checks
type Status struct {
	ConsecutiveFailures  int
	ConsecutiveSuccesses int
	LastResult           Result
	Healthy              bool
}

// NewStatus creates a status that is healthy until proven otherwise
func NewStatus() *Status {
	return &Status{Healthy: true}
}

// Update folds a result into s and reports whether Healthy flipped.
// One success recovers; Retries failures in a row are needed to fail.
func (s *Status) Update(result Result, retries int) bool {
	was := s.Healthy
	s.LastResult = result

	if result.Healthy {
		s.ConsecutiveSuccesses++
		s.ConsecutiveFailures = 0
		s.Healthy = true
	} else {
		s.ConsecutiveFailures++
		s.ConsecutiveSuccesses = 0
		if s.ConsecutiveFailures >= retries {
			s.Healthy = false
		}
	}
	return was != s.Healthy
}
