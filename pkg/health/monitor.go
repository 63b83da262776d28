package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/tally/pkg/log"
)

// ReportFunc receives the health of a component after every check
type ReportFunc func(name string, healthy bool, message string)

type probe struct {
	name    string
	checker Checker
	status  *Status
}

// Monitor runs checkers periodically and reports their status
type Monitor struct {
	config Config
	report ReportFunc

	mu      sync.Mutex
	probes  []*probe
	started bool

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewMonitor creates a monitor that reports through fn
func NewMonitor(config Config, fn ReportFunc) (*Monitor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid health config: %w", err)
	}
	return &Monitor{
		config: config,
		report: fn,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Add registers a checker under a component name
func (m *Monitor) Add(name string, checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes = append(m.probes, &probe{name: name, checker: checker, status: NewStatus()})
}

// Start checks once immediately and then on every interval
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go func() {
		defer close(m.doneCh)

		m.CheckAll(context.Background())

		ticker := time.NewTicker(m.config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CheckAll(context.Background())
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop stops the monitor and waits for a running check to finish
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.doneCh
		}
	})
}

// CheckAll runs every checker once
func (m *Monitor) CheckAll(ctx context.Context) {
	m.mu.Lock()
	probes := append([]*probe(nil), m.probes...)
	m.mu.Unlock()

	logger := log.WithComponent("health")
	for _, p := range probes {
		checkCtx, cancel := context.WithTimeout(ctx, m.config.Timeout)
		result := p.checker.Check(checkCtx)
		cancel()

		m.mu.Lock()
		changed := p.status.Update(result, m.config.Retries)
		healthy := p.status.Healthy
		failures := p.status.ConsecutiveFailures
		m.mu.Unlock()

		switch {
		case changed && !healthy:
			logger.Warn().Str("check", p.name).Str("message", result.Message).Msg("Component became unhealthy")
		case changed:
			logger.Info().Str("check", p.name).Msg("Component recovered")
		case !result.Healthy:
			logger.Debug().Str("check", p.name).Int("failures", failures).Msg("Check failed")
		}

		message := ""
		if !healthy {
			message = result.Message
		}
		m.report(p.name, healthy, message)
	}
}

// Status returns a copy of the status of a component
func (m *Monitor) Status(name string) (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.probes {
		if p.name == name {
			return *p.status, true
		}
	}
	return Status{}, false
}
