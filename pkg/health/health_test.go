package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cuemby/tally/pkg/storage"
)

type fakeSaver struct {
	mu  sync.Mutex
	err error
}

func (f *fakeSaver) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeSaver) set(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type reported struct {
	healthy bool
	message string
}

type recorder struct {
	mu   sync.Mutex
	last map[string]reported
}

func newRecorder() *recorder {
	return &recorder{last: make(map[string]reported)}
}

func (r *recorder) report(name string, healthy bool, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[name] = reported{healthy: healthy, message: message}
}

func (r *recorder) get(name string) (reported, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.last[name]
	return rep, ok
}

func TestStorageChecker(t *testing.T) {
	gw := storage.NewMemoryStore()
	checker := NewStorageChecker(gw)

	result := checker.Check(context.Background())
	if !result.Healthy {
		t.Errorf("Expected healthy, got unhealthy: %s", result.Message)
	}
	if result.Message != "read ok" {
		t.Errorf("Unexpected message: %s", result.Message)
	}

	gw.Fail(errors.New("disk unplugged"), nil)
	result = checker.Check(context.Background())
	if result.Healthy {
		t.Error("Expected unhealthy after read failure")
	}
	if result.Message != "read failed: disk unplugged" {
		t.Errorf("Unexpected message: %s", result.Message)
	}
}

func TestCheckFunc(t *testing.T) {
	var loaded bool
	checker := CheckFunc(func(ctx context.Context) error {
		if !loaded {
			return errors.New("not loaded")
		}
		return nil
	})

	if result := checker.Check(context.Background()); result.Healthy || result.Message != "not loaded" {
		t.Errorf("Expected unhealthy 'not loaded', got %+v", result)
	}
	loaded = true
	if result := checker.Check(context.Background()); !result.Healthy {
		t.Errorf("Expected healthy, got %+v", result)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	for _, c := range []Config{
		{Interval: 0, Timeout: time.Second, Retries: 1},
		{Interval: time.Second, Timeout: 0, Retries: 1},
		{Interval: time.Second, Timeout: time.Second, Retries: 0},
	} {
		if err := c.Validate(); err == nil {
			t.Errorf("Expected error for %+v", c)
		}
	}
	if _, err := NewMonitor(Config{}, nil); err == nil {
		t.Error("Expected NewMonitor to reject an empty config")
	}
}

func TestPersistChecker(t *testing.T) {
	saver := &fakeSaver{}
	checker := NewPersistChecker(saver)

	if result := checker.Check(context.Background()); !result.Healthy {
		t.Errorf("Expected healthy, got unhealthy: %s", result.Message)
	}

	saver.set(errors.New("read-only filesystem"))
	result := checker.Check(context.Background())
	if result.Healthy {
		t.Error("Expected unhealthy after failed save")
	}
	if result.Message != "last save failed: read-only filesystem" {
		t.Errorf("Unexpected message: %s", result.Message)
	}
}

func TestStatus_RetriesThreshold(t *testing.T) {
	status := NewStatus()

	fail := Result{Healthy: false, Message: "boom", CheckedAt: time.Now()}
	ok := Result{Healthy: true, CheckedAt: time.Now()}

	if status.Update(fail, 2) || !status.Healthy {
		t.Error("One failure should not mark unhealthy with 2 retries")
	}

	if !status.Update(fail, 2) {
		t.Error("Second failure should flip the status")
	}
	if status.Healthy {
		t.Error("Expected unhealthy after 2 consecutive failures")
	}
	if status.ConsecutiveFailures != 2 {
		t.Errorf("Expected 2 consecutive failures, got %d", status.ConsecutiveFailures)
	}

	if !status.Update(ok, 2) || !status.Healthy {
		t.Error("Expected healthy after a success")
	}
	if status.ConsecutiveFailures != 0 {
		t.Errorf("Expected failures reset, got %d", status.ConsecutiveFailures)
	}
}

func TestMonitor_CheckAll(t *testing.T) {
	saver := &fakeSaver{}
	rec := newRecorder()
	m, err := NewMonitor(Config{Interval: time.Hour, Timeout: time.Second, Retries: 1}, rec.report)
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	m.Add("storage", NewStorageChecker(storage.NewMemoryStore()))
	m.Add("persist", NewPersistChecker(saver))

	m.CheckAll(context.Background())
	if rep, ok := rec.get("persist"); !ok || !rep.healthy {
		t.Errorf("Expected persist reported healthy, got %+v", rep)
	}

	saver.set(errors.New("disk full"))
	m.CheckAll(context.Background())

	rep, _ := rec.get("persist")
	if rep.healthy {
		t.Error("Expected persist reported unhealthy")
	}
	if rep.message != "last save failed: disk full" {
		t.Errorf("Unexpected message: %s", rep.message)
	}
	if rep, _ := rec.get("storage"); !rep.healthy {
		t.Error("Storage should stay healthy")
	}

	status, ok := m.Status("persist")
	if !ok || status.Healthy {
		t.Errorf("Expected unhealthy persist status, got %+v", status)
	}
}

func TestMonitor_StartStop(t *testing.T) {
	rec := newRecorder()
	m, err := NewMonitor(Config{Interval: time.Hour, Timeout: time.Second, Retries: 1}, rec.report)
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	m.Add("storage", NewStorageChecker(storage.NewMemoryStore()))

	m.Start()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := rec.get("storage"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for the first check")
		}
		time.Sleep(10 * time.Millisecond)
	}
	m.Stop()
	m.Stop()
}

func TestMonitor_StopWithoutStart(t *testing.T) {
	m, err := NewMonitor(DefaultConfig(), func(string, bool, string) {})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	m.Stop()
}
