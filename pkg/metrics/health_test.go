package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func resetHealth() {
	components = newRegistry(ComponentStorage, ComponentTracker)
}

func TestRegisterComponent(t *testing.T) {
	resetHealth()

	RegisterComponent(ComponentStorage, true, "bolt")

	comp, ok := components.components[ComponentStorage]
	if !ok {
		t.Fatal("component not registered")
	}
	if !comp.healthy {
		t.Error("component should be healthy")
	}
	if comp.message != "bolt" {
		t.Errorf("expected message 'bolt', got '%s'", comp.message)
	}
	if got := testutil.ToFloat64(ComponentHealthy.WithLabelValues(ComponentStorage)); got != 1 {
		t.Errorf("expected gauge 1, got %v", got)
	}
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]bool
		want       string
	}{
		{
			name:       "all healthy",
			components: map[string]bool{ComponentStorage: true, ComponentTracker: true, ComponentPersist: true},
			want:       "healthy",
		},
		{
			name:       "persist failing degrades",
			components: map[string]bool{ComponentStorage: true, ComponentTracker: true, ComponentPersist: false},
			want:       "degraded",
		},
		{
			name:       "storage failing is unhealthy",
			components: map[string]bool{ComponentStorage: false, ComponentTracker: true, ComponentPersist: false},
			want:       "unhealthy",
		},
		{
			name:       "nothing registered",
			components: map[string]bool{},
			want:       "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth()
			for name, healthy := range tt.components {
				RegisterComponent(name, healthy, "")
			}

			if got := GetHealth().Status; got != tt.want {
				t.Errorf("GetHealth().Status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGetReadiness(t *testing.T) {
	resetHealth()
	RegisterComponent(ComponentStorage, true, "")

	readiness := GetReadiness()
	if readiness.Status != StatusNotReady {
		t.Errorf("expected not_ready before tracker loads, got %s", readiness.Status)
	}
	if readiness.Message != "waiting for tracker" {
		t.Errorf("unexpected message: %q", readiness.Message)
	}
	if readiness.Components[ComponentTracker] != "not registered" {
		t.Errorf("unexpected tracker status: %s", readiness.Components[ComponentTracker])
	}

	RegisterComponent(ComponentTracker, true, "loaded")
	if got := GetReadiness().Status; got != "ready" {
		t.Errorf("expected ready, got %s", got)
	}

	// Persist is not critical for readiness
	RegisterComponent(ComponentPersist, false, "disk full")
	if got := GetReadiness().Status; got != "ready" {
		t.Errorf("expected ready with failing persist, got %s", got)
	}
}

func TestHealthHandler(t *testing.T) {
	resetHealth()
	SetVersion("test")
	RegisterComponent(ComponentPersist, false, "disk full")

	w := httptest.NewRecorder()
	HealthHandler()(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("degraded should still answer 200, got %d", w.Code)
	}

	var health HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if health.Status != "degraded" {
		t.Errorf("expected degraded, got %s", health.Status)
	}
	if health.Components[ComponentPersist] != "unhealthy: disk full" {
		t.Errorf("unexpected persist status: %s", health.Components[ComponentPersist])
	}
	if health.Version != "test" {
		t.Errorf("expected version 'test', got %s", health.Version)
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	resetHealth()
	RegisterComponent(ComponentStorage, false, "locked")

	w := httptest.NewRecorder()
	HealthHandler()(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestReadyHandler_NotReady(t *testing.T) {
	resetHealth()

	w := httptest.NewRecorder()
	ReadyHandler()(w, httptest.NewRequest("GET", "/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	resetHealth()

	w := httptest.NewRecorder()
	LivenessHandler()(w, httptest.NewRequest("GET", "/live", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "alive" {
		t.Errorf("expected status 'alive', got '%s'", response["status"])
	}
}

func TestUpdateComponent(t *testing.T) {
	resetHealth()

	RegisterComponent(ComponentPersist, true, "ok")
	UpdateComponent(ComponentPersist, false, "error")

	comp := components.components[ComponentPersist]
	if comp.healthy {
		t.Error("component should be unhealthy after update")
	}
	if comp.message != "error" {
		t.Errorf("expected message 'error', got '%s'", comp.message)
	}
	if got := testutil.ToFloat64(ComponentHealthy.WithLabelValues(ComponentPersist)); got != 0 {
		t.Errorf("expected gauge 0, got %v", got)
	}
}
