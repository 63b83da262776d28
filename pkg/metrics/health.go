package metrics

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Process states reported by /health and /ready
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
)

// Component names reported by tally serve
const (
	ComponentStorage = "storage"
	ComponentTracker = "tracker"
	ComponentPersist = "persist"
)

// ComponentHealthy mirrors the component registry as a gauge (1 healthy, 0 not)
var ComponentHealthy = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "tally_component_healthy",
		Help: "Whether a component last reported healthy",
	},
	[]string{"component"},
)

func init() {
	prometheus.MustRegister(ComponentHealthy)
}

// HealthStatus is the JSON body of /health and /ready
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
	Message    string            `json:"message,omitempty"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
}

type componentState struct {
	healthy bool
	message string
	updated time.Time
}

// registry holds the last reported state of each component. An unhealthy
// critical component fails the process; any other one degrades it.
type registry struct {
	mu         sync.RWMutex
	components map[string]componentState
	critical   map[string]bool
	started    time.Time
	version    string
}

var components = newRegistry(ComponentStorage, ComponentTracker)

func newRegistry(critical ...string) *registry {
	r := &registry{
		components: make(map[string]componentState),
		critical:   make(map[string]bool, len(critical)),
		started:    time.Now(),
	}
	for _, name := range critical {
		r.critical[name] = true
	}
	return r
}

// SetVersion sets the version string for health responses
func SetVersion(version string) {
	components.mu.Lock()
	components.version = version
	components.mu.Unlock()
}

// RegisterComponent records the current state of a component
func RegisterComponent(name string, healthy bool, message string) {
	components.set(name, healthy, message)
}

// UpdateComponent is RegisterComponent under the name the health monitor
// reports through.
func UpdateComponent(name string, healthy bool, message string) {
	components.set(name, healthy, message)
}

func (r *registry) set(name string, healthy bool, message string) {
	r.mu.Lock()
	r.components[name] = componentState{healthy: healthy, message: message, updated: time.Now()}
	r.mu.Unlock()

	value := 0.0
	if healthy {
		value = 1
	}
	ComponentHealthy.WithLabelValues(name).Set(value)
}

func (r *registry) base(status string) HealthStatus {
	return HealthStatus{
		Status:     status,
		Timestamp:  time.Now(),
		Components: make(map[string]string),
		Version:    r.version,
		Uptime:     time.Since(r.started).Round(time.Second).String(),
	}
}

// GetHealth returns the overall process health
func GetHealth() HealthStatus {
	components.mu.RLock()
	defer components.mu.RUnlock()

	h := components.base(StatusHealthy)
	for name, c := range components.components {
		if c.healthy {
			h.Components[name] = StatusHealthy
			continue
		}
		h.Components[name] = "unhealthy: " + c.message
		switch {
		case components.critical[name]:
			h.Status = StatusUnhealthy
		case h.Status == StatusHealthy:
			h.Status = StatusDegraded
		}
	}
	return h
}

// GetReadiness reports ready once every critical component has registered
// healthy.
func GetReadiness() HealthStatus {
	components.mu.RLock()
	defer components.mu.RUnlock()

	names := make([]string, 0, len(components.critical))
	for name := range components.critical {
		names = append(names, name)
	}
	sort.Strings(names)

	h := components.base(StatusReady)
	for _, name := range names {
		c, ok := components.components[name]
		switch {
		case !ok:
			h.Components[name] = "not registered"
		case !c.healthy:
			h.Components[name] = "not ready: " + c.message
		default:
			h.Components[name] = StatusReady
			continue
		}
		if h.Status == StatusReady {
			h.Status = StatusNotReady
			h.Message = "waiting for " + name
		}
	}
	return h
}

// HealthHandler serves GetHealth; only unhealthy answers 503
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := GetHealth()
		writeStatus(w, h, h.Status != StatusUnhealthy)
	}
}

// ReadyHandler serves GetReadiness
func ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := GetReadiness()
		writeStatus(w, h, h.Status == StatusReady)
	}
}

// LivenessHandler answers 200 while the process runs
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components.mu.RLock()
		h := components.base("alive")
		components.mu.RUnlock()
		h.Components = nil
		writeStatus(w, h, true)
	}
}

func writeStatus(w http.ResponseWriter, h HealthStatus, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	if ok {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(h)
}
