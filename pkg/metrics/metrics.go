package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// State metrics
	SubjectsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tally_subjects_total",
			Help: "Total number of subjects",
		},
	)

	EntriesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tally_entries_total",
			Help: "Total number of attendance entries by status",
		},
		[]string{"status"},
	)

	SubjectAttendance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tally_subject_attendance_percent",
			Help: "Attendance percentage per subject",
		},
		[]string{"subject"},
	)

	SubjectsBySeverity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tally_subjects_by_severity",
			Help: "Number of subjects in each severity bucket",
		},
		[]string{"severity"},
	)

	OverallAttendance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tally_overall_attendance_percent",
			Help: "Attendance percentage across all subjects",
		},
	)

	// Tracker metrics
	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_mutations_total",
			Help: "Total number of accepted mutations by operation",
		},
		[]string{"operation"},
	)

	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_validation_failures_total",
			Help: "Total number of rejected mutations by operation",
		},
		[]string{"operation"},
	)

	LoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_loads_total",
			Help: "Total number of state loads by source (stored, seed, fallback)",
		},
		[]string{"source"},
	)

	// Persistence metrics
	SavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_saves_total",
			Help: "Total number of snapshot writes by result",
		},
		[]string{"result"},
	)

	SavesCoalesced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tally_saves_coalesced_total",
			Help: "Total number of pending snapshots replaced before being written",
		},
	)

	// Event metrics
	EventsDropped = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tally_events_dropped",
			Help: "Events the broker dropped because a queue was full or it had stopped",
		},
	)

	SaveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tally_save_duration_seconds",
			Help:    "Snapshot write duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(SubjectsTotal)
	prometheus.MustRegister(EntriesTotal)
	prometheus.MustRegister(SubjectAttendance)
	prometheus.MustRegister(SubjectsBySeverity)
	prometheus.MustRegister(OverallAttendance)
	prometheus.MustRegister(MutationsTotal)
	prometheus.MustRegister(ValidationFailures)
	prometheus.MustRegister(LoadsTotal)
	prometheus.MustRegister(SavesTotal)
	prometheus.MustRegister(SavesCoalesced)
	prometheus.MustRegister(SaveDuration)
	prometheus.MustRegister(EventsDropped)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
