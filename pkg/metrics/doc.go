/*
Package metrics provides Prometheus metrics and health endpoints for tally.

All metrics are package-level collectors registered with the default registry
in init. They are served by Handler on the `tally serve` command.

# Metrics

State (refreshed by Collector):

	tally_subjects_total                      gauge
	tally_entries_total{status}               gauge   present | absent | no-class
	tally_subject_attendance_percent{subject} gauge
	tally_subjects_by_severity{severity}      gauge   good | warning | critical
	tally_overall_attendance_percent          gauge

Tracker:

	tally_mutations_total{operation}            counter
	tally_validation_failures_total{operation}  counter
	tally_loads_total{source}                   counter stored | seed | fallback

Persistence:

	tally_saves_total{result}        counter  ok | error
	tally_saves_coalesced_total      counter
	tally_save_duration_seconds      histogram

Events:

	tally_events_dropped  gauge

Health:

	tally_component_healthy{component}  gauge  1 | 0

# Collector

The Collector subscribes to the event broker and recomputes every state gauge
from a fresh snapshot after each event. Per-subject series are reset on every
pass so removed subjects disappear.

	collector := metrics.NewCollector(tracker, broker)
	collector.Start()
	defer collector.Stop()

# Timer

	timer := metrics.NewTimer()
	err := storage.Save(ctx, gw, values)
	timer.ObserveDuration(metrics.SaveDuration)

# Health

Components report their state with RegisterComponent / UpdateComponent.
storage and tracker are critical: if either is unhealthy /health answers 503
and /ready stays not_ready. Any other unhealthy component (persist, after a
failed write) only marks the process degraded.

	/health  overall status and per-component detail
	/ready   200 once storage is open and the tracker has loaded
	/live    200 while the process runs
*/
package metrics
