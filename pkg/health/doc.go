/*
Package health probes the parts of tally that can fail at runtime.

A Checker performs one check and returns a Result. A Monitor runs its
checkers on an interval, folds each Result into a Status, and reports the
component as unhealthy only after Config.Retries consecutive failures. One
success makes it healthy again.

# Checkers

  - StorageChecker reads the limits key through the storage gateway
  - PersistChecker reports the error of the most recent snapshot save
  - CheckFunc turns any func(context.Context) error into a Checker

# Usage

"tally serve" wires the monitor into the metrics health registry:

	m, err := health.NewMonitor(health.DefaultConfig(), metrics.UpdateComponent)
	if err != nil {
		return err
	}
	m.Add(metrics.ComponentStorage, health.NewStorageChecker(gw))
	m.Add(metrics.ComponentPersist, health.NewPersistChecker(queue))
	m.Start()
	defer m.Stop()

Storage is a critical component, so a failing read makes /ready return 503.
A failing save only degrades /health; tally keeps accepting reads and the
next mutation retries the write with a fresh snapshot.
*/
package health
