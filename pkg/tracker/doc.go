/*
Package tracker owns the subject registry, the attendance store and the
limits, and is the only way to change them.

Every mutation is validated first. A rejected mutation returns a
*ValidationError and leaves state untouched. An accepted one is committed:
the mutation counter is bumped, a full snapshot is handed to the save queue
and a change event is published.

	t := tracker.New(tracker.Options{Gateway: gw, Queue: queue, Broker: broker})
	if _, err := t.Load(ctx); err != nil {
		return err
	}
	subject, err := t.AddSubject("Biology", []int{1, 3})
	entry, created, err := t.Mark(subject.ID, "2025-11-03", types.StatusPresent, "")

Load must finish before any mutation; until then mutations return
ErrNotLoaded. Reads are recomputed from current state on every call.
*/
package tracker
