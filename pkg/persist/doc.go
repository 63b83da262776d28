/*
Package persist serializes snapshot writes.

Every mutation of the tracker enqueues a full snapshot. The Queue encodes it
immediately, so later mutations cannot change what gets written, and hands it
to a single writer goroutine:

	Enqueue(s1) ─┐
	Enqueue(s2) ─┼──► pending (latest only) ──► writer ──► Gateway
	Enqueue(s3) ─┘

Writes never overlap and never run out of order. While one write is in flight,
newer snapshots replace each other in the pending slot, so a burst of
mutations costs at most two writes and the final state is always the one left
on disk.

A failed write is logged, counted and kept as LastError. It is not retried:
the in-memory state stays authoritative and the next mutation enqueues a new
snapshot anyway. Enqueue never blocks on I/O. Flush waits for everything
enqueued so far and reports the last write error.
*/
package persist
