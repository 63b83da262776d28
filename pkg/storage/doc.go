/*
Package storage persists tally snapshots through a key-value gateway.

The core never talks to a database directly. It serializes its state into
three JSON blobs and hands them to a Gateway, which only has to support
get and set by key. Three gateways are provided: BoltDB (the default),
SQLite, and an in-memory store for tests and throwaway sessions.

# Architecture

	┌──────────────────── SNAPSHOT STORAGE ─────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐           │
	│  │               Snapshot                      │           │
	│  │  - Subjects  → key "subjects"               │           │
	│  │  - Entries   → key "attendanceRecords"      │           │
	│  │  - Limits    → key "attendanceLimits"       │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │ Encode / Load                        │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │               Gateway                       │           │
	│  │  Get(ctx, key) → bytes | nil                │           │
	│  │  Set(ctx, key, bytes)                       │           │
	│  │  SetMany (optional, one transaction)        │           │
	│  └──────┬──────────────┬──────────────┬───────┘           │
	│         │              │              │                    │
	│  ┌──────▼─────┐ ┌──────▼──────┐ ┌─────▼───────┐           │
	│  │ BoltStore  │ │ SQLiteStore │ │ MemoryStore │           │
	│  │ tally.db   │ │ tally.sqlite│ │ (process)   │           │
	│  │ bucket     │ │ table kv    │ │             │           │
	│  │ snapshots  │ │             │ │             │           │
	│  └────────────┘ └─────────────┘ └─────────────┘           │
	└────────────────────────────────────────────────────────────┘

# Loading

Load is best effort and never returns an error:

  - A missing subjects or attendanceRecords key is replaced by the seed
    dataset for that key only
  - A read or decode failure on either replaces both with the seed
  - Missing, unreadable or out-of-range limits fall back to {65, 75}

The seed is a first-run dataset (four subjects, five entries), not an
error-recovery path. Origin reports what was substituted.

# Saving

Save writes every key of an encoded snapshot. Gateways implementing
BatchSetter write all three keys in one transaction, so a reader never sees
subjects from one mutation and entries from another.

# Usage

	gw, err := storage.Open(storage.BackendBolt, "/home/me/.tally")
	if err != nil {
		return err
	}
	defer gw.Close()

	snap, origin := storage.Load(ctx, gw)
	if origin.SubjectsSeeded {
		fmt.Println("first run")
	}

	values, err := snap.Encode()
	if err != nil {
		return err
	}
	err = storage.Save(ctx, gw, values)

# Wire Format

Values are JSON arrays and objects compatible with earlier versions of the
app:

	subjects:           [{"id":"1","name":"Mathematics","classDays":[1,3,5]}]
	attendanceRecords:  [{"id":"rec1","subjectId":"1","date":"2025-11-01","isPresent":true}]
	attendanceLimits:   {"lower":65,"upper":75}

# File Permissions

Data directories are created 0700 and database files 0600.
*/
package storage
