/*
Package types defines the core data model shared by every tally package.

# Entities

Subject:
  - ID: opaque, unique, assigned once on creation and never changed
  - Name: display name
  - ClassDays: weekday numbers the class recurs on (0 = Sunday)

Entry:
  - ID: assigned on creation, stable across edits
  - SubjectID: logical reference to a Subject (no structural parent)
  - Date: YYYY-MM-DD string, compared as an opaque key
  - Status: Present, Absent or NoClass

Several entries may exist for the same subject and date (for example two
lecture periods in one day). Entries are told apart by ID only.

Limits:
  - Lower and Upper percentage thresholds in [0,100], Lower < Upper
  - Global to the aggregation view, not tied to a subject

# Persisted Form

Status is persisted as the tri-state isPresent field used by the snapshot
format:

	{"id":"rec1","subjectId":"1","date":"2025-11-01","isPresent":true}
	{"id":"rec2","subjectId":"1","date":"2025-11-02","isPresent":false}
	{"id":"rec9","subjectId":"1","date":"2025-11-03","isPresent":null}

A record without isPresent decodes as NoClass.

# Dates

YYYY-MM-DD sorts lexicographically in chronological order. Packages rely on
plain string comparison for ordering dates; use ParseDate only when the
weekday or validity of the date matters.
*/
package types
