// Package attendance holds attendance entries and implements the upsert,
// reset and lookup operations over them.
//
// Upsert has two modes. Given the id of an existing entry it changes that
// entry's status and nothing else. Without an id, or with an id that does not
// resolve, it appends a new entry, so two lecture periods on the same day are
// recorded as two entries rather than one overwriting the other.
//
// The store has no knowledge of subjects beyond their ids. Referential
// integrity is kept by the subject registry calling PurgeSubject on removal.
package attendance
