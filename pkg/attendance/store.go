package attendance

import (
	"sort"

	"github.com/cuemby/tally/pkg/types"
	"github.com/google/uuid"
)

// IDFunc generates entry identifiers
type IDFunc func() string

// Store holds attendance entries in insertion order
type Store struct {
	entries []types.Entry
	newID   IDFunc
}

// NewStore creates an empty attendance store
func NewStore() *Store {
	return &Store{newID: newEntryID}
}

// NewStoreWithIDs creates an empty store using idFn for new entry ids
func NewStoreWithIDs(idFn IDFunc) *Store {
	return &Store{newID: idFn}
}

func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Upsert records attendance for a subject on a date.
//
// When entryID names an existing entry only its status changes. Otherwise a
// new entry is appended, even if the date already has entries. The returned
// bool is true when an entry was created.
func (s *Store) Upsert(subjectID, date string, status types.Status, entryID string) (types.Entry, bool) {
	if entryID != "" {
		if i := s.indexOf(entryID); i >= 0 {
			s.entries[i].Status = status
			return s.entries[i], false
		}
	}

	entry := types.Entry{
		ID:        s.newID(),
		SubjectID: subjectID,
		Date:      date,
		Status:    status,
	}
	s.entries = append(s.entries, entry)
	return entry, true
}

// ResetDate removes every entry for the subject on the date and returns the
// removed entries
func (s *Store) ResetDate(subjectID, date string) []types.Entry {
	return s.removeWhere(func(e types.Entry) bool {
		return e.SubjectID == subjectID && e.Date == date
	})
}

// PurgeSubject removes all entries of a subject and returns how many were removed
func (s *Store) PurgeSubject(subjectID string) int {
	return len(s.removeWhere(func(e types.Entry) bool {
		return e.SubjectID == subjectID
	}))
}

// EntriesFor returns the subject's entries in insertion order
func (s *Store) EntriesFor(subjectID string) []types.Entry {
	var out []types.Entry
	for _, e := range s.entries {
		if e.SubjectID == subjectID {
			out = append(out, e)
		}
	}
	return out
}

// EntriesOn returns the subject's entries on an exact date
func (s *Store) EntriesOn(subjectID, date string) []types.Entry {
	var out []types.Entry
	for _, e := range s.EntriesFor(subjectID) {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}

// Dates returns the distinct dates the subject has entries on, ascending
func (s *Store) Dates(subjectID string) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, e := range s.EntriesFor(subjectID) {
		if !seen[e.Date] {
			seen[e.Date] = true
			dates = append(dates, e.Date)
		}
	}
	sort.Strings(dates)
	return dates
}

// Get returns the entry with the given id
func (s *Store) Get(id string) (types.Entry, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.entries[i], true
	}
	return types.Entry{}, false
}

// All returns a copy of every entry
func (s *Store) All() []types.Entry {
	out := make([]types.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries
func (s *Store) Len() int {
	return len(s.entries)
}

// Replace swaps the store contents for entries
func (s *Store) Replace(entries []types.Entry) {
	s.entries = make([]types.Entry, len(entries))
	copy(s.entries, entries)
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeWhere(match func(types.Entry) bool) []types.Entry {
	var removed []types.Entry
	kept := s.entries[:0]
	for _, e := range s.entries {
		if match(e) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	// Clear the tail so removed entries are not retained by the backing array
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = types.Entry{}
	}
	s.entries = kept
	return removed
}
