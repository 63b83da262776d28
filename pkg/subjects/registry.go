// Package subjects holds the registry of tracked subjects.
package subjects

import (
	"github.com/cuemby/tally/pkg/types"
	"github.com/google/uuid"
)

// Purger removes the attendance entries of a subject
type Purger interface {
	PurgeSubject(subjectID string) int
}

// Registry holds the set of subjects in insertion order
type Registry struct {
	subjects []types.Subject
	purger   Purger
}

// NewRegistry creates an empty registry. Removing a subject cascades to purger.
func NewRegistry(purger Purger) *Registry {
	return &Registry{purger: purger}
}

// NewID returns a fresh time-ordered subject id
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Add appends a subject, assigning an id when it has none
func (r *Registry) Add(subject types.Subject) types.Subject {
	subject = subject.Clone()
	if subject.ID == "" {
		subject.ID = NewID()
	}
	r.subjects = append(r.subjects, subject)
	return subject.Clone()
}

// Update replaces the subject with the same id. It returns false when no
// subject has that id.
func (r *Registry) Update(subject types.Subject) bool {
	i := r.indexOf(subject.ID)
	if i < 0 {
		return false
	}
	r.subjects[i] = subject.Clone()
	return true
}

// Remove deletes the subject and purges its attendance entries. It returns
// whether the subject existed and how many entries were purged.
func (r *Registry) Remove(id string) (bool, int) {
	found := false
	if i := r.indexOf(id); i >= 0 {
		r.subjects = append(r.subjects[:i], r.subjects[i+1:]...)
		found = true
	}

	// Purge even when the subject is unknown so no entry can dangle
	purged := 0
	if r.purger != nil {
		purged = r.purger.PurgeSubject(id)
	}
	return found, purged
}

// Get returns the subject with the given id
func (r *Registry) Get(id string) (types.Subject, bool) {
	if i := r.indexOf(id); i >= 0 {
		return r.subjects[i].Clone(), true
	}
	return types.Subject{}, false
}

// FindByName returns the first subject with exactly the given name
func (r *Registry) FindByName(name string) (types.Subject, bool) {
	for _, s := range r.subjects {
		if s.Name == name {
			return s.Clone(), true
		}
	}
	return types.Subject{}, false
}

// List returns copies of all subjects in insertion order
func (r *Registry) List() []types.Subject {
	out := make([]types.Subject, len(r.subjects))
	for i, s := range r.subjects {
		out[i] = s.Clone()
	}
	return out
}

// ScheduledOn returns the subjects that have class on weekday (0 = Sunday)
func (r *Registry) ScheduledOn(weekday int) []types.Subject {
	var out []types.Subject
	for _, s := range r.subjects {
		if s.HasClassOn(weekday) {
			out = append(out, s.Clone())
		}
	}
	return out
}

// Len returns the number of subjects
func (r *Registry) Len() int {
	return len(r.subjects)
}

// Replace swaps the registry contents for subjects
func (r *Registry) Replace(subjects []types.Subject) {
	r.subjects = make([]types.Subject, len(subjects))
	for i, s := range subjects {
		r.subjects[i] = s.Clone()
	}
}

func (r *Registry) indexOf(id string) int {
	for i, s := range r.subjects {
		if s.ID == id {
			return i
		}
	}
	return -1
}
