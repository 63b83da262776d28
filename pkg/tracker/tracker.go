package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cuemby/tally/pkg/aggregate"
	"github.com/cuemby/tally/pkg/attendance"
	"github.com/cuemby/tally/pkg/events"
	"github.com/cuemby/tally/pkg/log"
	"github.com/cuemby/tally/pkg/metrics"
	"github.com/cuemby/tally/pkg/persist"
	"github.com/cuemby/tally/pkg/storage"
	"github.com/cuemby/tally/pkg/subjects"
	"github.com/cuemby/tally/pkg/types"
	"github.com/rs/zerolog"
)

// ErrNotLoaded is returned by mutations issued before Load
var ErrNotLoaded = errors.New("tracker state not loaded")

// Options configures a Tracker
type Options struct {
	// Gateway is read once by Load and closed by Close
	Gateway storage.Gateway
	// Queue receives a snapshot after every mutation. Optional.
	Queue *persist.Queue
	// Broker receives change events. Optional.
	Broker *events.Broker
	// Clock defaults to time.Now
	Clock func() time.Time
	// NewEntryID overrides entry id generation, mainly for tests
	NewEntryID attendance.IDFunc
}

// Tracker owns subjects, attendance entries and limits. Every mutation goes
// through it, is validated, and is followed by a snapshot save and an event.
type Tracker struct {
	mu       sync.Mutex
	subjects *subjects.Registry
	entries  *attendance.Store
	limits   types.Limits
	loaded   bool
	origin   storage.Origin

	gw     storage.Gateway
	queue  *persist.Queue
	broker *events.Broker
	clock  func() time.Time
	logger zerolog.Logger
}

// Detail is the summary of one subject plus its per-date rollups
type Detail struct {
	Summary aggregate.Summary     `json:"summary"`
	Days    []aggregate.DayRollup `json:"days"`
	Entries []types.Entry         `json:"entries"`
}

// New creates a tracker. Call Load before mutating it.
func New(opts Options) *Tracker {
	entries := attendance.NewStore()
	if opts.NewEntryID != nil {
		entries = attendance.NewStoreWithIDs(opts.NewEntryID)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Tracker{
		subjects: subjects.NewRegistry(entries),
		entries:  entries,
		limits:   types.DefaultLimits(),
		gw:       opts.Gateway,
		queue:    opts.Queue,
		broker:   opts.Broker,
		clock:    clock,
		logger:   log.WithComponent("tracker"),
	}
}

// Load reads the persisted snapshot, falling back to seed data for whatever
// is missing or unreadable. The resulting state is saved back immediately.
func (t *Tracker) Load(ctx context.Context) (storage.Origin, error) {
	if t.gw == nil {
		return storage.Origin{}, errors.New("tracker has no storage gateway")
	}

	snap, origin := storage.Load(ctx, t.gw)

	t.mu.Lock()
	t.subjects.Replace(snap.Subjects)
	t.entries.Replace(snap.Entries)
	t.limits = snap.Limits
	t.origin = origin
	t.loaded = true
	t.mu.Unlock()

	source := "stored"
	switch {
	case origin.Err != nil:
		source = "fallback"
	case origin.SubjectsSeeded && origin.EntriesSeeded:
		source = "seed"
	}
	metrics.LoadsTotal.WithLabelValues(source).Inc()

	t.logger.Info().
		Str("source", source).
		Int("subjects", len(snap.Subjects)).
		Int("entries", len(snap.Entries)).
		Msg("Tracker state loaded")

	t.mu.Lock()
	t.saveLocked()
	t.mu.Unlock()
	t.publish(&events.Event{Type: events.EventStateLoaded, Metadata: map[string]string{"source": source}})

	return origin, nil
}

// Loaded reports whether Load has completed
func (t *Tracker) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// Origin reports which parts of the state came from seed data
func (t *Tracker) Origin() storage.Origin {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.origin
}

// Close flushes pending saves, stops the broker and closes the gateway
func (t *Tracker) Close(ctx context.Context) error {
	var errs []error
	if t.queue != nil {
		if err := t.queue.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush save queue: %w", err))
		}
		t.queue.Stop()
	}
	if t.broker != nil {
		t.broker.Stop()
	}
	if t.gw != nil {
		if err := t.gw.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

// AddSubject creates a subject. Days are deduplicated and sorted.
func (t *Tracker) AddSubject(name string, days []int) (types.Subject, error) {
	subject := types.Subject{Name: strings.TrimSpace(name), ClassDays: normalizeDays(days)}
	if err := check("invalid subject", subject); err != nil {
		metrics.ValidationFailures.WithLabelValues("add_subject").Inc()
		return types.Subject{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return types.Subject{}, ErrNotLoaded
	}

	added := t.subjects.Add(subject)
	t.logger.Info().Str("subject_id", added.ID).Str("name", added.Name).Msg("Subject added")
	t.commit("add_subject", &events.Event{Type: events.EventSubjectAdded, SubjectID: added.ID})
	return added, nil
}

// UpdateSubject replaces the name and class days of a subject. It returns
// false, and changes nothing, when id is unknown.
func (t *Tracker) UpdateSubject(id, name string, days []int) (types.Subject, bool, error) {
	subject := types.Subject{ID: id, Name: strings.TrimSpace(name), ClassDays: normalizeDays(days)}
	if err := check("invalid subject", subject); err != nil {
		metrics.ValidationFailures.WithLabelValues("update_subject").Inc()
		return types.Subject{}, false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return types.Subject{}, false, ErrNotLoaded
	}

	if !t.subjects.Update(subject) {
		return types.Subject{}, false, nil
	}
	t.logger.Info().Str("subject_id", id).Msg("Subject updated")
	t.commit("update_subject", &events.Event{Type: events.EventSubjectUpdated, SubjectID: id})
	return subject, true, nil
}

// RemoveSubject deletes a subject and every attendance entry that references
// it. Entries are purged even when the subject itself is already gone.
func (t *Tracker) RemoveSubject(id string) (bool, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return false, 0, ErrNotLoaded
	}

	found, purged := t.subjects.Remove(id)
	if !found && purged == 0 {
		return false, 0, nil
	}

	logger := log.WithSubjectID(id)
	logger.Info().Int("purged", purged).Msg("Subject removed")
	t.commit("remove_subject", &events.Event{
		Type:      events.EventSubjectRemoved,
		SubjectID: id,
		Metadata:  map[string]string{"purged": strconv.Itoa(purged)},
	})
	return found, purged, nil
}

type markInput struct {
	SubjectID string       `json:"subjectId" validate:"notblank"`
	Date      string       `json:"date" validate:"required,datetime=2006-01-02"`
	Status    types.Status `json:"isPresent" validate:"oneof=present absent no-class"`
}

// Mark records a status. When entryID names an existing entry only its
// status changes; otherwise a new entry is appended and created is true.
func (t *Tracker) Mark(subjectID, date string, status types.Status, entryID string) (types.Entry, bool, error) {
	in := markInput{SubjectID: subjectID, Date: date, Status: status}
	if err := check("invalid attendance", in); err != nil {
		metrics.ValidationFailures.WithLabelValues("mark").Inc()
		return types.Entry{}, false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return types.Entry{}, false, ErrNotLoaded
	}

	if _, ok := t.subjects.Get(subjectID); !ok {
		metrics.ValidationFailures.WithLabelValues("mark").Inc()
		return types.Entry{}, false, newValidationError("invalid attendance",
			FieldError{Field: "subjectId", Error: "unknown subject"})
	}

	entry, created := t.entries.Upsert(subjectID, date, status, entryID)
	logger := log.WithSubjectID(subjectID)
	logger.Debug().
		Str("entry_id", entry.ID).
		Str("date", entry.Date).
		Str("status", entry.Status.String()).
		Bool("created", created).
		Msg("Attendance marked")
	t.commit("mark", &events.Event{
		Type:      events.EventEntryUpserted,
		SubjectID: entry.SubjectID,
		EntryID:   entry.ID,
		Date:      entry.Date,
		Metadata:  map[string]string{"status": entry.Status.String()},
	})
	return entry, created, nil
}

type dateInput struct {
	SubjectID string `json:"subjectId" validate:"notblank"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ResetDate removes every entry of a subject on date and returns them
func (t *Tracker) ResetDate(subjectID, date string) ([]types.Entry, error) {
	if err := check("invalid reset", dateInput{SubjectID: subjectID, Date: date}); err != nil {
		metrics.ValidationFailures.WithLabelValues("reset").Inc()
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return nil, ErrNotLoaded
	}

	removed := t.entries.ResetDate(subjectID, date)
	if len(removed) == 0 {
		return nil, nil
	}
	t.commit("reset", &events.Event{
		Type:      events.EventEntryReset,
		SubjectID: subjectID,
		Date:      date,
		Metadata:  map[string]string{"removed": strconv.Itoa(len(removed))},
	})
	return removed, nil
}

// SetLimits replaces the severity thresholds. Lower must be below upper.
func (t *Tracker) SetLimits(limits types.Limits) error {
	if err := check("invalid limits", limits); err != nil {
		metrics.ValidationFailures.WithLabelValues("set_limits").Inc()
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return ErrNotLoaded
	}

	t.limits = limits
	t.logger.Info().Int("lower", limits.Lower).Int("upper", limits.Upper).Msg("Limits updated")
	t.commit("set_limits", &events.Event{
		Type: events.EventLimitsUpdated,
		Metadata: map[string]string{
			"lower": strconv.Itoa(limits.Lower),
			"upper": strconv.Itoa(limits.Upper),
		},
	})
	return nil
}

// ParseLimits converts textual thresholds into validated limits
func ParseLimits(lower, upper string) (types.Limits, error) {
	var fields []FieldError
	lo, err := strconv.Atoi(strings.TrimSpace(lower))
	if err != nil {
		fields = append(fields, FieldError{Field: "lower", Error: "must be a whole number"})
	}
	hi, err := strconv.Atoi(strings.TrimSpace(upper))
	if err != nil {
		fields = append(fields, FieldError{Field: "upper", Error: "must be a whole number"})
	}
	if len(fields) > 0 {
		return types.Limits{}, newValidationError("invalid limits", fields...)
	}

	limits := types.Limits{Lower: lo, Upper: hi}
	if err := check("invalid limits", limits); err != nil {
		return types.Limits{}, err
	}
	return limits, nil
}

// Subjects returns all subjects in insertion order
func (t *Tracker) Subjects() []types.Subject {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.subjects.List()
}

// Subject returns the subject with the given id
func (t *Tracker) Subject(id string) (types.Subject, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.subjects.Get(id)
}

// FindSubject resolves ref as an id, then as a name (case-insensitive)
func (t *Tracker) FindSubject(ref string) (types.Subject, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.subjects.Get(ref); ok {
		return s, true
	}
	if s, ok := t.subjects.FindByName(ref); ok {
		return s, true
	}
	for _, s := range t.subjects.List() {
		if strings.EqualFold(s.Name, ref) {
			return s, true
		}
	}
	return types.Subject{}, false
}

// Entries returns the entries of a subject in insertion order
func (t *Tracker) Entries(subjectID string) []types.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries.EntriesFor(subjectID)
}

// EntriesOn returns the entries of a subject on one date
func (t *Tracker) EntriesOn(subjectID, date string) []types.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries.EntriesOn(subjectID, date)
}

// Limits returns the current severity thresholds
func (t *Tracker) Limits() types.Limits {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limits
}

// Overview returns one summary per subject plus the overall rollup
func (t *Tracker) Overview() ([]aggregate.Summary, aggregate.Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	summaries := aggregate.Summarize(t.subjects.List(), t.entries.All(), t.limits)
	return summaries, aggregate.Overall(summaries, t.limits)
}

// SubjectDetail returns the summary and per-date rollups of one subject
func (t *Tracker) SubjectDetail(id string) (Detail, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subject, ok := t.subjects.Get(id)
	if !ok {
		return Detail{}, false
	}
	entries := t.entries.EntriesFor(id)
	return Detail{
		Summary: aggregate.SummarizeSubject(subject, entries, t.limits),
		Days:    aggregate.Days(entries),
		Entries: entries,
	}, true
}

// Today returns the mark of every subject scheduled on the local date of now.
// A zero now uses the tracker clock.
func (t *Tracker) Today(now time.Time) []aggregate.DayStatus {
	if now.IsZero() {
		now = t.clock()
	}
	date := types.FormatDate(now)

	t.mu.Lock()
	defer t.mu.Unlock()
	return aggregate.Today(t.subjects.List(), t.entries.All(), date, int(now.Weekday()))
}

// Now returns the current time from the tracker clock
func (t *Tracker) Now() time.Time {
	return t.clock()
}

// Snapshot returns a copy of the complete state
func (t *Tracker) Snapshot() storage.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() storage.Snapshot {
	return storage.Snapshot{
		Subjects: t.subjects.List(),
		Entries:  t.entries.All(),
		Limits:   t.limits,
	}
}

// commit records a completed mutation. Caller holds t.mu.
func (t *Tracker) commit(operation string, event *events.Event) {
	metrics.MutationsTotal.WithLabelValues(operation).Inc()
	t.saveLocked()
	t.publish(event)
}

func (t *Tracker) saveLocked() {
	if t.queue == nil {
		return
	}
	if err := t.queue.Enqueue(t.snapshotLocked()); err != nil {
		t.logger.Error().Err(err).Msg("Failed to enqueue snapshot")
	}
}

func (t *Tracker) publish(event *events.Event) {
	if t.broker == nil {
		return
	}
	event.Timestamp = t.clock()
	t.broker.Publish(event)
}

func normalizeDays(days []int) []int {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}
