package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuemby/tally/pkg/log"
	"github.com/cuemby/tally/pkg/types"
)

// BatchSetter is implemented by gateways that can write several keys atomically
type BatchSetter interface {
	SetMany(ctx context.Context, values map[string][]byte) error
}

// Snapshot is the complete persisted state
type Snapshot struct {
	Subjects []types.Subject
	Entries  []types.Entry
	Limits   types.Limits
}

// Origin records which parts of a loaded snapshot were substituted
type Origin struct {
	SubjectsSeeded  bool
	EntriesSeeded   bool
	LimitsDefaulted bool
	// Err is the read or decode failure that caused a fallback, if any
	Err error
}

// Encode serializes the snapshot into one JSON value per key
func (s Snapshot) Encode() (map[string][]byte, error) {
	subjects := s.Subjects
	if subjects == nil {
		subjects = []types.Subject{}
	}
	entries := s.Entries
	if entries == nil {
		entries = []types.Entry{}
	}

	subjectsData, err := json.Marshal(subjects)
	if err != nil {
		return nil, fmt.Errorf("failed to encode subjects: %w", err)
	}
	entriesData, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attendance records: %w", err)
	}
	limitsData, err := json.Marshal(s.Limits)
	if err != nil {
		return nil, fmt.Errorf("failed to encode limits: %w", err)
	}

	return map[string][]byte{
		KeySubjects: subjectsData,
		KeyEntries:  entriesData,
		KeyLimits:   limitsData,
	}, nil
}

// Save writes the encoded snapshot through the gateway
func Save(ctx context.Context, gw Gateway, values map[string][]byte) error {
	if bs, ok := gw.(BatchSetter); ok {
		return bs.SetMany(ctx, values)
	}
	for _, key := range []string{KeySubjects, KeyEntries, KeyLimits} {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := gw.Set(ctx, key, value); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the snapshot from the gateway.
//
// Absent subjects or records are replaced by the seed dataset individually.
// Any read or decode failure of either replaces both with the seed. Absent or
// invalid limits fall back to the defaults. Load never fails; what it
// substituted is reported in Origin.
func Load(ctx context.Context, gw Gateway) (Snapshot, Origin) {
	logger := log.WithComponent("storage")
	seed := Seed()

	var snap Snapshot
	var origin Origin

	subjects, entries, err := loadRecords(ctx, gw)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load data, using seed defaults")
		snap.Subjects = seed.Subjects
		snap.Entries = seed.Entries
		origin.SubjectsSeeded = true
		origin.EntriesSeeded = true
		origin.Err = err
	} else {
		snap.Subjects = subjects
		snap.Entries = entries
		if subjects == nil {
			snap.Subjects = seed.Subjects
			origin.SubjectsSeeded = true
		}
		if entries == nil {
			snap.Entries = seed.Entries
			origin.EntriesSeeded = true
		}
	}

	limits, err := loadLimits(ctx, gw)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("Failed to load attendance limits, using defaults")
		snap.Limits = types.DefaultLimits()
		origin.LimitsDefaulted = true
		if origin.Err == nil {
			origin.Err = err
		}
	case limits == nil:
		snap.Limits = types.DefaultLimits()
		origin.LimitsDefaulted = true
	default:
		snap.Limits = *limits
	}

	logger.Debug().
		Int("subjects", len(snap.Subjects)).
		Int("entries", len(snap.Entries)).
		Bool("subjects_seeded", origin.SubjectsSeeded).
		Bool("entries_seeded", origin.EntriesSeeded).
		Msg("Snapshot loaded")

	return snap, origin
}

// loadRecords returns nil slices for absent keys
func loadRecords(ctx context.Context, gw Gateway) ([]types.Subject, []types.Entry, error) {
	subjectsData, err := gw.Get(ctx, KeySubjects)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read subjects: %w", err)
	}
	entriesData, err := gw.Get(ctx, KeyEntries)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read attendance records: %w", err)
	}

	var subjects []types.Subject
	if subjectsData != nil {
		subjects = []types.Subject{}
		if err := json.Unmarshal(subjectsData, &subjects); err != nil {
			return nil, nil, fmt.Errorf("failed to decode subjects: %w", err)
		}
	}

	var entries []types.Entry
	if entriesData != nil {
		entries = []types.Entry{}
		if err := json.Unmarshal(entriesData, &entries); err != nil {
			return nil, nil, fmt.Errorf("failed to decode attendance records: %w", err)
		}
	}

	return subjects, entries, nil
}

func loadLimits(ctx context.Context, gw Gateway) (*types.Limits, error) {
	data, err := gw.Get(ctx, KeyLimits)
	if err != nil {
		return nil, fmt.Errorf("failed to read limits: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var limits types.Limits
	if err := json.Unmarshal(data, &limits); err != nil {
		return nil, fmt.Errorf("failed to decode limits: %w", err)
	}
	if !limits.Valid() {
		return nil, fmt.Errorf("stored limits out of range: lower=%d upper=%d", limits.Lower, limits.Upper)
	}
	return &limits, nil
}
