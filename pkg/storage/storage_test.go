package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/cuemby/tally/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openGateways(t *testing.T) map[string]Gateway {
	t.Helper()

	bolt, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })

	sqlite, err := NewSQLiteStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Gateway{
		BackendBolt:   bolt,
		BackendSQLite: sqlite,
		BackendMemory: NewMemoryStore(),
	}
}

func TestGateway_GetSet(t *testing.T) {
	ctx := context.Background()

	for name, gw := range openGateways(t) {
		t.Run(name, func(t *testing.T) {
			value, err := gw.Get(ctx, "missing")
			require.NoError(t, err)
			assert.Nil(t, value)

			require.NoError(t, gw.Set(ctx, "k", []byte("v1")))
			require.NoError(t, gw.Set(ctx, "k", []byte("v2")))

			value, err = gw.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), value)
		})
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	want := Snapshot{
		Subjects: []types.Subject{
			{ID: "a", Name: "Biology", ClassDays: []int{1}},
			{ID: "b", Name: "History", ClassDays: []int{0, 6}},
		},
		Entries: []types.Entry{
			{ID: "e1", SubjectID: "a", Date: "2025-11-03", Status: types.StatusPresent},
			{ID: "e2", SubjectID: "a", Date: "2025-11-03", Status: types.StatusNoClass},
			{ID: "e3", SubjectID: "b", Date: "2025-11-02", Status: types.StatusAbsent},
		},
		Limits: types.Limits{Lower: 50, Upper: 80},
	}

	for name, gw := range openGateways(t) {
		t.Run(name, func(t *testing.T) {
			values, err := want.Encode()
			require.NoError(t, err)
			require.NoError(t, Save(ctx, gw, values))

			got, origin := Load(ctx, gw)
			assert.Equal(t, want, got)
			assert.Equal(t, Origin{}, origin)
		})
	}
}

func TestSnapshot_EmptyListsStayEmpty(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryStore()

	values, err := Snapshot{Limits: types.DefaultLimits()}.Encode()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(values[KeySubjects]))
	require.NoError(t, Save(ctx, gw, values))

	got, origin := Load(ctx, gw)
	assert.False(t, origin.SubjectsSeeded, "an empty persisted list is not a first run")
	assert.Empty(t, got.Subjects)
	assert.Empty(t, got.Entries)
}

func TestLoad_FirstRunUsesSeed(t *testing.T) {
	got, origin := Load(context.Background(), NewMemoryStore())

	assert.Equal(t, Seed(), got)
	assert.True(t, origin.SubjectsSeeded)
	assert.True(t, origin.EntriesSeeded)
	assert.True(t, origin.LimitsDefaulted)
	assert.NoError(t, origin.Err)
}

func TestLoad_PartialFallback(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryStore()
	require.NoError(t, gw.Set(ctx, KeySubjects, []byte(`[{"id":"x","name":"Art","classDays":[3]}]`)))

	got, origin := Load(ctx, gw)
	require.Len(t, got.Subjects, 1)
	assert.Equal(t, "Art", got.Subjects[0].Name)
	assert.False(t, origin.SubjectsSeeded)
	assert.True(t, origin.EntriesSeeded)
	assert.Equal(t, Seed().Entries, got.Entries)
}

func TestLoad_ReadErrorUsesSeed(t *testing.T) {
	gw := NewMemoryStore()
	gw.Fail(errors.New("disk unplugged"), nil)

	got, origin := Load(context.Background(), gw)
	assert.Equal(t, Seed(), got)
	assert.Error(t, origin.Err)
}

func TestLoad_CorruptRecordsUseSeed(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryStore()
	require.NoError(t, gw.Set(ctx, KeySubjects, []byte(`[{"id":"x","name":"Art","classDays":[3]}]`)))
	require.NoError(t, gw.Set(ctx, KeyEntries, []byte(`{not json`)))

	got, origin := Load(ctx, gw)
	assert.Equal(t, Seed().Subjects, got.Subjects)
	assert.Equal(t, Seed().Entries, got.Entries)
	assert.True(t, origin.SubjectsSeeded)
	assert.Error(t, origin.Err)
}

func TestLoad_InvalidLimitsUseDefaults(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryStore()
	require.NoError(t, gw.Set(ctx, KeyLimits, []byte(`{"lower":80,"upper":70}`)))

	got, origin := Load(ctx, gw)
	assert.Equal(t, types.DefaultLimits(), got.Limits)
	assert.True(t, origin.LimitsDefaulted)
}

func TestSeed(t *testing.T) {
	seed := Seed()

	require.Len(t, seed.Subjects, 4)
	assert.Equal(t, "Mathematics", seed.Subjects[0].Name)
	assert.Equal(t, []int{1, 3, 5}, seed.Subjects[0].ClassDays)
	assert.Equal(t, "Computer Science", seed.Subjects[3].Name)
	assert.Equal(t, []int{2, 5}, seed.Subjects[3].ClassDays)

	require.Len(t, seed.Entries, 5)
	subjects := make(map[string]bool)
	for _, e := range seed.Entries {
		subjects[e.SubjectID] = true
		assert.Contains(t, []string{"2025-11-01", "2025-11-02"}, e.Date)
	}
	assert.Len(t, subjects, 4)
	assert.Equal(t, types.Limits{Lower: 65, Upper: 75}, seed.Limits)
}

func TestOpen(t *testing.T) {
	gw, err := Open(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, gw)

	gw, err = Open("", t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, gw)
	gw.Close()

	_, err = Open("redis", t.TempDir())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestBoltStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeyLimits, []byte(`{"lower":10,"upper":20}`)))
	require.NoError(t, store.Close())

	store, err = NewBoltStore(dir)
	require.NoError(t, err)
	defer store.Close()

	value, err := store.Get(ctx, KeyLimits)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lower":10,"upper":20}`, string(value))
}

func TestBoltStore_CanceledContext(t *testing.T) {
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Set(ctx, "k", []byte("v")), context.Canceled)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
