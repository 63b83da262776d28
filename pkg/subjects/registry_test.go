package subjects

import (
	"testing"

	"github.com/cuemby/tally/pkg/attendance"
	"github.com/cuemby/tally/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() (*Registry, *attendance.Store) {
	store := attendance.NewStore()
	reg := NewRegistry(store)
	reg.Replace([]types.Subject{
		{ID: "1", Name: "Mathematics", ClassDays: []int{1, 3, 5}},
		{ID: "2", Name: "Physics", ClassDays: []int{2, 4}},
	})
	return reg, store
}

func TestAdd_AssignsID(t *testing.T) {
	reg, _ := newRegistry()

	added := reg.Add(types.Subject{Name: "Biology", ClassDays: []int{1}})
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, 3, reg.Len())

	got, ok := reg.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Biology", got.Name)
}

func TestAdd_UniqueIDs(t *testing.T) {
	reg := NewRegistry(nil)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := reg.Add(types.Subject{Name: "x", ClassDays: []int{0}})
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
	}
}

func TestAdd_AcceptsUnvalidatedInput(t *testing.T) {
	reg := NewRegistry(nil)

	s := reg.Add(types.Subject{})
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, reg.Len())
}

func TestUpdate(t *testing.T) {
	reg, _ := newRegistry()

	ok := reg.Update(types.Subject{ID: "2", Name: "Applied Physics", ClassDays: []int{2}})
	assert.True(t, ok)

	got, _ := reg.Get("2")
	assert.Equal(t, "Applied Physics", got.Name)
	assert.Equal(t, []int{2}, got.ClassDays)

	list := reg.List()
	assert.Equal(t, "2", list[1].ID, "update keeps position")
}

func TestUpdate_UnknownIsNoop(t *testing.T) {
	reg, _ := newRegistry()
	before := reg.List()

	ok := reg.Update(types.Subject{ID: "99", Name: "Ghost"})
	assert.False(t, ok)
	assert.Equal(t, before, reg.List())
}

func TestRemove_CascadesToEntries(t *testing.T) {
	reg, store := newRegistry()
	for i := 0; i < 7; i++ {
		store.Upsert("1", "2025-11-01", types.StatusPresent, "")
	}
	store.Upsert("2", "2025-11-01", types.StatusAbsent, "")

	found, purged := reg.Remove("1")
	assert.True(t, found)
	assert.Equal(t, 7, purged)
	assert.Empty(t, store.EntriesFor("1"))
	assert.Len(t, store.EntriesFor("2"), 1)

	_, ok := reg.Get("1")
	assert.False(t, ok)
}

func TestRemove_UnknownStillPurges(t *testing.T) {
	reg, store := newRegistry()
	store.Upsert("orphan", "2025-11-01", types.StatusPresent, "")

	found, purged := reg.Remove("orphan")
	assert.False(t, found)
	assert.Equal(t, 1, purged)
	assert.Equal(t, 2, reg.Len())
}

func TestScheduledOn(t *testing.T) {
	reg, _ := newRegistry()

	monday := reg.ScheduledOn(1)
	require.Len(t, monday, 1)
	assert.Equal(t, "Mathematics", monday[0].Name)

	assert.Empty(t, reg.ScheduledOn(0))
}

func TestFindByName(t *testing.T) {
	reg, _ := newRegistry()

	s, ok := reg.FindByName("Physics")
	require.True(t, ok)
	assert.Equal(t, "2", s.ID)

	_, ok = reg.FindByName("physics")
	assert.False(t, ok)
}

func TestListReturnsCopies(t *testing.T) {
	reg, _ := newRegistry()

	list := reg.List()
	list[0].ClassDays[0] = 6

	got, _ := reg.Get("1")
	assert.Equal(t, 1, got.ClassDays[0])
}
