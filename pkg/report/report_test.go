package report

import (
	"bytes"
	"os"
	"testing"

	"github.com/cuemby/tally/pkg/aggregate"
	"github.com/cuemby/tally/pkg/storage"
	"github.com/cuemby/tally/pkg/tracker"
	"github.com/cuemby/tally/pkg/types"
	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Golden files hold plain text
	color.NoColor = true
	os.Exit(m.Run())
}

func assertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}

func seedOverview() ([]aggregate.Summary, aggregate.Summary, types.Limits) {
	seed := storage.Seed()
	summaries := aggregate.Summarize(seed.Subjects, seed.Entries, seed.Limits)
	return summaries, aggregate.Overall(summaries, seed.Limits), seed.Limits
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestOverview(t *testing.T) {
	summaries, overall, limits := seedOverview()

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, FormatText).Overview(summaries, overall, limits))
		assertGolden(t, "overview_text", buf.Bytes())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, FormatJSON).Overview(summaries, overall, limits))
		assertGolden(t, "overview_json", buf.Bytes())
	})
}

func TestOverview_Empty(t *testing.T) {
	var buf bytes.Buffer
	overall := aggregate.Overall(nil, types.DefaultLimits())
	require.NoError(t, New(&buf, FormatText).Overview(nil, overall, types.DefaultLimits()))
	assert.Contains(t, buf.String(), "No subjects yet")

	buf.Reset()
	require.NoError(t, New(&buf, FormatJSON).Overview(nil, overall, types.DefaultLimits()))
	assert.Contains(t, buf.String(), `"subjects": []`)
	assert.Contains(t, buf.String(), `"percentage": "0.00"`)
}

func TestSubjects(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Subjects(storage.Seed().Subjects))
	assertGolden(t, "subjects_text", buf.Bytes())

	buf.Reset()
	require.NoError(t, New(&buf, FormatJSON).Subjects(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestEntries(t *testing.T) {
	seed := storage.Seed()
	math := seed.Subjects[0]
	entries := seed.Entries[:2]

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Entries(math, entries))
	assertGolden(t, "entries_text", buf.Bytes())

	buf.Reset()
	require.NoError(t, New(&buf, FormatJSON).Entries(math, entries))
	assert.JSONEq(t, `[
		{"id":"rec1","subjectId":"1","date":"2025-11-01","isPresent":true},
		{"id":"rec2","subjectId":"1","date":"2025-11-02","isPresent":false}
	]`, buf.String())

	buf.Reset()
	require.NoError(t, New(&buf, FormatText).Entries(math, nil))
	assert.Equal(t, "No entries recorded for Mathematics.\n", buf.String())
}

func TestDetail(t *testing.T) {
	seed := storage.Seed()
	math := seed.Subjects[0]
	entries := seed.Entries[:2]
	detail := tracker.Detail{
		Summary: aggregate.SummarizeSubject(math, entries, seed.Limits),
		Days:    aggregate.Days(entries),
		Entries: entries,
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Detail(detail))
	assertGolden(t, "detail_text", buf.Bytes())

	buf.Reset()
	require.NoError(t, New(&buf, FormatJSON).Detail(detail))
	assert.Contains(t, buf.String(), `"mark": "absent"`)
	assert.Contains(t, buf.String(), `"percentage": "50.00"`)
}

func TestToday(t *testing.T) {
	seed := storage.Seed()
	statuses := aggregate.Today(seed.Subjects, seed.Entries, "2025-11-03", 1)

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Today("2025-11-03", 1, statuses))
	assertGolden(t, "today_text", buf.Bytes())

	buf.Reset()
	require.NoError(t, New(&buf, FormatText).Today("2025-11-02", 0, nil))
	assert.Equal(t, "Sunday 2025-11-02\nNo classes scheduled today.\n", buf.String())

	buf.Reset()
	require.NoError(t, New(&buf, FormatJSON).Today("2025-11-02", 0, nil))
	assert.JSONEq(t, `{"date":"2025-11-02","weekday":"Sunday","subjects":[]}`, buf.String())
}

func TestLimits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Limits(types.DefaultLimits()))
	assert.Equal(t, "lower: 65%\nupper: 75%\n", buf.String())

	buf.Reset()
	require.NoError(t, New(&buf, FormatJSON).Limits(types.DefaultLimits()))
	assert.JSONEq(t, `{"lower":65,"upper":75}`, buf.String())
}
