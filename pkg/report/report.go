// Package report renders tracker state as text tables or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cuemby/tally/pkg/aggregate"
	"github.com/cuemby/tally/pkg/tracker"
	"github.com/cuemby/tally/pkg/types"
	"github.com/fatih/color"
)

// Format selects how reports are rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

var severityColors = map[types.Severity]*color.Color{
	types.SeverityGood:     color.New(color.FgGreen),
	types.SeverityWarning:  color.New(color.FgYellow),
	types.SeverityCritical: color.New(color.FgRed, color.Bold),
}

func severityText(s types.Severity) string {
	if c, ok := severityColors[s]; ok {
		return c.Sprint(string(s))
	}
	return string(s)
}

// Renderer writes reports to w
type Renderer struct {
	w      io.Writer
	format Format
}

// New creates a renderer
func New(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format}
}

type summaryView struct {
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name"`
	Present    int            `json:"present"`
	Absent     int            `json:"absent"`
	NoClass    int            `json:"noClass"`
	Total      int            `json:"total"`
	Percentage string         `json:"percentage"`
	Severity   types.Severity `json:"severity"`
}

func viewOf(s aggregate.Summary) summaryView {
	return summaryView{
		ID:         s.Subject.ID,
		Name:       s.Subject.Name,
		Present:    s.Present,
		Absent:     s.Absent,
		NoClass:    s.NoClass,
		Total:      s.Total,
		Percentage: s.Display,
		Severity:   s.Severity,
	}
}

// Overview renders one line per subject followed by the overall rollup
func (r *Renderer) Overview(summaries []aggregate.Summary, overall aggregate.Summary, limits types.Limits) error {
	if r.format == FormatJSON {
		views := make([]summaryView, 0, len(summaries))
		for _, s := range summaries {
			views = append(views, viewOf(s))
		}
		return r.json(struct {
			Subjects []summaryView `json:"subjects"`
			Overall  summaryView   `json:"overall"`
			Limits   types.Limits  `json:"limits"`
		}{views, viewOf(overall), limits})
	}

	if len(summaries) == 0 {
		_, err := fmt.Fprintln(r.w, "No subjects yet. Add one with: tally subject add NAME --days 1,3,5")
		return err
	}

	tw := r.table()
	fmt.Fprintln(tw, "SUBJECT\tPRESENT\tABSENT\tNO CLASS\tTOTAL\tATTENDANCE\tSTATUS")
	for _, s := range summaries {
		summaryRow(tw, s)
	}
	summaryRow(tw, overall)
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(r.w, "\nLimits: warning below %d%%, critical below %d%%\n", limits.Upper, limits.Lower)
	return err
}

func summaryRow(w io.Writer, s aggregate.Summary) {
	fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s%%\t%s\n",
		s.Subject.Name, s.Present, s.Absent, s.NoClass, s.Total, s.Display, severityText(s.Severity))
}

// Subjects renders the subject list with class days
func (r *Renderer) Subjects(subjects []types.Subject) error {
	if r.format == FormatJSON {
		if subjects == nil {
			subjects = []types.Subject{}
		}
		return r.json(subjects)
	}

	if len(subjects) == 0 {
		_, err := fmt.Fprintln(r.w, "No subjects yet.")
		return err
	}

	tw := r.table()
	fmt.Fprintln(tw, "ID\tNAME\tDAYS")
	for _, s := range subjects {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, days(s.ClassDays))
	}
	return tw.Flush()
}

// Entries renders the raw entries of one subject
func (r *Renderer) Entries(subject types.Subject, entries []types.Entry) error {
	if r.format == FormatJSON {
		if entries == nil {
			entries = []types.Entry{}
		}
		return r.json(entries)
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintf(r.w, "No entries recorded for %s.\n", subject.Name)
		return err
	}

	tw := r.table()
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Date, e.Status)
	}
	return tw.Flush()
}

// Detail renders the summary and per-date rollups of one subject
func (r *Renderer) Detail(detail tracker.Detail) error {
	if r.format == FormatJSON {
		rollups := detail.Days
		if rollups == nil {
			rollups = []aggregate.DayRollup{}
		}
		return r.json(struct {
			Subject types.Subject         `json:"subject"`
			Summary summaryView           `json:"summary"`
			Days    []aggregate.DayRollup `json:"days"`
		}{detail.Summary.Subject, viewOf(detail.Summary), rollups})
	}

	s := detail.Summary
	fmt.Fprintf(r.w, "%s (%s)\n", s.Subject.Name, days(s.Subject.ClassDays))
	fmt.Fprintf(r.w, "Attendance: %s%% (%d of %d, %d no-class) %s\n",
		s.Display, s.Present, s.Total, s.NoClass, severityText(s.Severity))

	if len(detail.Days) == 0 {
		_, err := fmt.Fprintln(r.w, "\nNo attendance recorded yet.")
		return err
	}

	fmt.Fprintln(r.w)
	tw := r.table()
	fmt.Fprintln(tw, "DATE\tPRESENT\tABSENT\tNO CLASS\tMARK")
	for _, d := range detail.Days {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", d.Date, d.Present, d.Absent, d.NoClass, d.Mark)
	}
	return tw.Flush()
}

// Today renders the subjects scheduled on date
func (r *Renderer) Today(date string, weekday int, statuses []aggregate.DayStatus) error {
	if r.format == FormatJSON {
		type item struct {
			ID      string         `json:"id"`
			Name    string         `json:"name"`
			Entries int            `json:"entries"`
			Mark    aggregate.Mark `json:"mark"`
		}
		items := make([]item, 0, len(statuses))
		for _, s := range statuses {
			items = append(items, item{s.Subject.ID, s.Subject.Name, s.Entries, s.Mark})
		}
		return r.json(struct {
			Date     string `json:"date"`
			Weekday  string `json:"weekday"`
			Subjects []item `json:"subjects"`
		}{date, types.DayName(weekday), items})
	}

	fmt.Fprintf(r.w, "%s %s\n", types.DayName(weekday), date)
	if len(statuses) == 0 {
		_, err := fmt.Fprintln(r.w, "No classes scheduled today.")
		return err
	}

	tw := r.table()
	fmt.Fprintln(tw, "SUBJECT\tENTRIES\tMARK")
	for _, s := range statuses {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Subject.Name, s.Entries, s.Mark)
	}
	return tw.Flush()
}

// Limits renders the severity thresholds
func (r *Renderer) Limits(limits types.Limits) error {
	if r.format == FormatJSON {
		return r.json(limits)
	}
	_, err := fmt.Fprintf(r.w, "lower: %d%%\nupper: %d%%\n", limits.Lower, limits.Upper)
	return err
}

func (r *Renderer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
}

func (r *Renderer) json(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func days(classDays []int) string {
	names := make([]string, len(classDays))
	for i, d := range classDays {
		names[i] = types.DayShortName(d)
	}
	return strings.Join(names, ", ")
}
