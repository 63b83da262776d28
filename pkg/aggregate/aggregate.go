package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/cuemby/tally/pkg/types"
)

// Summary is the attendance rollup of one subject
type Summary struct {
	Subject    types.Subject  `json:"subject"`
	Present    int            `json:"present"`
	Absent     int            `json:"absent"`
	NoClass    int            `json:"noClass"`
	Total      int            `json:"total"`
	Percentage float64        `json:"-"`
	Display    string         `json:"percentage"`
	Severity   types.Severity `json:"severity"`
}

// Mark is the derived state of one date for one subject
type Mark string

const (
	MarkPresent     Mark = "present"
	MarkAbsent      Mark = "absent"
	MarkMixed       Mark = "mixed"
	MarkNoClass     Mark = "no-class"
	MarkNotRecorded Mark = "not-recorded"
)

// DayRollup counts the entries of one date
type DayRollup struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	NoClass int    `json:"noClass"`
	Mark    Mark   `json:"mark"`
}

// DayStatus is the mark of a scheduled subject on one date
type DayStatus struct {
	Subject types.Subject `json:"subject"`
	Date    string        `json:"date"`
	Entries int           `json:"entries"`
	Mark    Mark          `json:"mark"`
}

// Percentage returns present/total*100 rounded to two decimals, or 0 when
// total is zero
func Percentage(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*10000) / 100
}

// FormatPercentage renders a percentage with exactly two decimals
func FormatPercentage(p float64) string {
	return fmt.Sprintf("%.2f", p)
}

// Classify returns the severity of a percentage. Boundary values belong to
// the better bucket.
func Classify(percentage float64, limits types.Limits) types.Severity {
	switch {
	case percentage >= float64(limits.Upper):
		return types.SeverityGood
	case percentage >= float64(limits.Lower):
		return types.SeverityWarning
	default:
		return types.SeverityCritical
	}
}

// Summarize computes one summary per subject, in subject order
func Summarize(subjects []types.Subject, entries []types.Entry, limits types.Limits) []Summary {
	bySubject := make(map[string][]types.Entry, len(subjects))
	for _, e := range entries {
		bySubject[e.SubjectID] = append(bySubject[e.SubjectID], e)
	}

	out := make([]Summary, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, SummarizeSubject(s, bySubject[s.ID], limits))
	}
	return out
}

// SummarizeSubject computes the summary of one subject. Entries of other
// subjects are ignored.
func SummarizeSubject(subject types.Subject, entries []types.Entry, limits types.Limits) Summary {
	sum := Summary{Subject: subject}
	for _, e := range entries {
		if e.SubjectID != subject.ID {
			continue
		}
		switch e.Status {
		case types.StatusPresent:
			sum.Present++
		case types.StatusAbsent:
			sum.Absent++
		default:
			sum.NoClass++
		}
	}
	return finish(sum, limits)
}

// Overall totals the given summaries into a single rollup
func Overall(summaries []Summary, limits types.Limits) Summary {
	sum := Summary{Subject: types.Subject{Name: "Overall"}}
	for _, s := range summaries {
		sum.Present += s.Present
		sum.Absent += s.Absent
		sum.NoClass += s.NoClass
	}
	return finish(sum, limits)
}

func finish(sum Summary, limits types.Limits) Summary {
	sum.Total = sum.Present + sum.Absent
	sum.Percentage = Percentage(sum.Present, sum.Total)
	sum.Display = FormatPercentage(sum.Percentage)
	sum.Severity = Classify(sum.Percentage, limits)
	return sum
}

// Days rolls entries up per date, ascending by date
func Days(entries []types.Entry) []DayRollup {
	byDate := make(map[string]*DayRollup)
	for _, e := range entries {
		d, ok := byDate[e.Date]
		if !ok {
			d = &DayRollup{Date: e.Date}
			byDate[e.Date] = d
		}
		switch e.Status {
		case types.StatusPresent:
			d.Present++
		case types.StatusAbsent:
			d.Absent++
		default:
			d.NoClass++
		}
	}

	out := make([]DayRollup, 0, len(byDate))
	for _, d := range byDate {
		d.Mark = markOf(d.Present, d.Absent, d.NoClass)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Today returns the mark on date of every subject scheduled on weekday
func Today(subjects []types.Subject, entries []types.Entry, date string, weekday int) []DayStatus {
	var out []DayStatus
	for _, s := range subjects {
		if !s.HasClassOn(weekday) {
			continue
		}
		var present, absent, noClass int
		for _, e := range entries {
			if e.SubjectID != s.ID || e.Date != date {
				continue
			}
			switch e.Status {
			case types.StatusPresent:
				present++
			case types.StatusAbsent:
				absent++
			default:
				noClass++
			}
		}
		out = append(out, DayStatus{
			Subject: s,
			Date:    date,
			Entries: present + absent + noClass,
			Mark:    markOf(present, absent, noClass),
		})
	}
	return out
}

func markOf(present, absent, noClass int) Mark {
	switch {
	case present > 0 && absent > 0:
		return MarkMixed
	case present > 0:
		return MarkPresent
	case absent > 0:
		return MarkAbsent
	case noClass > 0:
		return MarkNoClass
	default:
		return MarkNotRecorded
	}
}
