package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for attendance entries
const DateLayout = "2006-01-02"

// Subject represents a recurring class the user tracks attendance for
type Subject struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"notblank"`
	ClassDays []int  `json:"classDays" validate:"min=1,dive,min=0,max=6"`
}

// Clone returns a deep copy of the subject
func (s Subject) Clone() Subject {
	days := make([]int, len(s.ClassDays))
	copy(days, s.ClassDays)
	s.ClassDays = days
	return s
}

// HasClassOn reports whether the subject is scheduled on the given weekday
func (s Subject) HasClassOn(weekday int) bool {
	for _, d := range s.ClassDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// Entry is one recorded attendance observation for a subject on a date
type Entry struct {
	ID        string `json:"id"`
	SubjectID string `json:"subjectId"`
	Date      string `json:"date"` // YYYY-MM-DD
	Status    Status `json:"isPresent"`
}

// Status is the recorded state of an attendance entry
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusNoClass Status = "no-class"
)

// Counted reports whether the status contributes to the attendance total
func (s Status) Counted() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusNoClass:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// MarshalJSON encodes the status as the persisted tri-state isPresent value:
// true, false or null.
func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusPresent:
		return []byte("true"), nil
	case StatusAbsent:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes true, false or null into a status
func (s *Status) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*s = StatusPresent
	case "false":
		*s = StatusAbsent
	case "null":
		*s = StatusNoClass
	default:
		return fmt.Errorf("invalid isPresent value: %s", data)
	}
	return nil
}

// ParseStatus parses user input into a status
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present", "p", "true":
		return StatusPresent, nil
	case "absent", "a", "false":
		return StatusAbsent, nil
	case "no-class", "noclass", "no_class", "n", "none":
		return StatusNoClass, nil
	}
	return "", fmt.Errorf("unknown status %q: must be present, absent or no-class", s)
}

// Limits are the global attendance percentage thresholds
type Limits struct {
	Lower int `json:"lower" validate:"min=0,max=100"`
	Upper int `json:"upper" validate:"min=0,max=100,gtfield=Lower"`
}

// DefaultLimits returns the thresholds used when none are configured
func DefaultLimits() Limits {
	return Limits{Lower: 65, Upper: 75}
}

// Valid reports whether the limits are in range and ordered
func (l Limits) Valid() bool {
	return l.Lower >= 0 && l.Upper <= 100 && l.Lower < l.Upper
}

// Severity classifies an attendance percentage against the limits
type Severity string

const (
	SeverityGood     Severity = "good"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayName returns the weekday name for 0 (Sunday) through 6 (Saturday)
func DayName(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return dayNames[day]
}

// DayShortName returns the three letter weekday name
func DayShortName(day int) string {
	name := DayName(day)
	if len(name) < 3 {
		return name
	}
	return name[:3]
}

// FormatDate formats t as a YYYY-MM-DD attendance date
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD attendance date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Weekday returns the weekday number (0 = Sunday) of a YYYY-MM-DD date
func Weekday(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// entryJSON mirrors Entry so a missing isPresent decodes as no class
type entryJSON struct {
	ID        string          `json:"id"`
	SubjectID string          `json:"subjectId"`
	Date      string          `json:"date"`
	Status    json.RawMessage `json:"isPresent"`
}

// UnmarshalJSON decodes an entry, reading a missing isPresent as no class
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.ID = raw.ID
	e.SubjectID = raw.SubjectID
	e.Date = raw.Date
	e.Status = StatusNoClass
	if len(raw.Status) > 0 {
		return e.Status.UnmarshalJSON(raw.Status)
	}
	return nil
}
