package domain

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is the canonical day name used as a key in a plan's schedule.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the seven canonical weekdays in Monday-first order.
// Slot i of a projected week always corresponds to Weekdays[i],
// regardless of locale.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// weekdayLetters are the single-letter labels shown in the calendar header.
var weekdayLetters = [7]string{"M", "T", "W", "T", "F", "S", "S"}

// ScheduleStatus describes the derived state of one day in the week view.
type ScheduleStatus string

const (
	StatusCompleted ScheduleStatus = "completed"
	StatusMissed    ScheduleStatus = "missed"
	StatusScheduled ScheduleStatus = "scheduled"
	StatusRest      ScheduleStatus = "rest"
)

// DateLayout is the wire format for all calendar dates. Lexicographic
// comparison of these strings matches chronological order, which the
// plan-selection and status logic relies on.
const DateLayout = "2006-01-02"

// FormatDate renders t as an ISO calendar date string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses an ISO calendar date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// WeekDates returns the calendar date for each weekday of the week
// containing anchor, Monday-start convention.
func WeekDates(anchor time.Time) map[Weekday]string {
	// time.Weekday puts Sunday at 0; shift so Monday is offset 0.
	offset := (int(anchor.Weekday()) + 6) % 7
	monday := anchor.AddDate(0, 0, -offset)

	dates := make(map[Weekday]string, 7)
	for i, day := range Weekdays {
		dates[day] = FormatDate(monday.AddDate(0, 0, i))
	}
	return dates
}

// WeeklyWorkout is one slot of the projected 7-day week view. It is
// rebuilt on every projection and mutated only by a rearrange session.
// Template is a resolved convenience reference; TemplateID is the
// authoritative value that gets persisted back into the plan. An empty
// TemplateID means a rest day.
type WeeklyWorkout struct {
	Date       string           `json:"date"`
	DayLetter  string           `json:"dayLetter"`
	DayNumber  int              `json:"dayNumber"`
	DayShort   string           `json:"dayShort"`
	Template   *WorkoutTemplate `json:"template,omitempty"`
	TemplateID string           `json:"templateId,omitempty"`
	Status     ScheduleStatus   `json:"status"`
}

// DayLetterAt returns the single-letter header label for slot i.
func DayLetterAt(i int) string {
	return weekdayLetters[i]
}

// DayShortName returns the three-letter upper-case abbreviation for a weekday.
func DayShortName(day Weekday) string {
	return strings.ToUpper(string(day)[:3])
}
