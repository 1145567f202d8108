// Package schedule implements the scheduling widget core: calendar grid
// construction, slot selection and the booking state machine that
// coordinates fetches against the remote booking service.
package schedule

import (
	"fmt"
	"time"
)

// DayState classifies a calendar day cell.
type DayState string

const (
	DayPast      DayState = "past"
	DayFull      DayState = "full"
	DayAvailable DayState = "available"
)

// WeekdayHeaders is the Su..Sa header row of the calendar grid.
var WeekdayHeaders = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// DaysInMonth returns the day count of the given month (28-31).
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday index (0=Sunday) of day 1 of the month,
// which is also the number of leading blank cells in the grid.
func FirstWeekday(year int, month time.Month) int {
	return int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// DateString formats a calendar date as YYYY-MM-DD.
func DateString(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// DayCell is one day of the rendered month grid. Past cells are not
// clickable.
type DayCell struct {
	Day       int      `json:"day"`
	Date      string   `json:"date"`
	State     DayState `json:"state"`
	Clickable bool     `json:"clickable"`
}

// MonthGrid is the visual classification of one month.
type MonthGrid struct {
	Year          int       `json:"year"`
	Month         int       `json:"month"` // 1-indexed
	LeadingBlanks int       `json:"leadingBlanks"`
	Cells         []DayCell `json:"cells"`
}

// BuildMonthGrid classifies every day of the month containing reference.
// Classification priority: a day strictly before today's calendar date is
// past regardless of its availability count; otherwise a day whose summary
// reports zero open slots is full; days without a summary record default to
// available.
func BuildMonthGrid(reference, today time.Time, summaries *DaySummaryStore) MonthGrid {
	year, month := reference.Year(), reference.Month()
	grid := MonthGrid{
		Year:          year,
		Month:         int(month),
		LeadingBlanks: FirstWeekday(year, month),
	}

	todayY, todayM, todayD := today.Date()
	days := DaysInMonth(year, month)
	grid.Cells = make([]DayCell, 0, days)
	for day := 1; day <= days; day++ {
		date := DateString(year, month, day)
		state := DayAvailable
		if beforeDate(year, month, day, todayY, todayM, todayD) {
			state = DayPast
		} else if s, ok := summaries.Lookup(date); ok && s.AvailableSlots == 0 {
			state = DayFull
		}
		grid.Cells = append(grid.Cells, DayCell{
			Day:       day,
			Date:      date,
			State:     state,
			Clickable: state != DayPast,
		})
	}
	return grid
}

// beforeDate reports whether date a is strictly before date b, ignoring
// time of day.
func beforeDate(ay int, am time.Month, ad, by int, bm time.Month, bd int) bool {
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
