// Package calendar generates the per-day entries that back the date
// registry. All calendar attributes are derived deterministically from the
// date itself, so regenerating a range always yields identical entries.
package calendar

import (
	"iter"
	"time"

	"github.com/meridianbi/revenue-mart/internal/domain"
)

// Day is a single generated calendar entry, prior to persistence.
type Day struct {
	Key        domain.DateKey
	Date       time.Time
	Year       int
	Quarter    int
	Month      int
	DayOfMonth int
	// DayOfWeek uses ISO-8601 numbering: 1=Monday .. 7=Sunday.
	DayOfWeek  int
	WeekOfYear int
	IsWeekend  bool
}

// At builds the entry for the calendar day of t.
func At(t time.Time) Day {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	dow := int(d.Weekday())
	if dow == 0 { // time.Sunday is 0, ISO puts it last
		dow = 7
	}
	_, week := d.ISOWeek()
	return Day{
		Key:        domain.NewDateKey(d),
		Date:       d,
		Year:       d.Year(),
		Quarter:    (int(d.Month())-1)/3 + 1,
		Month:      int(d.Month()),
		DayOfMonth: d.Day(),
		DayOfWeek:  dow,
		WeekOfYear: week,
		IsWeekend:  dow >= 6,
	}
}

// Days returns a lazy sequence of entries for every day in [start, end]
// inclusive. The sequence is finite and restartable: iterating it twice
// yields the same entries. An inverted range yields nothing.
func Days(start, end time.Time) iter.Seq[Day] {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return func(yield func(Day) bool) {
		for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
			if !yield(At(d)) {
				return
			}
		}
	}
}

// Count returns the number of days Days(start, end) will yield.
func Count(start, end time.Time) int {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if last.Before(first) {
		return 0
	}
	return int(last.Sub(first).Hours()/24) + 1
}
