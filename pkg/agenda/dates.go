package agenda

import (
	"fmt"
	"time"

	"github.com/lovelog/lovelog/pkg/event"
)

// DataError reports an event field that does not hold a valid date.
type DataError struct {
	EventId string
	Field   string
	Value   string
	Err     error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("event %q: invalid %s %q: %v", e.EventId, e.Field, e.Value, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// ParseDate parses a YYYY-MM-DD string into UTC midnight of that day.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(event.DateLayout, s)
}

// day drops the clock part of t, keeping the calendar date t shows in its
// own location. Day arithmetic on the result never crosses DST boundaries.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ExpandRange returns every date from start to end inclusive, ascending.
// An end before start yields no dates.
func ExpandRange(start, end time.Time) []string {
	from, to := day(start), day(end)
	if to.Before(from) {
		return []string{}
	}
	dates := make([]string, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(event.DateLayout))
	}
	return dates
}

// ExpandDateRange is ExpandRange over date strings.
func ExpandDateRange(start, end string) ([]string, error) {
	from, err := ParseDate(start)
	if err != nil {
		return nil, &DataError{Field: "range start", Value: start, Err: err}
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil, &DataError{Field: "range end", Value: end, Err: err}
	}
	return ExpandRange(from, to), nil
}

// PreloadWindow lists the dates from reference-daysBefore up to, but not
// including, reference+daysAfter.
func PreloadWindow(reference time.Time, daysBefore, daysAfter int) []string {
	ref := day(reference)
	if daysBefore+daysAfter <= 0 {
		return []string{}
	}
	dates := make([]string, 0, daysBefore+daysAfter)
	for i := -daysBefore; i < daysAfter; i++ {
		dates = append(dates, ref.AddDate(0, 0, i).Format(event.DateLayout))
	}
	return dates
}
