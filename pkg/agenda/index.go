package agenda

import (
	"errors"

	"github.com/lovelog/lovelog/pkg/event"
)

// Mark decorates a calendar date. Direct is set when a single-day event is
// filed under the date, Ranged when the date lies inside a ranged event's
// span. A date can carry both.
type Mark struct {
	Direct bool
	Ranged bool
}

// Index is the agenda built from an event list.
type Index struct {
	// ItemsByDate files every event under its canonical key, in input order.
	ItemsByDate map[string][]event.Event
	// MarkedDates holds every date that should be highlighted.
	MarkedDates map[string]Mark
}

func NewIndex() Index {
	return Index{
		ItemsByDate: map[string][]event.Event{},
		MarkedDates: map[string]Mark{},
	}
}

// keyField names the event field Key reads from.
func keyField(e event.Event) string {
	if e.IsRanged() {
		return "range start"
	}
	return "date"
}

// BuildIndex files each event under its key (range start or date) and marks
// every date it covers. A malformed date fails the whole build with a
// *DataError.
func BuildIndex(events []event.Event) (Index, error) {
	idx := NewIndex()
	for _, e := range events {
		key := e.Key()
		if _, err := ParseDate(key); err != nil {
			return Index{}, &DataError{EventId: e.Id, Field: keyField(e), Value: key, Err: err}
		}

		idx.ItemsByDate[key] = append(idx.ItemsByDate[key], e)

		if !e.IsRanged() {
			m := idx.MarkedDates[key]
			m.Direct = true
			idx.MarkedDates[key] = m
			continue
		}

		span, err := ExpandDateRange(e.RangeStart, e.RangeEnd)
		if err != nil {
			var dataErr *DataError
			if errors.As(err, &dataErr) {
				dataErr.EventId = e.Id
			}
			return Index{}, err
		}
		for _, d := range span {
			m := idx.MarkedDates[d]
			m.Ranged = true
			idx.MarkedDates[d] = m
		}
	}
	return idx, nil
}

// Preload adds an empty entry for every date that has none. Existing entries
// are left alone.
func (idx *Index) Preload(dates []string) {
	if idx.ItemsByDate == nil {
		idx.ItemsByDate = map[string][]event.Event{}
	}
	for _, d := range dates {
		if _, ok := idx.ItemsByDate[d]; !ok {
			idx.ItemsByDate[d] = []event.Event{}
		}
	}
}

// Clone returns a copy that shares no maps or slices with idx.
func (idx Index) Clone() Index {
	c := Index{
		ItemsByDate: make(map[string][]event.Event, len(idx.ItemsByDate)),
		MarkedDates: make(map[string]Mark, len(idx.MarkedDates)),
	}
	for d, items := range idx.ItemsByDate {
		c.ItemsByDate[d] = append([]event.Event{}, items...)
	}
	for d, m := range idx.MarkedDates {
		c.MarkedDates[d] = m
	}
	return c
}
