package event

import (
	"errors"
	"time"
)

// DateLayout is the canonical calendar date format used for every date field.
const DateLayout = "2006-01-02"

var (
	ErrInvalidRange       = errors.New("range end must be after range start")
	ErrIncompleteRange    = errors.New("range start and range end must be set together")
	ErrRangeStartMismatch = errors.New("range start must equal the event date")
	ErrMissingTitle       = errors.New("event title is required")
	ErrInvalidDate        = errors.New("invalid date")
)

// Event is a single logged event. It is either single-day (only Date set) or
// ranged (RangeStart and RangeEnd set, RangeStart equal to Date).
// StartTime and EndTime are informational only.
type Event struct {
	Id         string
	Title      string
	Date       string
	RangeStart string
	RangeEnd   string
	StartTime  string
	EndTime    string
	Address    string
	Details    string
	Photo      string
}

func (e Event) IsRanged() bool {
	return e.RangeStart != ""
}

// Key is the date the event is filed under in the agenda.
func (e Event) Key() string {
	if e.IsRanged() {
		return e.RangeStart
	}
	return e.Date
}

// Validate is a check for callers that create events. Sources and the
// agenda builder do not call it; the builder reports bad dates as data errors.
func Validate(e Event) error {
	if e.Title == "" {
		return ErrMissingTitle
	}
	date, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return errors.Join(ErrInvalidDate, err)
	}
	if e.RangeStart == "" && e.RangeEnd == "" {
		return nil
	}
	if e.RangeStart == "" || e.RangeEnd == "" {
		return ErrIncompleteRange
	}
	if e.RangeStart != e.Date {
		return ErrRangeStartMismatch
	}
	end, err := time.Parse(DateLayout, e.RangeEnd)
	if err != nil {
		return errors.Join(ErrInvalidDate, err)
	}
	if !end.After(date) {
		return ErrInvalidRange
	}
	return nil
}
