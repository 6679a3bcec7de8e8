package google

import (
	"context"
	"fmt"
	"time"

	"github.com/lovelog/lovelog/internal/utils"
	"github.com/lovelog/lovelog/pkg/event"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

const timeLayout = "15:04"

// CalendarSource reads events of one Google calendar within a window around
// the current day.
type CalendarSource struct {
	service    *gcal.Service
	calendarId string
	clock      utils.Clock
	pastDays   int
	futureDays int
}

func NewCalendarSource(service *gcal.Service, calendarId string, clock utils.Clock, pastDays, futureDays int) *CalendarSource {
	return &CalendarSource{
		service:    service,
		calendarId: calendarId,
		clock:      clock,
		pastDays:   pastDays,
		futureDays: futureDays,
	}
}

func (c *CalendarSource) FetchEvents(ctx context.Context) ([]event.Event, error) {
	today := utils.Today(c.clock)
	from := today.AddDate(0, 0, -c.pastDays)
	to := today.AddDate(0, 0, c.futureDays+1)
	log.Debugf("Fetching Google events of %s between %s and %s", c.calendarId, from.Format(time.RFC3339), to.Format(time.RFC3339))

	var events []event.Event
	err := c.service.Events.List(c.calendarId).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *gcal.Events) error {
			for _, item := range page.Items {
				if item.Status == "cancelled" {
					continue
				}
				e, err := toEvent(item, today.Location())
				if err != nil {
					log.Warnf("skipping Google event %s: %v", item.Id, err)
					continue
				}
				events = append(events, e)
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("unable to list events from Google Calendar: %w", err)
	}
	return events, nil
}

// toEvent maps a Google event. All-day events carry an exclusive end date,
// timed events are placed on calendar days of loc.
func toEvent(item *gcal.Event, loc *time.Location) (event.Event, error) {
	if item.Start == nil || item.End == nil {
		return event.Event{}, fmt.Errorf("missing start or end")
	}
	e := event.Event{
		Id:      item.Id,
		Title:   item.Summary,
		Address: item.Location,
		Details: item.Description,
	}

	if item.Start.Date != "" {
		start, err := time.Parse(event.DateLayout, item.Start.Date)
		if err != nil {
			return event.Event{}, fmt.Errorf("invalid start date %q: %w", item.Start.Date, err)
		}
		end, err := time.Parse(event.DateLayout, item.End.Date)
		if err != nil {
			return event.Event{}, fmt.Errorf("invalid end date %q: %w", item.End.Date, err)
		}
		setDays(&e, start, end.AddDate(0, 0, -1))
		return e, nil
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return event.Event{}, fmt.Errorf("invalid start time %q: %w", item.Start.DateTime, err)
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return event.Event{}, fmt.Errorf("invalid end time %q: %w", item.End.DateTime, err)
	}
	start, end = start.In(loc), end.In(loc)
	e.StartTime = start.Format(timeLayout)
	e.EndTime = end.Format(timeLayout)

	lastDay := end
	// an event ending at midnight does not occupy the following day
	if end.After(start) && end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 {
		lastDay = end.Add(-time.Second)
	}
	setDays(&e, start, lastDay)
	return e, nil
}

func setDays(e *event.Event, first, last time.Time) {
	e.Date = first.Format(event.DateLayout)
	if last.Format(event.DateLayout) > e.Date {
		e.RangeStart = e.Date
		e.RangeEnd = last.Format(event.DateLayout)
	}
}
