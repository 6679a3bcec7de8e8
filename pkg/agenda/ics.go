package agenda

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/lovelog/lovelog/pkg/event"
	log "github.com/sirupsen/logrus"
)

const icsProductId = "-//LoveLog//Agenda//EN"

// ToICS renders events as all-day VEVENTs. Ranged events end on the day
// after RangeEnd since DTEND is exclusive for dates.
func ToICS(events []event.Event, stamp time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductId)
	cal.SetName("LoveLog")

	for _, e := range events {
		start, err := ParseDate(e.Key())
		if err != nil {
			return "", &DataError{EventId: e.Id, Field: keyField(e), Value: e.Key(), Err: err}
		}
		end := start
		if e.IsRanged() {
			end, err = ParseDate(e.RangeEnd)
			if err != nil {
				return "", &DataError{EventId: e.Id, Field: "range end", Value: e.RangeEnd, Err: err}
			}
		}

		vevent := cal.AddEvent(fmt.Sprintf("%s@lovelog", e.Id))
		vevent.SetDtStampTime(stamp)
		vevent.SetSummary(e.Title)
		vevent.SetAllDayStartAt(start)
		vevent.SetAllDayEndAt(end.AddDate(0, 0, 1))
		if e.Address != "" {
			vevent.SetLocation(e.Address)
		}
		if description := describe(e); description != "" {
			vevent.SetDescription(description)
		}
		if e.Photo != "" {
			vevent.SetURL(e.Photo)
		}
	}
	return cal.Serialize(), nil
}

func describe(e event.Event) string {
	var parts []string
	if e.StartTime != "" {
		times := e.StartTime
		if e.EndTime != "" {
			times += " - " + e.EndTime
		}
		parts = append(parts, times)
	}
	if e.Details != "" {
		parts = append(parts, e.Details)
	}
	return strings.Join(parts, "\n")
}

// ExportICS serves the committed event list as an iCalendar feed.
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	snapshot := h.service.Current()
	body, err := ToICS(snapshot.Events, snapshot.Summary.BuiltAt)
	if err != nil {
		log.Errorf("failed to render calendar feed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="lovelog.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Errorf("failed to write calendar feed: %v", err)
	}
}
