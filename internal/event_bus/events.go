package event_bus

import "time"

const (
	// EventsChanged is published whenever the event list behind the agenda
	// may have changed (scheduled tick, webhook, manual refresh).
	EventsChanged EventType = "events.changed"
	// AgendaRebuilt is published after a new agenda index has been committed.
	AgendaRebuilt EventType = "agenda.rebuilt"
)

type EventsChangedPayload struct {
	Reason string
}

type AgendaRebuiltPayload struct {
	Generation  uint64
	Events      int
	Dates       int
	MarkedDates int
	BuiltAt     time.Time
}
