package agenda

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lovelog/lovelog/internal/event_bus"
	"github.com/lovelog/lovelog/internal/utils"
	"github.com/lovelog/lovelog/pkg/event"
	log "github.com/sirupsen/logrus"
)

// Window is the number of days around today that always have an agenda entry.
type Window struct {
	DaysBefore int
	DaysAfter  int
}

// Summary describes the outcome of a rebuild.
type Summary struct {
	Generation  uint64    `json:"generation"`
	Events      int       `json:"events"`
	Dates       int       `json:"dates"`
	MarkedDates int       `json:"markedDates"`
	BuiltAt     time.Time `json:"builtAt"`
	// Stale is set when a newer rebuild had already been committed and this
	// one was thrown away.
	Stale bool `json:"stale,omitempty"`
}

// Snapshot is a private copy of the held agenda.
type Snapshot struct {
	Index   Index
	Events  []event.Event
	Summary Summary
}

// Service keeps the agenda of the current event list. Every rebuild
// recomputes the index from scratch and replaces the held one.
type Service struct {
	source event.Source
	bus    *event_bus.EventBus
	clock  utils.Clock
	window Window

	started atomic.Uint64

	mu      sync.RWMutex
	index   Index
	events  []event.Event
	summary Summary
}

func NewService(source event.Source, bus *event_bus.EventBus, clock utils.Clock, window Window) *Service {
	s := &Service{
		source: source,
		bus:    bus,
		clock:  clock,
		window: window,
		index:  NewIndex(),
	}
	if bus != nil {
		event_bus.SubscribeTyped(bus, event_bus.EventsChanged, func(e event_bus.EventT[event_bus.EventsChangedPayload]) error {
			log.Debugf("Rebuilding agenda: %s", e.Data.Reason)
			_, err := s.Rebuild(e.Context())
			return err
		})
	}
	return s
}

// Rebuild fetches the event list and commits a freshly built index. Rebuilds
// are ordered by start: a rebuild finishing after a later-started one has
// already committed is discarded.
func (s *Service) Rebuild(ctx context.Context) (Summary, error) {
	generation := s.started.Add(1)

	events, err := s.source.FetchEvents(ctx)
	if err != nil {
		log.Errorf("agenda rebuild %d: failed to fetch events: %v", generation, err)
		return Summary{}, fmt.Errorf("failed to fetch events: %w", err)
	}

	idx, err := BuildIndex(events)
	if err != nil {
		log.Errorf("agenda rebuild %d: %v", generation, err)
		return Summary{}, err
	}
	idx.Preload(PreloadWindow(s.clock.Now(), s.window.DaysBefore, s.window.DaysAfter))

	summary := Summary{
		Generation:  generation,
		Events:      len(events),
		Dates:       len(idx.ItemsByDate),
		MarkedDates: len(idx.MarkedDates),
		BuiltAt:     s.clock.Now(),
	}

	s.mu.Lock()
	if generation < s.summary.Generation {
		current := s.summary
		s.mu.Unlock()
		log.Debugf("agenda rebuild %d discarded, generation %d already committed", generation, current.Generation)
		current.Stale = true
		return current, nil
	}
	s.index = idx
	s.events = events
	s.summary = summary
	s.mu.Unlock()

	log.Infof("Agenda rebuilt: generation %d, %d events, %d marked dates", generation, summary.Events, summary.MarkedDates)

	if s.bus != nil {
		payload := event_bus.AgendaRebuiltPayload{
			Generation:  summary.Generation,
			Events:      summary.Events,
			Dates:       summary.Dates,
			MarkedDates: summary.MarkedDates,
			BuiltAt:     summary.BuiltAt,
		}
		if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.AgendaRebuilt, payload)); err != nil {
			log.Warnf("agenda rebuilt notification failed: %v", err)
		}
	}
	return summary, nil
}

// Current returns a copy of the committed agenda.
func (s *Service) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Index:   s.index.Clone(),
		Events:  append([]event.Event{}, s.events...),
		Summary: s.summary,
	}
}

func (s *Service) Window() Window {
	return s.window
}

func (s *Service) Clock() utils.Clock {
	return s.clock
}
