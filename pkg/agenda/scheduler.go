package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/lovelog/lovelog/internal/event_bus"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// RefreshScheduler periodically announces that the event list may have
// changed, which makes the Service rebuild.
type RefreshScheduler struct {
	cron     *cron.Cron
	bus      *event_bus.EventBus
	schedule string
	timeout  time.Duration
}

func NewRefreshScheduler(bus *event_bus.EventBus, schedule string) *RefreshScheduler {
	return &RefreshScheduler{
		cron:     cron.New(),
		bus:      bus,
		schedule: schedule,
		timeout:  time.Minute,
	}
}

// Start registers the refresh job and starts the cron runner.
func (s *RefreshScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.tick)
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	log.Infof("Agenda refresh scheduled: %s", s.schedule)
	return nil
}

// Stop stops the runner and waits for a running refresh to finish.
func (s *RefreshScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *RefreshScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventsChanged, event_bus.EventsChangedPayload{Reason: "scheduled refresh"}))
	if err != nil {
		log.Errorf("scheduled agenda refresh failed: %v", err)
	}
}
