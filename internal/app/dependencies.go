package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lovelog/lovelog/internal/config"
	"github.com/lovelog/lovelog/internal/database"
	"github.com/lovelog/lovelog/internal/event_bus"
	"github.com/lovelog/lovelog/internal/notify"
	"github.com/lovelog/lovelog/internal/utils"
	"github.com/lovelog/lovelog/pkg/agenda"
	"github.com/lovelog/lovelog/pkg/event"
	"github.com/lovelog/lovelog/pkg/google"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus
	DB       *pgxpool.Pool

	EventSource event.Source

	AgendaService    *agenda.Service
	AgendaHandler    *agenda.Handler
	RefreshScheduler *agenda.RefreshScheduler

	NotifyHub           *notify.Hub
	unsubscribeNotifier func()
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	if cfg.Database.Migrate && !cfg.Source.HasSource(config.SourcePostgres) {
		log.Warn("db.migrate is set but the postgres source is not enabled")
	}

	var sources []event.Source
	for _, kind := range sourceKinds(cfg.Source.Kinds) {
		source, err := deps.buildSource(ctx, kind, cfg)
		if err != nil {
			deps.Close()
			return nil, err
		}
		log.Infof("Reading events from %s source", kind)
		sources = append(sources, source)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no event source configured")
	}
	if len(sources) == 1 {
		deps.EventSource = sources[0]
	} else {
		deps.EventSource = event.NewMultiSource(sources...)
	}

	window := agenda.Window{DaysBefore: cfg.Agenda.DaysBefore, DaysAfter: cfg.Agenda.DaysAfter}
	deps.AgendaService = agenda.NewService(deps.EventSource, deps.EventBus, deps.Clock, window)
	deps.AgendaHandler = agenda.NewHandler(deps.AgendaService, deps.EventBus, cfg.Agenda)

	deps.NotifyHub = notify.NewHub()
	deps.unsubscribeNotifier = agenda.ForwardRebuilds(deps.EventBus, deps.NotifyHub)

	if cfg.Refresh.Enabled {
		deps.RefreshScheduler = agenda.NewRefreshScheduler(deps.EventBus, cfg.Refresh.Schedule)
	}

	return deps, nil
}

// sourceKinds normalises the configured kinds and drops repeats, keeping the
// first occurrence. A kind listed twice would file every event twice.
func sourceKinds(kinds []string) []string {
	seen := make(map[string]bool, len(kinds))
	var normalised []string
	for _, kind := range kinds {
		kind = strings.ToLower(strings.TrimSpace(kind))
		if kind == "" {
			continue
		}
		if seen[kind] {
			log.Warnf("event source %s listed more than once, using it once", kind)
			continue
		}
		seen[kind] = true
		normalised = append(normalised, kind)
	}
	return normalised
}

func (d *Dependencies) buildSource(ctx context.Context, kind string, cfg config.Application) (event.Source, error) {
	switch kind {
	case config.SourceRest:
		return event.NewRestSource(cfg.Source.BaseUrl, event.StaticToken(cfg.Source.Token), cfg.Source.Timeout), nil
	case config.SourcePostgres:
		if d.DB == nil {
			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return nil, err
			}
			d.DB = db
			if cfg.Database.Migrate {
				if err := database.Migrate(cfg.Database); err != nil {
					return nil, err
				}
			}
		}
		return event.NewPostgresSource(event.NewRepository(d.DB), cfg.Source.UserId), nil
	case config.SourceGoogle:
		service, err := google.NewCalendarService(ctx, cfg.Google)
		if err != nil {
			return nil, err
		}
		return google.NewCalendarSource(service, cfg.Google.CalendarId, d.Clock, cfg.Google.PastDays, cfg.Google.FutureDays), nil
	default:
		return nil, fmt.Errorf("unknown event source %q", kind)
	}
}

// Close releases resources held by the dependencies.
func (d *Dependencies) Close() {
	if d.unsubscribeNotifier != nil {
		d.unsubscribeNotifier()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
