package agenda

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/lovelog/lovelog/internal/config"
	"github.com/lovelog/lovelog/internal/event_bus"
	"github.com/lovelog/lovelog/internal/rest"
	"github.com/lovelog/lovelog/internal/utils"
	"github.com/lovelog/lovelog/pkg/event"
	log "github.com/sirupsen/logrus"
)

// RefreshTimeout bounds a rebuild requested over HTTP. The server's write
// timeout must exceed it so the summary still reaches the caller.
const RefreshTimeout = 20 * time.Second

type Handler struct {
	service    *Service
	bus        *event_bus.EventBus
	decoration config.Decoration
	maxWindow  int
}

type StyleDTO struct {
	Container ContainerStyleDTO `json:"container"`
	Text      TextStyleDTO      `json:"text"`
}

type ContainerStyleDTO struct {
	BackgroundColor string `json:"backgroundColor"`
	BorderRadius    int    `json:"borderRadius"`
}

type TextStyleDTO struct {
	Color      string `json:"color"`
	FontWeight string `json:"fontWeight"`
}

// MarkDTO is a marked date in the calendar widget's custom marking format.
type MarkDTO struct {
	CustomStyles StyleDTO `json:"customStyles"`
	Direct       bool     `json:"direct"`
	Ranged       bool     `json:"ranged"`
}

type AgendaDTO struct {
	Items       map[string][]event.EventDTO `json:"items"`
	MarkedDates map[string]MarkDTO          `json:"markedDates"`
	Summary     Summary                     `json:"summary"`
}

type DayDTO struct {
	Date   string           `json:"date"`
	Items  []event.EventDTO `json:"items"`
	Marked *MarkDTO         `json:"marked,omitempty"`
}

func NewHandler(service *Service, bus *event_bus.EventBus, cfg config.Agenda) *Handler {
	return &Handler{
		service:    service,
		bus:        bus,
		decoration: cfg.Decoration,
		maxWindow:  cfg.MaxWindow,
	}
}

// GetAgenda returns the agenda with the window around ?date (today by
// default) preloaded. ?before and ?after override the configured window.
func (h *Handler) GetAgenda(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	reference := utils.Today(h.service.Clock())
	if dateString := query.Get("date"); dateString != "" {
		parsed, err := ParseDate(dateString)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in YYYY-MM-DD format")
			return
		}
		reference = parsed
	}

	window := h.service.Window()
	before, err := h.parseDays(query.Get("before"), window.DaysBefore)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid before value", err.Error())
		return
	}
	after, err := h.parseDays(query.Get("after"), window.DaysAfter)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid after value", err.Error())
		return
	}

	snapshot := h.service.Current()
	snapshot.Index.Preload(PreloadWindow(reference, before, after))

	log.Tracef("Serving agenda generation %d with %d dates", snapshot.Summary.Generation, len(snapshot.Index.ItemsByDate))
	rest.WriteJSON(w, http.StatusOK, h.toAgendaDTO(snapshot))
}

// GetDay returns the items and the mark of a single date.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	dateString := mux.Vars(r)["date"]
	if _, err := ParseDate(dateString); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "date must be in YYYY-MM-DD format")
		return
	}

	snapshot := h.service.Current()
	day := DayDTO{
		Date:  dateString,
		Items: event.ToDTOs(snapshot.Index.ItemsByDate[dateString]),
	}
	if mark, ok := snapshot.Index.MarkedDates[dateString]; ok {
		dto := h.toMarkDTO(mark)
		day.Marked = &dto
	}
	rest.WriteJSON(w, http.StatusOK, day)
}

// Refresh announces that the event list changed and reports the rebuild.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RefreshTimeout)
	defer cancel()

	err := h.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventsChanged, event_bus.EventsChangedPayload{Reason: "refresh requested"}))
	if err != nil {
		rest.WriteError(w, http.StatusBadGateway, "Agenda rebuild failed", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, h.service.Current().Summary)
}

// Health mirrors the upstream API's liveness endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, map[string]string{"message": "Backend is running!"})
}

func (h *Handler) parseDays(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(value)
	if err != nil || days < 0 || days > h.maxWindow {
		return 0, fmt.Errorf("must be a whole number between 0 and %d", h.maxWindow)
	}
	return days, nil
}

// toMarkDTO picks the style for a mark. Dates with a direct entry use the
// direct style even when a range also covers them.
func (h *Handler) toMarkDTO(m Mark) MarkDTO {
	style := h.decoration.Ranged
	if m.Direct {
		style = h.decoration.Direct
	}
	return MarkDTO{
		CustomStyles: StyleDTO{
			Container: ContainerStyleDTO{BackgroundColor: style.Background, BorderRadius: style.BorderRadius},
			Text:      TextStyleDTO{Color: style.TextColor, FontWeight: style.FontWeight},
		},
		Direct: m.Direct,
		Ranged: m.Ranged,
	}
}

func (h *Handler) toAgendaDTO(s Snapshot) AgendaDTO {
	dto := AgendaDTO{
		Items:       make(map[string][]event.EventDTO, len(s.Index.ItemsByDate)),
		MarkedDates: make(map[string]MarkDTO, len(s.Index.MarkedDates)),
		Summary:     s.Summary,
	}
	for d, items := range s.Index.ItemsByDate {
		dto.Items[d] = event.ToDTOs(items)
	}
	for d, m := range s.Index.MarkedDates {
		dto.MarkedDates[d] = h.toMarkDTO(m)
	}
	return dto
}
