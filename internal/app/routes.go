package app

import (
	"github.com/gorilla/mux"
	"github.com/lovelog/lovelog/pkg/agenda"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	r.HandleFunc("/api", agenda.Health).Methods("GET")

	// Agenda
	r.HandleFunc("/api/agenda", deps.AgendaHandler.GetAgenda).Methods("GET")
	r.HandleFunc("/api/agenda.ics", deps.AgendaHandler.ExportICS).Methods("GET")
	r.HandleFunc("/api/agenda/ws", agenda.Subscribe(deps.NotifyHub)).Methods("GET")
	r.HandleFunc("/api/agenda/refresh", deps.AgendaHandler.Refresh).Methods("POST")
	r.HandleFunc("/api/agenda/{date:[0-9]{4}-[0-9]{2}-[0-9]{2}}", deps.AgendaHandler.GetDay).Methods("GET")
}
