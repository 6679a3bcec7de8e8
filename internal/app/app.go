package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/lovelog/lovelog/internal/config"
	"github.com/lovelog/lovelog/pkg/agenda"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, event sources, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}
	return NewApplicationWithConfig(context.Background(), cfg)
}

func NewApplicationWithConfig(ctx context.Context, cfg config.Application) (*Application, error) {
	deps, err := BuildDependencies(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: agenda.RefreshTimeout + 5*time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, router: r, srv: srv}, nil
}

// Run builds the first agenda, starts the background jobs and serves HTTP
// until the process is interrupted.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.deps.Close()

	go a.deps.NotifyHub.Run(ctx)

	if summary, err := a.deps.AgendaService.Rebuild(ctx); err != nil {
		log.Errorf("initial agenda build failed: %v", err)
	} else {
		log.Infof("Initial agenda built: %d events on %d marked dates", summary.Events, summary.MarkedDates)
	}

	if a.deps.RefreshScheduler != nil {
		if err := a.deps.RefreshScheduler.Start(); err != nil {
			return err
		}
		defer a.deps.RefreshScheduler.Stop()
	}

	errs := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errs <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	}
}
