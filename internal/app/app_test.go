package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lovelog/lovelog/internal/config"
	"github.com/lovelog/lovelog/internal/test_utils"
	"github.com/lovelog/lovelog/pkg/agenda"
	"github.com/lovelog/lovelog/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAppTest(t *testing.T) *Application {
	t.Helper()
	fixture, err := test_utils.LoadFixture("events.json")
	require.NoError(t, err)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture)
	}))
	t.Cleanup(upstream.Close)

	cfg, err := config.Load(t.TempDir() + "/missing.yaml")
	require.NoError(t, err)
	cfg.Source.BaseUrl = upstream.URL + "/api"
	cfg.Refresh.Enabled = false

	application, err := NewApplicationWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(application.deps.Close)
	return application
}

func serve(a *Application, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestApplication_Routes(t *testing.T) {
	application := setupAppTest(t)

	t.Run("health", func(t *testing.T) {
		w := serve(application, http.MethodGet, "/api")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Backend is running!"}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("refresh then read agenda", func(t *testing.T) {
		w := serve(application, http.MethodPost, "/api/agenda/refresh")
		require.Equal(t, http.StatusOK, w.Code)
		var summary agenda.Summary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
		assert.Equal(t, 13, summary.Events)
		assert.Equal(t, 17, summary.MarkedDates)

		w = serve(application, http.MethodGet, "/api/agenda?date=2025-02-04&before=1&after=3")
		require.Equal(t, http.StatusOK, w.Code)
		var dto agenda.AgendaDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Len(t, dto.Items["2025-02-03"], 1)
		assert.Empty(t, dto.Items["2025-02-04"])
		assert.Contains(t, dto.Items, "2025-02-06")
		assert.True(t, dto.MarkedDates["2025-02-05"].Ranged)
	})

	t.Run("day inside a range", func(t *testing.T) {
		w := serve(application, http.MethodGet, "/api/agenda/2025-02-04")

		require.Equal(t, http.StatusOK, w.Code)
		var day agenda.DayDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&day))
		assert.Empty(t, day.Items)
		require.NotNil(t, day.Marked)
		assert.True(t, day.Marked.Ranged)
	})

	t.Run("calendar feed", func(t *testing.T) {
		w := serve(application, http.MethodGet, "/api/agenda.ics")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Weekend Cabin Getaway")
	})

	t.Run("refresh fits in the write timeout", func(t *testing.T) {
		assert.Greater(t, application.srv.WriteTimeout, agenda.RefreshTimeout)
	})

	t.Run("unknown route", func(t *testing.T) {
		w := serve(application, http.MethodGet, "/api/agenda/tomorrow")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBuildDependencies(t *testing.T) {
	t.Run("should reject unknown source", func(t *testing.T) {
		cfg := config.Application{Source: config.Source{Kinds: []string{"carrier-pigeon"}}}

		_, err := BuildDependencies(context.Background(), cfg)

		assert.ErrorContains(t, err, "carrier-pigeon")
	})

	t.Run("should require a source", func(t *testing.T) {
		_, err := BuildDependencies(context.Background(), config.Application{})

		assert.Error(t, err)
	})

	t.Run("should use a repeated source once", func(t *testing.T) {
		// given
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"events":[{"id":1,"title":"Valentine's Dinner","date":"2025-02-14"}]}`))
		}))
		defer upstream.Close()
		cfg := config.Application{
			Source:  config.Source{Kinds: []string{"rest", " REST ", "Rest"}, BaseUrl: upstream.URL + "/api"},
			Refresh: config.Refresh{Enabled: true, Schedule: "@every 1m"},
		}

		// when
		deps, err := BuildDependencies(context.Background(), cfg)
		require.NoError(t, err)
		defer deps.Close()
		summary, err := deps.AgendaService.Rebuild(context.Background())

		// then
		require.NoError(t, err)
		assert.IsType(t, &event.RestSource{}, deps.EventSource)
		assert.NotNil(t, deps.RefreshScheduler)
		assert.Equal(t, 1, summary.Events)
		assert.Len(t, deps.AgendaService.Current().Index.ItemsByDate["2025-02-14"], 1)
	})
}

func TestSourceKinds(t *testing.T) {
	testCases := []struct {
		kinds    []string
		expected []string
	}{
		{kinds: []string{"rest"}, expected: []string{"rest"}},
		{kinds: []string{"rest", " REST "}, expected: []string{"rest"}},
		{kinds: []string{" Google", "rest", "google", ""}, expected: []string{"google", "rest"}},
		{kinds: nil, expected: nil},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, sourceKinds(tc.kinds), "%q", tc.kinds)
	}
}
