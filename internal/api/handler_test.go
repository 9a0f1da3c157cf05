package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UnknownOlympus/icarus/internal/api"
	"github.com/UnknownOlympus/icarus/internal/geolocation"
	"github.com/UnknownOlympus/icarus/internal/mapview"
	"github.com/UnknownOlympus/icarus/internal/models"
	"github.com/UnknownOlympus/icarus/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTracker struct {
	view     mapview.View
	flights  models.FlightSet
	selected []string
	selectFn func(id string) error
	closed   bool
}

func (f *fakeTracker) View() mapview.View        { return f.view }
func (f *fakeTracker) Flights() models.FlightSet { return f.flights }

func (f *fakeTracker) SelectFlight(_ context.Context, id string) error {
	f.selected = append(f.selected, id)
	if f.selectFn != nil {
		return f.selectFn(id)
	}
	return nil
}

func (f *fakeTracker) AnimationComplete(context.Context) bool {
	changed := !f.closed
	f.closed = true
	return changed
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fixture struct {
	tracker  *fakeTracker
	boundary *api.Boundary
	readings chan geolocation.Reading
	hub      *api.Hub
	router   http.Handler
}

func newFixture(t *testing.T, health api.HealthChecker) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		tracker: &fakeTracker{
			view:    mapview.View{Status: mapview.StatusReady, Markers: []mapview.Marker{{ID: "abc123"}}},
			flights: models.FlightSet{{ID: "abc123", Latitude: 40.1, Longitude: -74.1}},
		},
		boundary: api.NewBoundary(),
		readings: make(chan geolocation.Reading, 1),
		hub:      api.NewHub(logger, nil),
	}
	handler := api.NewHandler(f.tracker, f.boundary, f.readings, health, logger)
	f.router = api.NewRouter(api.RouterConfig{
		Handler:  handler,
		Hub:      f.hub,
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	})
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Read(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("view", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/v1/view", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var view mapview.View
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, mapview.StatusReady, view.Status)
		assert.Len(t, view.Markers, 1)
	})

	t.Run("flights", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/v1/flights", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var flights models.FlightSet
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flights))
		assert.Equal(t, []string{"abc123"}, flights.IDs())
	})
}

func TestHandler_PostLocation(t *testing.T) {
	t.Run("valid reading is queued", func(t *testing.T) {
		f := newFixture(t, nil)

		rec := f.do(http.MethodPost, "/api/v1/location",
			`{"available":true,"enabled":true,"coords":{"latitude":40,"longitude":-74}}`)

		require.Equal(t, http.StatusAccepted, rec.Code)
		reading := <-f.readings
		require.NoError(t, reading.Err())
		assert.Equal(t, models.Coordinate{Latitude: 40, Longitude: -74}, *reading.Coords)
	})

	t.Run("degraded reading is queued", func(t *testing.T) {
		f := newFixture(t, nil)

		rec := f.do(http.MethodPost, "/api/v1/location", `{"available":true,"enabled":false}`)

		require.Equal(t, http.StatusAccepted, rec.Code)
		reading := <-f.readings
		require.ErrorIs(t, reading.Err(), geolocation.ErrDenied)
	})

	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `{"available":`},
		{"missing flags", `{"coords":{"latitude":40,"longitude":-74}}`},
		{"latitude out of range", `{"available":true,"enabled":true,"coords":{"latitude":95,"longitude":-74}}`},
		{"longitude out of range", `{"available":true,"enabled":true,"coords":{"latitude":40,"longitude":-200}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)

			rec := f.do(http.MethodPost, "/api/v1/location", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, f.readings)
		})
	}

	t.Run("full queue", func(t *testing.T) {
		f := newFixture(t, nil)
		f.readings <- geolocation.Reading{}

		rec := f.do(http.MethodPost, "/api/v1/location", `{"available":false,"enabled":false}`)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "location queue is full")
	})
}

func TestHandler_SelectFlight(t *testing.T) {
	t.Run("selects and returns the view", func(t *testing.T) {
		f := newFixture(t, nil)

		rec := f.do(http.MethodPost, "/api/v1/flights/abc123/select", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"abc123"}, f.tracker.selected)
	})

	t.Run("unknown flight", func(t *testing.T) {
		f := newFixture(t, nil)
		f.tracker.selectFn = func(string) error { return service.ErrUnknownFlight }

		rec := f.do(http.MethodPost, "/api/v1/flights/zzz999/select", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("tracker failure", func(t *testing.T) {
		f := newFixture(t, nil)
		f.tracker.selectFn = func(string) error { return assert.AnError }

		rec := f.do(http.MethodPost, "/api/v1/flights/abc123/select", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newFixture(t, nil)

		rec := f.do(http.MethodPost, "/api/v1/flights/abc-123/select", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.tracker.selected)
	})
}

func TestHandler_Popup(t *testing.T) {
	t.Run("outside interaction without listener", func(t *testing.T) {
		f := newFixture(t, nil)

		rec := f.do(http.MethodPost, "/api/v1/popup/outside", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"delivered":false}`, rec.Body.String())
	})

	t.Run("outside interaction reaches the listener", func(t *testing.T) {
		f := newFixture(t, nil)
		var fired bool
		f.boundary.Subscribe(func() { fired = true })

		rec := f.do(http.MethodPost, "/api/v1/popup/outside", "")

		assert.JSONEq(t, `{"delivered":true}`, rec.Body.String())
		assert.True(t, fired)
	})

	t.Run("animation end", func(t *testing.T) {
		f := newFixture(t, nil)

		first := f.do(http.MethodPost, "/api/v1/popup/animation-end", "")
		second := f.do(http.MethodPost, "/api/v1/popup/animation-end", "")

		assert.JSONEq(t, `{"changed":true}`, first.Body.String())
		assert.JSONEq(t, `{"changed":false}`, second.Body.String())
	})
}

func TestHandler_Health(t *testing.T) {
	t.Run("without store", func(t *testing.T) {
		rec := newFixture(t, nil).do(http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("store reachable", func(t *testing.T) {
		rec := newFixture(t, fakePinger{}).do(http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("store unreachable", func(t *testing.T) {
		rec := newFixture(t, fakePinger{err: assert.AnError}).do(http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "DB ping failed", rec.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		rec := newFixture(t, nil).do(http.MethodGet, "/metrics", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
