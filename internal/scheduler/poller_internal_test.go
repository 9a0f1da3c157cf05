package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/icarus/internal/geolocation"
	"github.com/UnknownOlympus/icarus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) Locate(context.Context) (geolocation.Reading, error) {
	return geolocation.Reading{Available: true, Enabled: true}, assert.AnError
}

func TestPoller_Poll(t *testing.T) {
	coords := models.Coordinate{Latitude: 50.45, Longitude: 30.52}

	t.Run("forwards readings", func(t *testing.T) {
		readings := make(chan geolocation.Reading, 1)
		poller := New(geolocation.NewStaticSource(coords), time.Second, readings, slog.Default())

		poller.poll(t.Context())

		reading := <-readings
		require.NoError(t, reading.Err())
		assert.Equal(t, coords, *reading.Coords)
	})

	t.Run("forwards degraded readings on error", func(t *testing.T) {
		readings := make(chan geolocation.Reading, 1)
		poller := New(failingSource{}, time.Second, readings, slog.Default())

		poller.poll(t.Context())

		reading := <-readings
		require.ErrorIs(t, reading.Err(), geolocation.ErrNoFix)
	})

	t.Run("cancelled context does not block on a full channel", func(t *testing.T) {
		readings := make(chan geolocation.Reading, 1)
		poller := New(geolocation.NewStaticSource(coords), time.Second, readings, slog.Default())
		poller.poll(t.Context())

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		poller.poll(ctx)

		assert.Len(t, readings, 1)
	})

	t.Run("default interval", func(t *testing.T) {
		poller := New(geolocation.NewStaticSource(coords), 0, nil, slog.Default())

		assert.Equal(t, defaultInterval, poller.interval)
	})
}

func TestPoller_Start(t *testing.T) {
	coords := models.Coordinate{Latitude: 50.45, Longitude: 30.52}
	readings := make(chan geolocation.Reading, 1)
	poller := New(geolocation.NewStaticSource(coords), time.Hour, readings, slog.Default())

	require.NoError(t, poller.Start(t.Context()))
	defer poller.Stop()

	select {
	case reading := <-readings:
		require.NoError(t, reading.Err())
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate poll after start")
	}
}
