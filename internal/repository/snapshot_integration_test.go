//go:build integration

package repository_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/icarus/internal/models"
	"github.com/UnknownOlympus/icarus/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestReplaceSnapshot_Postgres(t *testing.T) {
	ctx := t.Context()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("icarus"),
		postgres.WithUsername("icarus"),
		postgres.WithPassword("icarus"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	pool, err := repository.NewDatabase(host, port.Int(), "icarus", "icarus", "icarus")
	require.NoError(t, err)
	defer pool.Close()

	repo := repository.NewRepository(pool, slog.Default())
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.Ping(ctx))

	center := models.Coordinate{Latitude: 40, Longitude: -74}
	first := models.FlightSet{
		{ID: "abc123", Callsign: ptr("DAL123"), Latitude: 40.1, Longitude: -74.1},
		{ID: "def456", Latitude: 39.9, Longitude: -73.9, VelocityMs: ptr(230.5)},
	}
	require.NoError(t, repo.ReplaceSnapshot(ctx, center, first))

	second := models.FlightSet{{ID: "ghi789", Latitude: 40.2, Longitude: -74.2}}
	require.NoError(t, repo.ReplaceSnapshot(ctx, center, second))

	rows, err := pool.Query(ctx, "SELECT icao24 FROM nearby_flights ORDER BY icao24")
	require.NoError(t, err)
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"ghi789"}, ids)
}
