package repository_test

import (
	"log/slog"
	"regexp"
	"testing"

	"github.com/UnknownOlympus/icarus/internal/models"
	"github.com/UnknownOlympus/icarus/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clearSnapshotQuery = `DELETE FROM nearby_flights;`

func ptr[T any](v T) *T { return &v }

func TestReplaceSnapshot(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	center := models.Coordinate{Latitude: 40, Longitude: -74}
	flights := models.FlightSet{
		{ID: "abc123", Callsign: ptr("DAL123"), Latitude: 40.1, Longitude: -74.1, AltitudeM: ptr(10000.0)},
		{ID: "def456", Latitude: 39.9, Longitude: -73.9},
	}
	table := pgx.Identifier{"nearby_flights"}

	t.Run("error - begin transaction", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectBegin().WillReturnError(assert.AnError)

		err = repo.ReplaceSnapshot(ctx, center, flights)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to begin snapshot transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - clear previous snapshot", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(clearSnapshotQuery)).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err = repo.ReplaceSnapshot(ctx, center, flights)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to clear snapshot")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - copy rows", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(clearSnapshotQuery)).WillReturnResult(pgxmock.NewResult("DELETE", 3))
		mock.ExpectCopyFrom(table, repository.SnapshotColumns).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err = repo.ReplaceSnapshot(ctx, center, flights)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to copy snapshot rows")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - commit", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(clearSnapshotQuery)).WillReturnResult(pgxmock.NewResult("DELETE", 3))
		mock.ExpectCopyFrom(table, repository.SnapshotColumns).WillReturnResult(2)
		mock.ExpectCommit().WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err = repo.ReplaceSnapshot(ctx, center, flights)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to commit snapshot")
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(clearSnapshotQuery)).WillReturnResult(pgxmock.NewResult("DELETE", 3))
		mock.ExpectCopyFrom(table, repository.SnapshotColumns).WillReturnResult(2)
		mock.ExpectCommit()

		err = repo.ReplaceSnapshot(ctx, center, flights)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty set clears the snapshot", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(clearSnapshotQuery)).WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mock.ExpectCopyFrom(table, repository.SnapshotColumns).WillReturnResult(0)
		mock.ExpectCommit()

		err = repo.ReplaceSnapshot(ctx, center, models.FlightSet{})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := repository.NewRepository(mock, slog.Default())

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS nearby_flights").WillReturnError(assert.AnError)
	require.ErrorIs(t, repo.EnsureSchema(ctx), assert.AnError)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS nearby_flights").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	require.NoError(t, repo.EnsureSchema(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := repository.NewRepository(mock, slog.Default())

	mock.ExpectPing().WillReturnError(assert.AnError)
	err = repo.Ping(ctx)
	require.ErrorIs(t, err, assert.AnError)
	require.ErrorContains(t, err, "database ping failed")

	mock.ExpectPing()
	require.NoError(t, repo.Ping(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}
