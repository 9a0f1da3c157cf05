package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/icarus/internal/models"
	"github.com/jackc/pgx/v5"
)

const snapshotTable = "nearby_flights"

const createSnapshotTableQuery = `
	CREATE TABLE IF NOT EXISTS nearby_flights (
		icao24         TEXT PRIMARY KEY,
		callsign       TEXT,
		origin_country TEXT,
		latitude       DOUBLE PRECISION NOT NULL,
		longitude      DOUBLE PRECISION NOT NULL,
		velocity_ms    DOUBLE PRECISION,
		heading_deg    DOUBLE PRECISION,
		altitude_m     DOUBLE PRECISION,
		center_lat     DOUBLE PRECISION NOT NULL,
		center_lon     DOUBLE PRECISION NOT NULL,
		fetched_at     TIMESTAMPTZ NOT NULL
	);
`

const clearSnapshotQuery = `DELETE FROM nearby_flights;`

// SnapshotColumns lists the columns written by ReplaceSnapshot, in copy order.
var SnapshotColumns = []string{
	"icao24", "callsign", "origin_country", "latitude", "longitude",
	"velocity_ms", "heading_deg", "altitude_m", "center_lat", "center_lon", "fetched_at",
}

// EnsureSchema creates the snapshot table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createSnapshotTableQuery); err != nil {
		return fmt.Errorf("failed to create snapshot table: %w", err)
	}

	return nil
}

// ReplaceSnapshot overwrites the stored flight snapshot with flights in a single transaction.
// Only the latest snapshot is kept.
func (r *Repository) ReplaceSnapshot(ctx context.Context, center models.Coordinate, flights models.FlightSet) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.log.ErrorContext(ctx, "Failed to rollback snapshot transaction", "error", rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, clearSnapshotQuery); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	fetchedAt := r.now().UTC()
	rows := make([][]any, 0, len(flights))
	for _, f := range flights {
		rows = append(rows, []any{
			f.ID, f.Callsign, f.OriginCountry, f.Latitude, f.Longitude,
			f.VelocityMs, f.HeadingDeg, f.AltitudeM, center.Latitude, center.Longitude, fetchedAt,
		})
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{snapshotTable}, SnapshotColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy snapshot rows: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	r.log.DebugContext(ctx, "Snapshot replaced", "flights", copied)

	return nil
}
