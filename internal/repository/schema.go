package repository

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS charging_stations (
		station_id         SERIAL PRIMARY KEY,
		name               TEXT NOT NULL,
		address            TEXT,
		latitude           DOUBLE PRECISION,
		longitude          DOUBLE PRECISION,
		connector_count    INTEGER CHECK (connector_count >= 0),
		connections        TEXT[],
		geocoding_attempts INTEGER NOT NULL DEFAULT 0,
		geocoding_error    TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS charging_stations_lat_lon_idx ON charging_stations (latitude, longitude);`,
	`CREATE TABLE IF NOT EXISTS geocode_cache (
		place      TEXT PRIMARY KEY,
		latitude   DOUBLE PRECISION NOT NULL,
		longitude  DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
}

// EnsureSchema creates the tables used by the service when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return nil
}
