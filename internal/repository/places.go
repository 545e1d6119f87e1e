package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/ampere/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetCachedPlace returns the stored coordinates of a normalized place name.
// A place that was never stored yields nil coordinates and a nil error.
func (r *Repository) GetCachedPlace(ctx context.Context, place string) (*models.Coordinates, error) {
	query := `
		SELECT latitude, longitude
		FROM geocode_cache
		WHERE place = $1;
	`

	var coords models.Coordinates
	err := r.db.QueryRow(ctx, query, place).Scan(&coords.Latitude, &coords.Longitude)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil //nolint:nilnil // a miss is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cached place: %w", err)
	}

	return &coords, nil
}

// SavePlace stores or refreshes the coordinates of a normalized place name.
func (r *Repository) SavePlace(ctx context.Context, place string, coords models.Coordinates) error {
	query := `
		INSERT INTO geocode_cache (place, latitude, longitude, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (place) DO UPDATE
		SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			updated_at = now();
	`

	_, err := r.db.Exec(ctx, query, place, coords.Latitude, coords.Longitude)
	if err != nil {
		return fmt.Errorf("failed to save place: %w", err)
	}

	return nil
}
