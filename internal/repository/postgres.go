package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/ampere/internal/geo"
	"github.com/UnknownOlympus/ampere/internal/models"
)

// maxGeocodingAttempts is the number of failed geocoding attempts after which a
// catalogue station is no longer handed to the backfill.
const maxGeocodingAttempts = 5

// FetchStationsInBox returns the catalogue stations with coordinates inside box.
// A connector count of -1 in the table projection stands for "unknown".
func (r *Repository) FetchStationsInBox(ctx context.Context, box geo.Box) ([]models.StationCandidate, error) {
	query := `
		SELECT name, latitude, longitude, COALESCE(connector_count, -1), COALESCE(connections, '{}')
		FROM charging_stations
		WHERE
			latitude IS NOT NULL AND longitude IS NOT NULL
			AND latitude BETWEEN $1 AND $2
			AND longitude BETWEEN $3 AND $4
		ORDER BY station_id ASC;
	`

	rows, err := r.db.Query(ctx, query, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalogue stations: %w", err)
	}
	defer rows.Close()

	var found []models.StationCandidate
	for rows.Next() {
		var (
			station        models.StationCandidate
			connectorCount int
			connections    []string
		)
		if errScan := rows.Scan(
			&station.Name,
			&station.Coordinates.Latitude,
			&station.Coordinates.Longitude,
			&connectorCount,
			&connections,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan catalogue station: %w", errScan)
		}

		if connectorCount >= 0 {
			station.ConnectorCount = &connectorCount
		}
		if len(connections) > 0 {
			station.Connections = connections
		}
		found = append(found, station)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return found, nil
}

// FetchStationsForGeocoding retrieves catalogue stations that have an address but no coordinates.
// Stations that already failed maxGeocodingAttempts times are skipped. The oldest stations come first.
func (r *Repository) FetchStationsForGeocoding(ctx context.Context, limit int) ([]models.PendingStation, error) {
	var pending []models.PendingStation
	query := `
		SELECT station_id, name, address
		FROM charging_stations
		WHERE
			latitude IS NULL
			AND geocoding_attempts < $1
			AND address IS NOT NULL AND address <> ''
		ORDER BY created_at ASC
		LIMIT $2;
	`

	rows, err := r.db.Query(ctx, query, maxGeocodingAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations without coordinates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var station models.PendingStation
		if errScan := rows.Scan(&station.ID, &station.Name, &station.Address); errScan != nil {
			return nil, fmt.Errorf("failed to scan station without coordinates: %w", errScan)
		}
		r.log.DebugContext(ctx, "A catalogue station without coordinates has been received.",
			"ID", station.ID, "Address", station.Address)
		pending = append(pending, station)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return pending, nil
}

// UpdateStationCoordinates stores the coordinates of a catalogue station and clears its last geocoding error.
func (r *Repository) UpdateStationCoordinates(ctx context.Context, stationID int, coords models.Coordinates) error {
	query := `
		UPDATE charging_stations
		SET
			latitude = $1,
			longitude = $2,
			geocoding_error = NULL
		WHERE
			station_id = $3;
	`

	_, err := r.db.Exec(ctx, query, coords.Latitude, coords.Longitude, stationID)
	if err != nil {
		return fmt.Errorf("failed to update station coordinates: %w", err)
	}

	return nil
}

// IncrementFailureCount bumps the geocoding attempt count of a catalogue station
// and records the error message of the last attempt.
func (r *Repository) IncrementFailureCount(ctx context.Context, stationID int, errMsg string) error {
	query := `
		UPDATE charging_stations
		SET
			geocoding_attempts = geocoding_attempts + 1,
			geocoding_error = $1
		WHERE station_id = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, stationID)
	if err != nil {
		return fmt.Errorf("failed to update geocoding error and number of attempts: %w", err)
	}

	return nil
}
