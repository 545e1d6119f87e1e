package stations

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/ampere/internal/geo"
	"github.com/UnknownOlympus/ampere/internal/models"
)

// Source is a best-effort supplier of charging station candidates around a point.
// Each implementation maps its own raw response into models.StationCandidate and
// drops entries it cannot place on the map.
type Source interface {
	Name() string
	Kind() models.SourceKind
	QueryStations(ctx context.Context, center models.Coordinates, radiusKm float64) ([]models.StationCandidate, error)
}

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// withinRadius keeps the candidates that are no farther than radiusKm from center.
// A non-positive radius disables the filter.
func withinRadius(
	center models.Coordinates,
	radiusKm float64,
	candidates []models.StationCandidate,
) []models.StationCandidate {
	if radiusKm <= 0 {
		return candidates
	}

	filtered := make([]models.StationCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if geo.Distance(center, candidate.Coordinates) <= radiusKm {
			filtered = append(filtered, candidate)
		}
	}

	return filtered
}
