package stations

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/UnknownOlympus/ampere/internal/models"
	"googlemaps.github.io/maps"
)

// googleMaxRadiusMeters is the largest radius accepted by Nearby Search.
const googleMaxRadiusMeters = 50000

// GooglePlacesClient is the part of the Google Maps client used by GooglePlacesSource.
type GooglePlacesClient interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// GooglePlacesSource finds charging stations with Google Places Nearby Search.
type GooglePlacesSource struct {
	name   string
	client GooglePlacesClient
	log    *slog.Logger
}

func NewGooglePlacesSource(name string, client GooglePlacesClient, log *slog.Logger) *GooglePlacesSource {
	return &GooglePlacesSource{name: name, client: client, log: log}
}

func (g *GooglePlacesSource) Name() string { return g.name }

func (g *GooglePlacesSource) Kind() models.SourceKind { return models.SourceGeocodingPOI }

// QueryStations returns the places Google matches for "EV charging station" around center.
func (g *GooglePlacesSource) QueryStations(
	ctx context.Context,
	center models.Coordinates,
	radiusKm float64,
) ([]models.StationCandidate, error) {
	radius := uint(math.Min(math.Max(radiusKm*1000, 1), googleMaxRadiusMeters))

	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: center.Latitude, Lng: center.Longitude},
		Radius:   radius,
		Keyword:  "EV charging station",
	}

	g.log.DebugContext(ctx, "Searching Google Places", "lat", center.Latitude, "lon", center.Longitude, "radius_m", radius)

	resp, err := g.client.NearbySearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search google places: %w", err)
	}

	candidates := make([]models.StationCandidate, 0, len(resp.Results))
	for _, result := range resp.Results {
		name := result.Name
		if name == "" {
			name = result.Vicinity
		}

		candidates = append(candidates, models.StationCandidate{
			Name: name,
			Coordinates: models.Coordinates{
				Latitude:  result.Geometry.Location.Lat,
				Longitude: result.Geometry.Location.Lng,
			},
			Source:     models.SourceGeocodingPOI,
			SourceName: g.name,
		})
	}

	return candidates, nil
}
