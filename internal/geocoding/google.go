package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/ampere/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider resolves place names with the Google Maps Geocoding API.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	region string          // region biases results towards a ccTLD, e.g. "ke"
	log    *slog.Logger
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// Common errors for Google provider.
var (
	ErrEmptyResponse  = errors.New("get empty response from Google Maps API")
	ErrGoogleBadPoint = errors.New("google maps API returned coordinates out of range")
)

// NewGoogleProvider wraps an already configured Google Maps client.
func NewGoogleProvider(client GoogleAPIClient, region string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, region: region, log: log}
}

// Geocode returns the location of the first result Google reports for place.
func (gp *GoogleProvider) Geocode(ctx context.Context, place string) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "place", place, "region", gp.region)

	req := maps.GeocodingRequest{Address: place, Region: gp.region}
	results, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode place: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrEmptyResponse
	}

	location := results[0].Geometry.Location
	coords := models.Coordinates{Latitude: location.Lat, Longitude: location.Lng}
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrGoogleBadPoint, coords)
	}

	return &coords, nil
}
