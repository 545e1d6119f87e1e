package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/ampere/internal/geocoding"
	"github.com/UnknownOlympus/ampere/internal/metrics"
	"github.com/UnknownOlympus/ampere/internal/models"
	"github.com/UnknownOlympus/ampere/internal/resolver"
	"github.com/UnknownOlympus/ampere/internal/stations"
)

// ErrPlaceNotFound is returned when the place typed by the user cannot be geocoded.
var ErrPlaceNotFound = errors.New("place not found")

// StationResolver ranks the stations of several sources around a point.
type StationResolver interface {
	Resolve(ctx context.Context, query models.Coordinates, sources []stations.Source, k int) (*resolver.Result, error)
}

// Lookup is the answer to a nearest station request.
type Lookup struct {
	Place    string                   `json:"place,omitempty"`
	Query    models.Coordinates       `json:"query"`
	Stations []models.RankedStation   `json:"stations"`
	Failures []resolver.SourceFailure `json:"failures,omitempty"`
}

// StationService finds the charging stations nearest to a place or a point.
type StationService struct {
	log          *slog.Logger
	geocoder     geocoding.Provider
	providerName string
	resolver     StationResolver
	sources      []stations.Source
	metrics      *metrics.Metrics
}

// NewStationService creates a StationService. The order of sources is their priority.
func NewStationService(
	log *slog.Logger,
	geocoder geocoding.Provider,
	providerName string,
	resolver StationResolver,
	sources []stations.Source,
	metrics *metrics.Metrics,
) *StationService {
	return &StationService{
		log:          log,
		geocoder:     geocoder,
		providerName: providerName,
		resolver:     resolver,
		sources:      sources,
		metrics:      metrics,
	}
}

// Sources returns the names of the configured sources in priority order.
func (s *StationService) Sources() []string {
	names := make([]string, len(s.sources))
	for i, source := range s.sources {
		names[i] = source.Name()
	}

	return names
}

// FindNearestByPlace geocodes place and returns the k nearest stations around it.
func (s *StationService) FindNearestByPlace(ctx context.Context, place string, k int) (*Lookup, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return nil, fmt.Errorf("%w: place must not be empty", resolver.ErrInvalidArgument)
	}

	startTime := time.Now()
	coords, err := s.geocoder.Geocode(ctx, place)
	s.metrics.GeocodeSeconds.WithLabelValues(s.providerName).Observe(time.Since(startTime).Seconds())
	if err != nil {
		s.log.WarnContext(ctx, "Failed to geocode place", "place", place, "provider", s.providerName, "error", err)
		return nil, fmt.Errorf("%w: %q", ErrPlaceNotFound, place)
	}

	lookup, err := s.FindNearest(ctx, *coords, k)
	if err != nil {
		return nil, err
	}
	lookup.Place = place

	return lookup, nil
}

// FindNearest returns the k nearest stations around coords.
func (s *StationService) FindNearest(ctx context.Context, coords models.Coordinates, k int) (*Lookup, error) {
	result, err := s.resolver.Resolve(ctx, coords, s.sources, k)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stations: %w", err)
	}

	if len(result.Stations) == 0 {
		s.log.InfoContext(ctx, "No charging stations found nearby",
			"lat", coords.Latitude, "lon", coords.Longitude, "failed_sources", len(result.Failures))
	}

	return &Lookup{
		Query:    coords,
		Stations: result.Stations,
		Failures: result.Failures,
	}, nil
}
