package stations

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/ampere/internal/models"
	"googlemaps.github.io/maps"
)

// SourceType represents the type of station source.
type SourceType string

const (
	// SourceTypeStatic is the configuration-provided station list.
	SourceTypeStatic SourceType = "static"
	// SourceTypeCatalogue is the station catalogue kept in PostgreSQL.
	SourceTypeCatalogue SourceType = "catalogue"
	// SourceTypeOpenChargeMap is the Open Charge Map directory API.
	SourceTypeOpenChargeMap SourceType = "openchargemap"
	// SourceTypeNominatim is the OpenStreetMap Nominatim POI search.
	SourceTypeNominatim SourceType = "nominatim"
	// SourceTypeGoogle is Google Places Nearby Search.
	SourceTypeGoogle SourceType = "google"
)

const defaultMaxResults = 20

// SourceConfig holds configuration for creating a station source.
type SourceConfig struct {
	Type       SourceType                // Type of source to create
	Name       string                    // Name used in logs and metrics, defaults to Type
	APIKey     string                    // API key (Open Charge Map, Google)
	RateLimit  int                       // Requests per second (Open Charge Map)
	MaxResults int                       // Upper bound of entries asked from remote APIs
	Stations   []models.StationCandidate // Station list for the static source
	Store      StationStore              // Persistence for the catalogue source
	Logger     *slog.Logger              // Logger for the source
}

// NewSource creates a station source based on the provided configuration.
func NewSource(config SourceConfig) (Source, error) {
	if config.Name == "" {
		config.Name = string(config.Type)
	}
	if config.MaxResults <= 0 {
		config.MaxResults = defaultMaxResults
	}

	switch config.Type {
	case SourceTypeStatic:
		stations := config.Stations
		if len(stations) == 0 {
			stations = DefaultStaticStations
		}
		return NewStaticSource(config.Name, stations, config.Logger), nil
	case SourceTypeCatalogue:
		if config.Store == nil {
			return nil, errors.New("station store is required for catalogue source")
		}
		return NewCatalogueSource(config.Name, config.Store, config.Logger), nil
	case SourceTypeOpenChargeMap:
		return newOpenChargeMapSource(config)
	case SourceTypeNominatim:
		return NewNominatimPOISource(config.Name, config.MaxResults, config.Logger), nil
	case SourceTypeGoogle:
		return newGooglePlacesSource(config)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
}

// NewSources builds the sources in the given order, which is also their priority.
func NewSources(configs []SourceConfig) ([]Source, error) {
	sources := make([]Source, 0, len(configs))
	for idx, config := range configs {
		source, err := NewSource(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create source #%d (%s): %w", idx, config.Type, err)
		}
		sources = append(sources, source)
	}

	return sources, nil
}

func newOpenChargeMapSource(config SourceConfig) (Source, error) {
	if config.APIKey == "" {
		return nil, ErrOpenChargeMapNoAPIKey
	}

	if config.RateLimit <= 0 {
		config.RateLimit = 5
		config.Logger.Warn("Rate limit for Open Charge Map API not set, set a default value", "value", config.RateLimit)
	}

	return NewOpenChargeMapSource(config.Name, config.APIKey, config.MaxResults, config.RateLimit, config.Logger), nil
}

func newGooglePlacesSource(config SourceConfig) (Source, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google Places source")
	}

	clientOpts := []maps.ClientOption{maps.WithAPIKey(config.APIKey)}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGooglePlacesSource(config.Name, client, config.Logger), nil
}
