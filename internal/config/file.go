package config

import (
	"errors"
	"fmt"

	"github.com/UnknownOlympus/ampere/internal/models"
	"github.com/spf13/viper"
)

// ErrMissingSourceType is returned when a source of the YAML file has no type.
var ErrMissingSourceType = errors.New("source type is required")

// SourceConfig describes one station source of the YAML file.
type SourceConfig struct {
	Type       string          `mapstructure:"type"`
	Name       string          `mapstructure:"name"`
	APIKey     string          `mapstructure:"api_key"`
	RateLimit  int             `mapstructure:"rate_limit"`
	MaxResults int             `mapstructure:"max_results"`
	Stations   []StationConfig `mapstructure:"stations"`
}

// StationConfig is a station of a static source.
type StationConfig struct {
	Name           string   `mapstructure:"name"`
	Latitude       float64  `mapstructure:"latitude"`
	Longitude      float64  `mapstructure:"longitude"`
	ConnectorCount *int     `mapstructure:"connector_count"`
	Connections    []string `mapstructure:"connections"`
}

// Candidates converts the static stations of the source to station candidates.
func (s SourceConfig) Candidates() []models.StationCandidate {
	if len(s.Stations) == 0 {
		return nil
	}

	candidates := make([]models.StationCandidate, len(s.Stations))
	for i, station := range s.Stations {
		candidates[i] = models.StationCandidate{
			Name: station.Name,
			Coordinates: models.Coordinates{
				Latitude:  station.Latitude,
				Longitude: station.Longitude,
			},
			ConnectorCount: station.ConnectorCount,
			Connections:    station.Connections,
		}
	}

	return candidates
}

type fileConfig struct {
	Sources    []SourceConfig     `mapstructure:"sources"`
	Efficiency map[string]float64 `mapstructure:"efficiency"`
}

// loadFile reads the YAML configuration file.
//
// Example:
//
//	sources:
//	  - type: static
//	    stations:
//	      - name: Westlands Hub
//	        latitude: -1.2676
//	        longitude: 36.8108
//	  - type: openchargemap
//	    api_key: secret
//	efficiency:
//	  car: 5
//	  tuk-tuk: 7
func loadFile(path string) (*fileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file fileConfig
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	for i, source := range file.Sources {
		if source.Type == "" {
			return nil, fmt.Errorf("source #%d: %w", i, ErrMissingSourceType)
		}
	}

	return &file, nil
}
