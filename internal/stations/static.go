package stations

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/ampere/internal/models"
)

// DefaultStaticStations is the fallback list used when configuration provides none.
// The stations are in the south-west of Nairobi.
var DefaultStaticStations = []models.StationCandidate{
	{Name: "Karen Charging Hub", Coordinates: models.Coordinates{Latitude: -1.317, Longitude: 36.707}},
	{Name: "Junction Mall Charger", Coordinates: models.Coordinates{Latitude: -1.312, Longitude: 36.782}},
	{Name: "Galleria EV Point", Coordinates: models.Coordinates{Latitude: -1.329, Longitude: 36.721}},
}

// StaticSource serves a fixed list of stations without any network call.
type StaticSource struct {
	name     string
	stations []models.StationCandidate
	log      *slog.Logger
}

// NewStaticSource creates a source over a copy of the given stations.
func NewStaticSource(name string, stations []models.StationCandidate, log *slog.Logger) *StaticSource {
	list := make([]models.StationCandidate, len(stations))
	for i, station := range stations {
		station.Source = models.SourceHardcoded
		station.SourceName = name
		list[i] = station
	}

	return &StaticSource{name: name, stations: list, log: log}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Kind() models.SourceKind { return models.SourceHardcoded }

// QueryStations returns the configured stations lying within radiusKm of center.
func (s *StaticSource) QueryStations(
	ctx context.Context,
	center models.Coordinates,
	radiusKm float64,
) ([]models.StationCandidate, error) {
	found := withinRadius(center, radiusKm, s.stations)
	s.log.DebugContext(ctx, "Static stations filtered", "source", s.name, "total", len(s.stations), "found", len(found))

	out := make([]models.StationCandidate, len(found))
	copy(out, found)

	return out, nil
}
