package stations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/ampere/internal/geo"
	"github.com/UnknownOlympus/ampere/internal/models"
)

// StationStore is the persistence capability the catalogue source reads from.
type StationStore interface {
	FetchStationsInBox(ctx context.Context, box geo.Box) ([]models.StationCandidate, error)
}

// CatalogueSource serves stations maintained in the operator's own database.
type CatalogueSource struct {
	name  string
	store StationStore
	log   *slog.Logger
}

func NewCatalogueSource(name string, store StationStore, log *slog.Logger) *CatalogueSource {
	return &CatalogueSource{name: name, store: store, log: log}
}

func (c *CatalogueSource) Name() string { return c.name }

func (c *CatalogueSource) Kind() models.SourceKind { return models.SourceHardcoded }

// QueryStations loads the stations inside the bounding box of the search circle
// and then trims the corners with an exact distance check.
func (c *CatalogueSource) QueryStations(
	ctx context.Context,
	center models.Coordinates,
	radiusKm float64,
) ([]models.StationCandidate, error) {
	box := geo.BoundingBox(center, radiusKm)
	if radiusKm <= 0 {
		box = geo.Box{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180}
	}

	rows, err := c.store.FetchStationsInBox(ctx, box)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue stations: %w", err)
	}

	found := withinRadius(center, radiusKm, rows)
	for i := range found {
		found[i].Source = models.SourceHardcoded
		found[i].SourceName = c.name
	}

	c.log.DebugContext(ctx, "Catalogue stations loaded", "source", c.name, "in_box", len(rows), "found", len(found))

	return found, nil
}
