package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/ampere/internal/geocoding"
	"github.com/UnknownOlympus/ampere/internal/metrics"
	"github.com/UnknownOlympus/ampere/internal/models"
)

const backfillBatchSize = 100

// CatalogueRepository is the persistence used by the catalogue backfill.
type CatalogueRepository interface {
	FetchStationsForGeocoding(ctx context.Context, limit int) ([]models.PendingStation, error)
	UpdateStationCoordinates(ctx context.Context, stationID int, coords models.Coordinates) error
	IncrementFailureCount(ctx context.Context, stationID int, errMsg string) error
}

// CatalogueBackfill periodically geocodes catalogue stations that were imported
// with an address only, so the catalogue source can place them on the map.
type CatalogueBackfill struct {
	log           *slog.Logger
	repo          CatalogueRepository
	provider      geocoding.Provider
	providerName  string
	metrics       *metrics.Metrics
	numWorkers    int
	pollInterval  time.Duration
	addressSuffix string // appended to every address, e.g. ", Nairobi, Kenya"
}

// NewCatalogueBackfill creates a backfill runner.
func NewCatalogueBackfill(
	log *slog.Logger,
	repo CatalogueRepository,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
	addressSuffix string,
) *CatalogueBackfill {
	return &CatalogueBackfill{
		log:           log,
		repo:          repo,
		provider:      provider,
		providerName:  providerName,
		metrics:       metrics,
		numWorkers:    max(1, numWorkers),
		pollInterval:  pollInterval,
		addressSuffix: addressSuffix,
	}
}

// Run polls for pending stations until ctx is canceled.
func (cb *CatalogueBackfill) Run(ctx context.Context) {
	ticker := time.NewTicker(cb.pollInterval)
	defer ticker.Stop()

	cb.log.InfoContext(ctx, "Catalogue backfill started", "interval", cb.pollInterval, "workers", cb.numWorkers)

	for {
		select {
		case <-ctx.Done():
			cb.log.InfoContext(ctx, "Catalogue backfill stopped.")
			return
		case <-ticker.C:
			cb.processBatch(ctx)
		}
	}
}

// processBatch geocodes one batch of pending stations with a pool of workers.
func (cb *CatalogueBackfill) processBatch(ctx context.Context) {
	pending, err := cb.repo.FetchStationsForGeocoding(ctx, backfillBatchSize)
	if err != nil {
		cb.log.ErrorContext(ctx, "Failed to fetch stations for geocoding", "error", err)
		return
	}
	if len(pending) == 0 {
		cb.log.DebugContext(ctx, "No catalogue stations waiting for coordinates.")
		return
	}

	cb.log.InfoContext(ctx, "Geocoding catalogue stations", "jobs", len(pending), "num_workers", cb.numWorkers)

	jobs := make(chan models.PendingStation, len(pending))
	var wgr sync.WaitGroup

	for i := 1; i <= cb.numWorkers; i++ {
		wgr.Add(1)
		go cb.worker(ctx, i, &wgr, jobs)
	}

	for _, station := range pending {
		jobs <- station
	}
	close(jobs)

	wgr.Wait()
	cb.log.InfoContext(ctx, "Catalogue geocoding batch finished")
}

func (cb *CatalogueBackfill) worker(
	ctx context.Context,
	idx int,
	wg *sync.WaitGroup,
	jobs <-chan models.PendingStation,
) {
	defer wg.Done()
	for station := range jobs {
		cb.metrics.ActiveWorkers.Inc()
		cb.geocodeStation(ctx, idx, station)
		cb.metrics.ActiveWorkers.Dec()
	}
}

func (cb *CatalogueBackfill) geocodeStation(ctx context.Context, idx int, station models.PendingStation) {
	cb.log.DebugContext(ctx, "Geocoding catalogue station", "worker", idx, "station", station.ID)

	startTime := time.Now()
	coords, err := cb.provider.Geocode(ctx, station.Address+cb.addressSuffix)
	cb.metrics.GeocodeSeconds.WithLabelValues(cb.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		cb.log.WarnContext(ctx, "Failed to geocode catalogue station",
			"worker", idx, "station", station.ID, "name", station.Name, "error", err)
		cb.metrics.BackfillProcessed.WithLabelValues("failure").Inc()

		if errInc := cb.repo.IncrementFailureCount(ctx, station.ID, err.Error()); errInc != nil {
			cb.log.ErrorContext(ctx, "Could not update failure count for station",
				"worker", idx, "station", station.ID, "error", errInc)
		}
		return
	}

	cb.metrics.BackfillProcessed.WithLabelValues("success").Inc()

	if err = cb.repo.UpdateStationCoordinates(ctx, station.ID, *coords); err != nil {
		cb.log.ErrorContext(ctx, "Failed to update coordinates for station",
			"worker", idx, "station", station.ID, "error", err)
	}
}
