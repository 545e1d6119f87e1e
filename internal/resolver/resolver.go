package resolver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/UnknownOlympus/ampere/internal/geo"
	"github.com/UnknownOlympus/ampere/internal/metrics"
	"github.com/UnknownOlympus/ampere/internal/models"
	"github.com/UnknownOlympus/ampere/internal/stations"
)

const (
	// DefaultK is the number of stations returned when the caller has no preference.
	DefaultK = 3
	// DefaultDedupThresholdKm is the distance under which two observations are the same station.
	DefaultDedupThresholdKm = 0.05
	// DefaultSourceTimeout bounds every single source query.
	DefaultSourceTimeout = 8 * time.Second
	// DefaultRadiusKm is the search radius handed to the sources.
	DefaultRadiusKm = 25.0
)

// ErrInvalidArgument is returned for a non-positive k or an out of range query point.
var ErrInvalidArgument = errors.New("invalid argument")

// SourceFailure describes a source that contributed nothing because its query failed.
type SourceFailure struct {
	Source   string `json:"source"`
	Priority int    `json:"priority"`
	Reason   string `json:"reason"`
}

// Result is the outcome of one resolution. An empty Stations slice means no station was found.
type Result struct {
	Stations []models.RankedStation `json:"stations"`
	Failures []SourceFailure        `json:"failures,omitempty"`
}

// Resolver merges the candidates of several station sources into a ranked top-K list.
// It keeps no per-request state and can be shared between goroutines.
type Resolver struct {
	log            *slog.Logger
	metrics        *metrics.Metrics
	dedupThreshold float64
	sourceTimeout  time.Duration
	radiusKm       float64
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithDedupThreshold sets the proximity, in kilometers, under which candidates are merged.
func WithDedupThreshold(km float64) Option {
	return func(r *Resolver) {
		if km >= 0 {
			r.dedupThreshold = km
		}
	}
}

// WithSourceTimeout sets the deadline applied to each source query.
func WithSourceTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.sourceTimeout = timeout
		}
	}
}

// WithRadius sets the search radius handed to the sources.
func WithRadius(km float64) Option {
	return func(r *Resolver) {
		if km > 0 {
			r.radiusKm = km
		}
	}
}

// New creates a Resolver with default settings adjusted by opts.
func New(log *slog.Logger, metrics *metrics.Metrics, opts ...Option) *Resolver {
	res := &Resolver{
		log:            log,
		metrics:        metrics,
		dedupThreshold: DefaultDedupThresholdKm,
		sourceTimeout:  DefaultSourceTimeout,
		radiusKm:       DefaultRadiusKm,
	}
	for _, opt := range opts {
		opt(res)
	}

	return res
}

// sourceOutcome is what one source produced; it is stored at the source's priority index.
type sourceOutcome struct {
	candidates []models.StationCandidate
	err        error
}

// Resolve queries every source in parallel and returns at most k distinct stations
// ordered by distance from query.
//
// The position of a source in sources is its priority: when two sources report the
// same physical station, the entry of the earlier source is kept. A failing source
// never fails the resolution; it is reported in Result.Failures instead.
func (r *Resolver) Resolve(
	ctx context.Context,
	query models.Coordinates,
	sources []stations.Source,
	k int,
) (*Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidArgument, k)
	}
	if !query.Valid() {
		return nil, fmt.Errorf("%w: query coordinates out of range: %v", ErrInvalidArgument, query)
	}

	r.metrics.InflightResolution.Inc()
	defer r.metrics.InflightResolution.Dec()

	outcomes := r.querySources(ctx, query, sources)

	result := &Result{Stations: []models.RankedStation{}}
	var pool []models.RankedStation

	for priority, outcome := range outcomes {
		source := sources[priority]
		if outcome.err != nil {
			r.log.WarnContext(ctx, "Station source unavailable",
				"source", source.Name(), "priority", priority, "error", outcome.err)
			result.Failures = append(result.Failures, SourceFailure{
				Source:   source.Name(),
				Priority: priority,
				Reason:   outcome.err.Error(),
			})
			continue
		}

		for _, candidate := range outcome.candidates {
			if !candidate.Coordinates.Valid() {
				r.log.DebugContext(ctx, "Dropping candidate with invalid coordinates",
					"source", source.Name(), "name", candidate.Name, "coordinates", candidate.Coordinates)
				r.metrics.CandidatesDropped.WithLabelValues("invalid_coordinates").Inc()
				continue
			}
			pool = r.merge(pool, models.RankedStation{
				StationCandidate: candidate,
				DistanceKm:       geo.Distance(query, candidate.Coordinates),
				Priority:         priority,
			})
		}
	}

	slices.SortStableFunc(pool, func(a, b models.RankedStation) int {
		return cmp.Or(
			cmp.Compare(a.DistanceKm, b.DistanceKm),
			cmp.Compare(a.Priority, b.Priority),
			cmp.Compare(a.Name, b.Name),
		)
	})

	if len(pool) > k {
		pool = pool[:k]
	}
	result.Stations = append(result.Stations, pool...)

	outcome := "found"
	if len(result.Stations) == 0 {
		outcome = "empty"
	}
	r.metrics.Resolutions.WithLabelValues(outcome).Inc()

	r.log.DebugContext(ctx, "Resolution finished",
		"sources", len(sources), "failed", len(result.Failures), "returned", len(result.Stations))

	return result, nil
}

// querySources runs every source under its own timeout and waits for all of them.
func (r *Resolver) querySources(
	ctx context.Context,
	query models.Coordinates,
	sources []stations.Source,
) []sourceOutcome {
	outcomes := make([]sourceOutcome, len(sources))

	var wgr sync.WaitGroup
	for idx, source := range sources {
		wgr.Add(1)
		go func() {
			defer wgr.Done()
			outcomes[idx] = r.querySource(ctx, query, source)
		}()
	}
	wgr.Wait()

	return outcomes
}

func (r *Resolver) querySource(
	ctx context.Context,
	query models.Coordinates,
	source stations.Source,
) (outcome sourceOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			r.metrics.SourceQueries.WithLabelValues(source.Name(), "failure").Inc()
			outcome = sourceOutcome{err: fmt.Errorf("source panicked: %v", rec)}
		}
	}()

	sctx, cancel := context.WithTimeout(ctx, r.sourceTimeout)
	defer cancel()

	startTime := time.Now()
	candidates, err := source.QueryStations(sctx, query, r.radiusKm)
	r.metrics.SourceSeconds.WithLabelValues(source.Name()).Observe(time.Since(startTime).Seconds())

	if err == nil && sctx.Err() != nil {
		// answers that arrive after the deadline are discarded
		err = sctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("source timed out after %s: %w", r.sourceTimeout, err)
		}
		r.metrics.SourceQueries.WithLabelValues(source.Name(), "failure").Inc()
		return sourceOutcome{err: err}
	}

	r.metrics.SourceQueries.WithLabelValues(source.Name(), "success").Inc()
	return sourceOutcome{candidates: candidates}
}

// merge adds candidate to pool unless the pool already holds the same station.
// Candidates arrive in priority order, so the entry already in the pool wins; it only
// borrows the connector details of the duplicate when it has none of its own.
func (r *Resolver) merge(pool []models.RankedStation, candidate models.RankedStation) []models.RankedStation {
	for idx := range pool {
		kept := &pool[idx]
		if kept.Coordinates != candidate.Coordinates &&
			geo.Distance(kept.Coordinates, candidate.Coordinates) >= r.dedupThreshold {
			continue
		}

		r.metrics.CandidatesDropped.WithLabelValues("duplicate").Inc()

		if !kept.HasConnectorInfo() && candidate.HasConnectorInfo() {
			kept.ConnectorCount = candidate.ConnectorCount
			kept.Connections = slices.Clone(candidate.Connections)
		}
		return pool
	}

	return append(pool, candidate)
}
