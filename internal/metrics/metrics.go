package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Resolutions        *prometheus.CounterVec
	SourceQueries      *prometheus.CounterVec
	SourceSeconds      *prometheus.HistogramVec
	CandidatesDropped  *prometheus.CounterVec
	GeocodeSeconds     *prometheus.HistogramVec
	GeocodeCache       *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	InflightResolution prometheus.Gauge
	BackfillProcessed  *prometheus.CounterVec
	ActiveWorkers      prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Resolutions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ampere_resolutions_total",
			Help: "Total number of nearest station resolutions by outcome.",
		}, []string{"outcome"}),
		SourceQueries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ampere_source_queries_total",
			Help: "Total number of station source queries by source and status.",
		}, []string{"source", "status"}),
		SourceSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ampere_source_request_duration_seconds",
			Help:    "Duration of station source queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		CandidatesDropped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ampere_candidates_dropped_total",
			Help: "Station candidates dropped during merge, by reason.",
		}, []string{"reason"}),
		GeocodeSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ampere_geocoding_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		GeocodeCache: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ampere_geocoding_cache_lookups_total",
			Help: "Geocoding cache lookups by layer and result.",
		}, []string{"layer", "result"}),
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ampere_http_requests_total",
			Help: "HTTP requests served by route and status code.",
		}, []string{"route", "code"}),
		InflightResolution: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "ampere_inflight_resolutions",
			Help: "Current number of resolutions in progress.",
		}),
		BackfillProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ampere_catalogue_geocoding_processed_total",
			Help: "Total number of catalogue stations processed by the geocoding backfill.",
		}, []string{"status"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "ampere_catalogue_geocoding_active_workers",
			Help: "Current number of backfill workers geocoding catalogue stations.",
		}),
	}
}
