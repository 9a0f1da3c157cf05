package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	FetchesTotal     *prometheus.CounterVec
	ProviderErrors   *prometheus.CounterVec
	RequestSeconds   *prometheus.HistogramVec
	ActiveFetches    prometheus.Gauge
	FlightsInRange   prometheus.Gauge
	StaleResponses   prometheus.Counter
	PopupTransitions *prometheus.CounterVec
	SnapshotWrites   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		FetchesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "icarus_fetches_total",
			Help: "Total number of flight fetches by provider and outcome.",
		}, []string{"provider", "status"}),
		ProviderErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "icarus_provider_errors_total",
			Help: "Total number of flight provider errors by kind.",
		}, []string{"provider", "kind"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "icarus_provider_request_duration_seconds",
			Help:    "Duration of requests to the flight data provider.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveFetches: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "icarus_active_fetches",
			Help: "Current number of in-flight provider requests.",
		}),
		FlightsInRange: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "icarus_flights_in_range",
			Help: "Number of flights in the most recently applied flight set.",
		}),
		StaleResponses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "icarus_stale_responses_total",
			Help: "Total number of fetch responses discarded because a newer request was issued.",
		}),
		PopupTransitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "icarus_popup_transitions_total",
			Help: "Total number of popup state transitions.",
		}, []string{"from", "to"}),
		SnapshotWrites: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "icarus_snapshot_writes_total",
			Help: "Total number of flight snapshot writes by outcome.",
		}, []string{"status"}),
	}
}
