package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ShipmentsProcessed *prometheus.CounterVec
	Resolutions        *prometheus.CounterVec
	StrategyAttempts   *prometheus.CounterVec
	APIErrors          prometheus.Counter
	RequestSeconds     *prometheus.HistogramVec
	ActiveWorkers      prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ShipmentsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_shipments_processed_total",
			Help: "Total number of shipments processed by the geocoding worker.",
		}, []string{"status"}),
		Resolutions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_address_resolutions_total",
			Help: "Total number of address resolutions by outcome.",
		}, []string{"status"}),
		StrategyAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_strategy_attempts_total",
			Help: "Total number of cascade attempts per strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "waypoint_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API, empty results excluded.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "waypoint_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "waypoint_active_workers",
			Help: "Current number of active workers processing shipments.",
		}),
	}
}
