package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	ModelsCreated      prometheus.Counter
	ItemsCreated       prometheus.Counter
	DataValuesWritten  prometheus.Counter
	ValidationFailures prometheus.Counter
	PassportsBuilt     prometheus.Counter
	PassportCacheHits  prometheus.Counter
	PassportCacheMiss  prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		ModelsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "traceport_models_created_total",
			Help: "Total number of product models created",
		}),
		ItemsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "traceport_items_created_total",
			Help: "Total number of product items created",
		}),
		DataValuesWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "traceport_data_values_written_total",
			Help: "Total number of data values added or modified on carriers",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "traceport_validation_failures_total",
			Help: "Total number of writes rejected by template validation",
		}),
		PassportsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Name: "traceport_passports_built_total",
			Help: "Total number of public passport views assembled",
		}),
		PassportCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "traceport_passport_cache_hits_total",
			Help: "Total number of passport views served from cache",
		}),
		PassportCacheMiss: promauto.NewCounter(prometheus.CounterOpts{
			Name: "traceport_passport_cache_misses_total",
			Help: "Total number of passport views built after a cache miss",
		}),
	}
}
