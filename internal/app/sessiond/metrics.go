package sessiond

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiond_validations_total",
		Help: "The total number of session validations by result",
	}, []string{"result"})
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiond_cache_lookups_total",
		Help: "The total number of validation cache lookups by result",
	}, []string{"result"})
	upstreamRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sessiond_upstream_request_duration_seconds",
		Help:    "Duration of requests against the Mojang session server",
		Buckets: prometheus.DefBuckets,
	})
)
