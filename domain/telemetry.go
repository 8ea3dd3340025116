package domain

import "github.com/prometheus/client_golang/prometheus"

var (
	// sor_route_cache_hits_total
	//
	// counter that measures the number of route cache hits
	//
	// Has the following labels:
	// * mode - the cache mode of the request
	RouteCacheHitsCounterMetricName = "sor_route_cache_hits_total"

	// sor_route_cache_misses_total
	//
	// counter that measures the number of route cache misses
	//
	// Has the following labels:
	// * mode - the cache mode of the request
	RouteCacheMissesCounterMetricName = "sor_route_cache_misses_total"

	// sor_route_cache_divergence_total
	//
	// counter that measures how often a cached route differs from the freshly computed one
	RouteCacheDivergenceCounterMetricName = "sor_route_cache_divergence_total"

	// sor_pool_cache_hits_total
	//
	// counter that measures the number of pool snapshot cache hits
	//
	// Has the following labels:
	// * protocol - the pool protocol
	PoolCacheHitsCounterMetricName = "sor_pool_cache_hits_total"

	// sor_pool_cache_misses_total
	//
	// counter that measures the number of pool snapshot cache misses
	//
	// Has the following labels:
	// * protocol - the pool protocol
	PoolCacheMissesCounterMetricName = "sor_pool_cache_misses_total"

	// sor_quote_batch_subdivisions_total
	//
	// counter that measures how often a quote batch was split because it was too large
	QuoteBatchSubdivisionsCounterMetricName = "sor_quote_batch_subdivisions_total"

	// sor_quote_failures_total
	//
	// counter that measures the number of (route, amount) quotes that failed
	//
	// Has the following labels:
	// * protocol - the quoted protocol
	QuoteFailuresCounterMetricName = "sor_quote_failures_total"

	// sor_protocol_fetch_errors_total
	//
	// counter that measures the number of protocols excluded from a request because of errors
	//
	// Has the following labels:
	// * protocol - the failing protocol
	ProtocolFetchErrorsCounterMetricName = "sor_protocol_fetch_errors_total"

	// sor_simulation_status_total
	//
	// counter that measures simulation outcomes
	//
	// Has the following labels:
	// * status - the simulation status
	SimulationStatusCounterMetricName = "sor_simulation_status_total"

	RouteCacheHitsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: RouteCacheHitsCounterMetricName,
			Help: "Total number of route cache hits",
		},
		[]string{"mode"},
	)
	RouteCacheMissesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: RouteCacheMissesCounterMetricName,
			Help: "Total number of route cache misses",
		},
		[]string{"mode"},
	)
	RouteCacheDivergenceCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: RouteCacheDivergenceCounterMetricName,
			Help: "Total number of cached routes that diverged from fresh routes",
		},
	)
	PoolCacheHitsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: PoolCacheHitsCounterMetricName,
			Help: "Total number of pool cache hits",
		},
		[]string{"protocol"},
	)
	PoolCacheMissesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: PoolCacheMissesCounterMetricName,
			Help: "Total number of pool cache misses",
		},
		[]string{"protocol"},
	)
	QuoteBatchSubdivisionsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: QuoteBatchSubdivisionsCounterMetricName,
			Help: "Total number of quote batch subdivisions",
		},
	)
	QuoteFailuresCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: QuoteFailuresCounterMetricName,
			Help: "Total number of failed quotes",
		},
		[]string{"protocol"},
	)
	ProtocolFetchErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: ProtocolFetchErrorsCounterMetricName,
			Help: "Total number of protocols excluded because of fetch errors",
		},
		[]string{"protocol"},
	)
	SimulationStatusCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: SimulationStatusCounterMetricName,
			Help: "Total number of simulations by status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(RouteCacheHitsCounter)
	prometheus.MustRegister(RouteCacheMissesCounter)
	prometheus.MustRegister(RouteCacheDivergenceCounter)
	prometheus.MustRegister(PoolCacheHitsCounter)
	prometheus.MustRegister(PoolCacheMissesCounter)
	prometheus.MustRegister(QuoteBatchSubdivisionsCounter)
	prometheus.MustRegister(QuoteFailuresCounter)
	prometheus.MustRegister(ProtocolFetchErrorsCounter)
	prometheus.MustRegister(SimulationStatusCounter)
}
