package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(cacheOps)
}

var cacheOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_ops_total",
		Help: "Cache operations by cache name and result (hit/miss/invalidate/error).",
	},
	[]string{"cache", "result"},
)

func IncCacheOp(cache, result string) {
	cacheOps.WithLabelValues(norm(cache), norm(result)).Inc()
}
