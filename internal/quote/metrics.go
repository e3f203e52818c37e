package quote

import "github.com/prometheus/client_golang/prometheus"

var (
	// upstreamReqs counts provider calls by endpoint and status ("error" when
	// no response was received).
	upstreamReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_api_requests_total",
			Help: "Outbound price provider requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	// upstreamLat records provider round-trip latency in seconds.
	upstreamLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "price_api_request_duration_seconds",
			Help:    "Duration of outbound price provider requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// cacheLookups counts asset catalog cache lookups by result (hit|miss|error).
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_cache_lookups_total",
			Help: "Asset catalog cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(upstreamReqs, upstreamLat, cacheLookups)
}
