package guard

import "github.com/prometheus/client_golang/prometheus"

var (
	// blockedGauge is 1 while outbound price calls are suppressed.
	blockedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "price_api_blocked",
		Help: "Whether outbound price provider calls are currently blocked (1) or not (0).",
	})

	// blockActivations counts Activate calls, including re-activations during a block.
	blockActivations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_api_block_activations_total",
		Help: "Number of times the price provider block window was armed.",
	})

	// shieldOutcomes counts classified upstream failures by outcome (blocked|rethrown).
	shieldOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_api_failures_total",
		Help: "Failed price provider calls by classification outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(blockedGauge, blockActivations, shieldOutcomes)
}
