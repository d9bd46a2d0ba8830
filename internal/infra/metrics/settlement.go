package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		settlementsTotal,
		webhookParseFailures,
		promoConsumedTotal,
		entitlementPatchSeconds,
	)
}

var (
	settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Webhook settlement attempts by provider and outcome (settled/duplicate/ignored/unknown_order/sync_failed).",
		},
		[]string{"provider", "outcome"},
	)

	webhookParseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_parse_failures_total",
			Help: "Callbacks a provider adapter could not parse or verify.",
		},
		[]string{"provider"},
	)

	promoConsumedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promo_consumed_total",
			Help: "Promo code uses consumed by settled orders.",
		},
	)

	entitlementPatchSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "entitlement_patch_seconds",
			Help:    "Latency of control-plane entitlement patches.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func IncSettlement(provider, outcome string) {
	settlementsTotal.WithLabelValues(norm(provider), norm(outcome)).Inc()
}

func IncWebhookParseFailure(provider string) {
	webhookParseFailures.WithLabelValues(norm(provider)).Inc()
}

func IncPromoConsumed() { promoConsumedTotal.Inc() }

func ObserveEntitlementPatch(seconds float64) {
	entitlementPatchSeconds.Observe(seconds)
}
