package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ordersTotal,
		ordersExpiredTotal,
		paymentsRevenueTotal,
	)
}

var (
	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Payment orders by provider and outcome (created/paid/expired).",
		},
		[]string{"provider", "status"},
	)

	ordersExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_expired_total",
			Help: "Pending orders moved to expired by the sweep worker.",
		},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "Total monetary value of settled orders in minor units, labeled by currency.",
		},
		[]string{"currency"},
	)
)

func IncOrder(provider, status string) {
	ordersTotal.WithLabelValues(norm(provider), norm(status)).Inc()
}

func AddOrdersExpired(n int64) {
	ordersExpiredTotal.Add(float64(n))
}

func AddPaymentRevenue(currency string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}
