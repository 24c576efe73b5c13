package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymeTransactionsTotal,
		paymentsRevenueTiyin,
		subscriptionActivationsTotal,
		ordersCreatedTotal,
	)
}

var (
	paymeTransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payme_transactions_total",
			Help: "Payme transaction state changes (created/performed/cancelled).",
		},
		[]string{"state"},
	)

	paymentsRevenueTiyin = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_revenue_tiyin_total",
			Help: "The total value of performed Payme transactions in tiyin.",
		},
	)

	subscriptionActivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_activations_total",
			Help: "Paid plan activations after a performed transaction, by result.",
		},
		[]string{"result"},
	)

	ordersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders created through the API, by payment method.",
		},
		[]string{"method"},
	)
)

func IncPaymeTransaction(state string) {
	paymeTransactionsTotal.WithLabelValues(norm(state)).Inc()
}

func AddPaymentRevenue(tiyin int64) {
	paymentsRevenueTiyin.Add(float64(tiyin))
}

func IncSubscriptionActivation(result string) {
	subscriptionActivationsTotal.WithLabelValues(norm(result)).Inc()
}

func IncOrderCreated(method string) {
	ordersCreatedTotal.WithLabelValues(norm(method)).Inc()
}
