package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(ordersByStatus) }

var ordersByStatus = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "orders_by_status",
		Help: "Number of stored orders, by status.",
	},
	[]string{"status"},
)

// SetOrdersByStatus replaces the gauge values. Statuses missing from counts
// are reset so a drained status reads 0.
func SetOrdersByStatus(counts map[string]int) {
	ordersByStatus.Reset()
	for status, n := range counts {
		ordersByStatus.WithLabelValues(norm(status)).Set(float64(n))
	}
}
