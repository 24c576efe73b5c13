package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		paymeRPCRequests,
		paymeRPCDuration,
		paymeAuthFailures,
	)
}

var (
	// result: ok|error
	paymeRPCRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payme_rpc_requests_total",
			Help: "Payme merchant API calls by method and result.",
		},
		[]string{"method", "result"},
	)

	paymeRPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payme_rpc_duration_seconds",
			Help:    "Duration of Payme merchant API calls in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method"},
	)

	paymeAuthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payme_auth_failures_total",
			Help: "Payme callbacks rejected with an authorization error.",
		},
	)
)

var knownMethods = map[string]struct{}{
	"CheckPerformTransaction": {},
	"CreateTransaction":       {},
	"PerformTransaction":      {},
	"CancelTransaction":       {},
	"CheckTransaction":        {},
	"GetStatement":            {},
	"ChangePassword":          {},
}

// method labels are bounded to the protocol's method set.
func methodLabel(method string) string {
	if _, ok := knownMethods[method]; ok {
		return method
	}
	return "unknown"
}

func ObservePaymeRPC(method, result string, d time.Duration) {
	m := methodLabel(method)
	paymeRPCRequests.WithLabelValues(m, norm(result)).Inc()
	paymeRPCDuration.WithLabelValues(m).Observe(d.Seconds())
}

func IncPaymeAuthFailure() {
	paymeAuthFailures.Inc()
}
