package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_processed_total",
		Help: "Background job items processed, labeled by job and status.",
	},
	[]string{"job", "status"}, // job: activation_reconciler|ledger_cleanup|payment_events, status: ok|failed|dropped
)

func IncJob(job, status string) {
	jobsProcessedTotal.WithLabelValues(norm(job), norm(status)).Inc()
}

func AddJob(job, status string, n int) {
	if n <= 0 {
		return
	}
	jobsProcessedTotal.WithLabelValues(norm(job), norm(status)).Add(float64(n))
}
