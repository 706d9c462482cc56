package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal, jobsReleasedTotal, jobProcessingMs) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "diet_jobs_processed_total",
		Help: "Total number of diet generation jobs processed, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var jobsReleasedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "diet_jobs_released_total",
		Help: "Jobs re-leased after a previous worker's lease expired.",
	},
)

var jobProcessingMs = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "diet_job_processing_ms",
		Help:    "End-to-end processing time per job in milliseconds.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	},
)

func IncJob(status string) {
	jobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func IncJobRelease() {
	jobsReleasedTotal.Inc()
}

func ObserveJobProcessing(ms int) {
	jobProcessingMs.Observe(float64(ms))
}
