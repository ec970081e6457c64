package metrics

import "github.com/prometheus/client_golang/prometheus"

var reindexJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "wayfarer",
		Name:      "reindex_jobs_total",
		Help:      "Total number of background reindex jobs by result",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(reindexJobsTotal)
}

// ReindexJobOK counts a successful background reindex job.
func ReindexJobOK() {
	reindexJobsTotal.WithLabelValues("ok").Inc()
}

// ReindexJobFailed counts a failed background reindex job.
func ReindexJobFailed() {
	reindexJobsTotal.WithLabelValues("error").Inc()
}

// ReindexJobDropped counts a job dropped because the queue was full.
func ReindexJobDropped() {
	reindexJobsTotal.WithLabelValues("dropped").Inc()
}
