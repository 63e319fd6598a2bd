// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	MeritListRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merit_list_runs_total",
			Help: "Total number of merit-list recomputation runs",
		},
		[]string{"campaign_id", "result"},
	)

	MeritListApplicantsRanked = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "merit_list_applicants_ranked",
			Help:    "Number of applicants ranked per recomputation run",
			Buckets: prometheus.ExponentialBuckets(10, 4, 6),
		},
		[]string{"campaign_id"},
	)
)
