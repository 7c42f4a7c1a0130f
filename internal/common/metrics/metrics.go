// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	TransportWorker = "worker"
	TransportREST   = "rest"
	TransportAgent  = "agent"
	TransportCLI    = "cli"
)

var (
	MatchScoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_scores_total",
			Help: "Total number of compatibility scores computed",
		},
		[]string{"mode", "transport"},
	)

	MatchScoreValue = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_score_value",
			Help:    "Distribution of overall compatibility scores (0-100)",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"mode"},
	)

	MatchScoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_score_errors_total",
			Help: "Total number of rejected scoring requests",
		},
		[]string{"transport", "error_code"},
	)

	ProfileCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_cache_lookups_total",
			Help: "Profile directory cache lookups by result",
		},
		[]string{"result"},
	)

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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// RecordScore counts one computed score for mode over transport.
func RecordScore(mode, transport string, overall float64) {
	MatchScoresTotal.WithLabelValues(mode, transport).Inc()
	MatchScoreValue.WithLabelValues(mode).Observe(overall)
}

func RecordScoreError(transport, errorCode string) {
	MatchScoreErrors.WithLabelValues(transport, errorCode).Inc()
}

// TrackJob marks a job of taskType active and returns the func that ends it.
func TrackJob(taskType string) func(errorCode string) {
	start := time.Now()
	WorkerJobsActive.WithLabelValues(taskType).Inc()

	return func(errorCode string) {
		WorkerJobsActive.WithLabelValues(taskType).Dec()
		WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
		if errorCode == "" {
			WorkerJobsCompleted.WithLabelValues(taskType).Inc()
			return
		}
		WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
	}
}
