package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerMetrics records metadata for scheduled jobs plus the order counts
// moved by each launch-recalculation pass.
type SchedulerMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	updated  prometheus.Counter
	launched prometheus.Counter
}

// NewSchedulerMetrics registers the scheduler metrics on the provided registerer.
func NewSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	if reg == nil {
		return &SchedulerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of scheduled jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_success",
		Help: "Successful scheduled job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_failure",
		Help: "Failed scheduled job executions.",
	}, []string{"job"})
	updated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kitchen_launch_updates_total",
		Help: "Orders whose kitchen launch time was rewritten.",
	})
	launched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kitchen_launch_promotions_total",
		Help: "Orders promoted into the active kitchen queue.",
	})
	reg.MustRegister(duration, success, failure, updated, launched)
	return &SchedulerMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		updated:  updated,
		launched: launched,
	}
}

// ObserveDuration records the duration for the named job.
func (s *SchedulerMetrics) ObserveDuration(job string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (s *SchedulerMetrics) IncSuccess(job string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (s *SchedulerMetrics) IncFailure(job string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// AddUpdated counts launch-time rewrites from a recalculation pass.
func (s *SchedulerMetrics) AddUpdated(n int) {
	if s == nil || s.updated == nil || n <= 0 {
		return
	}
	s.updated.Add(float64(n))
}

// AddLaunched counts promotions from a recalculation pass.
func (s *SchedulerMetrics) AddLaunched(n int) {
	if s == nil || s.launched == nil || n <= 0 {
		return
	}
	s.launched.Add(float64(n))
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
