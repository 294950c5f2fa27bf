// Package jobmetrics instruments the background sync tasks.
package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// Metrics holds the collectors shared by all sync tasks.
type Metrics struct {
	runs        *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	fetched     *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
	now         func() time.Time
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the collectors on registerer, or once on the default
// registerer when it is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker instruments a single run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
	skipped bool
}

// Track starts timing a run of job.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// Skip marks the run as having had nothing to do. Skipped runs are counted
// but do not move the last success timestamp.
func (t *Tracker) Skip() {
	if t != nil {
		t.skipped = true
	}
}

// End records the run and returns err untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	m := t.metrics
	status := StatusSuccess
	switch {
	case err != nil:
		status = StatusFailure
		m.failures.WithLabelValues(t.job).Inc()
	case t.skipped:
		status = StatusSkipped
	default:
		m.lastSuccess.WithLabelValues(t.job).Set(float64(m.now().Unix()))
	}
	m.runs.WithLabelValues(t.job, status).Inc()
	m.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// AddFetched records how many documents a sync run brought in.
func (m *Metrics) AddFetched(job string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.fetched.WithLabelValues(job).Add(float64(count))
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peppolweb_jobs_total",
			Help: "Sync task runs by task and status.",
		}, []string{"job", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peppolweb_jobs_failures_total",
			Help: "Failed sync task runs.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "peppolweb_job_duration_seconds",
			Help:    "Duration of sync task runs.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"job"}),
		fetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peppolweb_job_documents_total",
			Help: "Bills received by sync task runs.",
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "peppolweb_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}, []string{"job"}),
		now: time.Now,
	}
	registerer.MustRegister(m.runs, m.failures, m.duration, m.fetched, m.lastSuccess)
	return m
}
