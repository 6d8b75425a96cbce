package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	activeDebates prometheus.Gauge
	turnsTotal    prometheus.Counter

	providerCallTotal    *prometheus.CounterVec
	providerCallDuration *prometheus.HistogramVec

	compactionTotal    *prometheus.CounterVec
	compactionDuration prometheus.Histogram

	filteredRepliesTotal prometheus.Counter
	debatesReapedTotal   prometheus.Counter
	debatesArchivedTotal *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			activeDebates: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "active_debates",
					Help: "Current live debate session count.",
				},
			),
			turnsTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "debate_turns_total",
					Help: "Total completed human/agent exchanges.",
				},
			),
			providerCallTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "provider_call_total",
					Help: "Total provider calls by operation, provider and status.",
				},
				[]string{"op", "provider", "status"},
			),
			providerCallDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "provider_call_duration_seconds",
					Help:    "Provider call duration in seconds by operation and provider.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"op", "provider"},
			),
			compactionTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "compaction_total",
					Help: "Total buffer compactions by status.",
				},
				[]string{"status"},
			),
			compactionDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "compaction_duration_seconds",
					Help:    "Compaction duration in seconds, provider call included.",
					Buckets: prometheus.DefBuckets,
				},
			),
			filteredRepliesTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "filtered_replies_total",
					Help: "Total provider replies suppressed by content policy.",
				},
			),
			debatesReapedTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "debates_reaped_total",
					Help: "Total idle debates ended by the reaper.",
				},
			),
			debatesArchivedTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "debates_archived_total",
					Help: "Total ended debates handed to the archive by status.",
				},
				[]string{"status"},
			),
		}

		prometheus.MustRegister(
			m.activeDebates,
			m.turnsTotal,
			m.providerCallTotal,
			m.providerCallDuration,
			m.compactionTotal,
			m.compactionDuration,
			m.filteredRepliesTotal,
			m.debatesReapedTotal,
			m.debatesArchivedTotal,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

// MetricsHandler returns the prometheus scrape handler.
func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func SetActiveDebates(count int) {
	getMetrics().activeDebates.Set(float64(count))
}

func RecordTurn() {
	getMetrics().turnsTotal.Inc()
}

func RecordProviderCall(op, provider string, duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.providerCallTotal.WithLabelValues(op, provider, status).Inc()
	m.providerCallDuration.WithLabelValues(op, provider).Observe(duration.Seconds())
}

func RecordCompaction(duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.compactionTotal.WithLabelValues(status).Inc()
	if success {
		m.compactionDuration.Observe(duration.Seconds())
	}
}

func RecordFilteredReply() {
	getMetrics().filteredRepliesTotal.Inc()
}

func RecordReapedDebate() {
	getMetrics().debatesReapedTotal.Inc()
}

func RecordArchivedDebate(success bool) {
	status := "error"
	if success {
		status = "success"
	}
	getMetrics().debatesArchivedTotal.WithLabelValues(status).Inc()
}
