// Package metrics holds the Prometheus collectors for the rep counter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "repcount"

type Manager struct {
	// counters
	CounterFrames       *prometheus.CounterVec
	CounterDropped      prometheus.Counter
	CounterReposition   *prometheus.CounterVec
	CounterReps         *prometheus.CounterVec
	CounterSets         *prometheus.CounterVec
	CounterFlushes      *prometheus.CounterVec
	CounterHTTPRequests *prometheus.CounterVec

	// gauges
	GaugeActiveSessions  prometheus.Gauge
	GaugeProgressPending prometheus.Gauge

	// histograms
	HistFrameDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager(prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager(reg), reg
}

func NewManager(reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "frames_processed_total",
			Help:      "Landmark frames processed by the rep detector",
		}, []string{"exercise"}),
		CounterDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "frames_dropped_total",
			Help:      "Frames dropped because the session queue was full",
		}),
		CounterReposition: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reposition_frames_total",
			Help:      "Frames skipped because the body was not fully visible",
		}, []string{"exercise"}),
		CounterReps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reps_total",
			Help:      "Repetitions detected, by kind (full or partial)",
		}, []string{"exercise", "kind"}),
		CounterSets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sets_completed_total",
			Help:      "Sets completed",
		}, []string{"exercise"}),
		CounterFlushes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "progress_flush_total",
			Help:      "Progress outbox flushes, by result",
		}, []string{"result"}),
		CounterHTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served",
		}, []string{"method", "status"}),

		GaugeActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_sessions",
			Help:      "Workout sessions currently running",
		}),
		GaugeProgressPending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "progress_pending",
			Help:      "Progress records waiting for delivery",
		}),

		HistFrameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "frame_process_seconds",
			Help:      "Time from frame arrival to detector result",
			Buckets: []float64{
				0.00001, 0.00005, 0.0001, 0.0005, 0.001,
				0.005, 0.01, 0.05, 0.1, 0.5, 1,
			},
		}),
	}
}
