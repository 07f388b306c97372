package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Processing outcomes recorded by ProcessorMetrics.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// ProcessorMetrics counts and times session processing runs.
type ProcessorMetrics struct {
	sessions *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewProcessorMetrics creates the processor collectors and registers them on reg.
func NewProcessorMetrics(reg prometheus.Registerer) (*ProcessorMetrics, error) {
	m := &ProcessorMetrics{
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_sessions_total",
				Help: "Total number of analysis sessions processed, by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analysis_session_duration_seconds",
			Help:    "Wall time spent processing one analysis session.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
	}
	for _, c := range []prometheus.Collector{m.sessions, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *ProcessorMetrics) observe(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}
