package campaign

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	operations     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	leadsMoved     *prometheus.CounterVec
	violations     *prometheus.CounterVec
	lockContention prometheus.Counter
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadsynch",
			Subsystem: "campaign",
			Name:      "operations_total",
			Help:      "Total number of campaign orchestrator operations.",
		}, []string{"op", "result"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadsynch",
			Subsystem: "campaign",
			Name:      "operation_duration_seconds",
			Help:      "Latency of campaign orchestrator operations, lock wait included.",
			Buckets: []float64{
				0.001, 0.005, 0.01, 0.025, 0.05,
				0.1, 0.25, 0.5, 1, 2.5, 5,
			},
		}, []string{"op"}),
		leadsMoved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadsynch",
			Subsystem: "campaign",
			Name:      "leads_moved_total",
			Help:      "Leads whose owner changed in a committed operation.",
		}, []string{"op"}),
		violations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadsynch",
			Subsystem: "campaign",
			Name:      "consistency_violations_total",
			Help:      "Ledger consistency violations detected.",
		}, []string{"op"}),
		lockContention: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "leadsynch",
			Subsystem: "campaign",
			Name:      "lock_contention_total",
			Help:      "Operations rejected because the campaign lock was held.",
		}),
	}
})

func (m *metrics) observe(op string, start time.Time, err error) {
	m.operations.WithLabelValues(op, resultLabel(err)).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
