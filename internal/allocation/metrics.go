package allocation

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors returns the Prometheus metrics of the allocation engine.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		executionCount,
		executionDuration,
	}
}

var executionCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "allocation_executions_total",
		Help: "How many allocation rule executions finished, partitioned by status.",
	},
	[]string{"status"},
)

var executionDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name: "allocation_execution_duration_seconds",
		Help: "The duration of allocation rule executions in seconds.",
	},
)
