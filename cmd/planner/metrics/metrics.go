// Package metrics provides Prometheus instrumentation for the planner.
//
// Metrics exposed:
//   - retrofit_simulation_seconds: Histogram of full simulation duration
//   - retrofit_simulations_total: Counter of completed simulations
//   - retrofit_strategy_savings_kwh: Gauge of the latest total savings per strategy
//   - retrofit_strategy_spent_units: Gauge of the latest total spend per strategy
//   - retrofit_search_leaves_total: Counter of optimizer leaves enumerated
//   - retrofit_errors_total: Counter of errors by component and reason
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/HatiCode/retrofit/pkg/simulation"
)

// Metrics holds all Prometheus metrics for the planner.
type Metrics struct {
	SimulationSeconds prometheus.Histogram
	SimulationsTotal  prometheus.Counter
	StrategySavings   *prometheus.GaugeVec
	StrategySpent     *prometheus.GaugeVec
	SearchLeavesTotal prometheus.Counter
	ErrorsTotal       *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SimulationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "retrofit_simulation_seconds",
			Help:    "Time spent running a full multi-strategy simulation",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),

		SimulationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "retrofit_simulations_total",
			Help: "Total number of completed simulations",
		}),

		StrategySavings: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "retrofit_strategy_savings_kwh",
			Help: "Total horizon savings of the latest simulation, per strategy",
		}, []string{"strategy"}),

		StrategySpent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "retrofit_strategy_spent_units",
			Help: "Total budget units spent in the latest simulation, per strategy",
		}, []string{"strategy"}),

		SearchLeavesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "retrofit_search_leaves_total",
			Help: "Total number of leaves enumerated by the category optimizer",
		}),

		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "retrofit_errors_total",
			Help: "Total number of errors by component and reason",
		}, []string{"component", "reason"}),
	}
}

// RecordReport records the outcome of one completed simulation.
func (m *Metrics) RecordReport(r simulation.Report) {
	m.SimulationSeconds.Observe(r.Duration.Seconds())
	m.SimulationsTotal.Inc()
	m.SearchLeavesTotal.Add(float64(r.SearchLeaves))

	for _, res := range r.Strategies {
		m.StrategySavings.WithLabelValues(string(res.Strategy)).Set(res.TotalSavings)
		m.StrategySpent.WithLabelValues(string(res.Strategy)).Set(float64(res.TotalSpent))
	}
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, reason string) {
	m.ErrorsTotal.WithLabelValues(component, reason).Inc()
}
