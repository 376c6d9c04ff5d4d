package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namePrefix = "govdash_"

// Metrics is safe to use when nil or when created without a registry
type Metrics struct {
	actionsTotal     *prometheus.CounterVec
	actionDuration   *prometheus.HistogramVec
	refreshesTotal   *prometheus.CounterVec
	refreshDuration  prometheus.Histogram
	logQueriesTotal  prometheus.Counter
	stateCallsTotal  prometheus.Counter
	unknownStates    prometheus.Counter
	proposalsVisible prometheus.Gauge
}

// New registers the dashboard metrics with registry. A nil registry gives a no-op Metrics.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		return &Metrics{}
	}

	factory := promauto.With(registry)

	return &Metrics{
		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: namePrefix + "actions_total",
			Help: "Total number of dispatched actions by action and outcome",
		}, []string{"action", "outcome"}),
		actionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    namePrefix + "action_duration_seconds",
			Help:    "Time from submission to settlement of a dispatched action",
			Buckets: []float64{1, 2, 5, 10, 15, 30, 60, 120, 300},
		}, []string{"action"}),
		refreshesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: namePrefix + "proposal_refreshes_total",
			Help: "Total number of proposal list refreshes by outcome",
		}, []string{"outcome"}),
		refreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: namePrefix + "proposal_refresh_duration_seconds",
			Help: "Time taken to rebuild the proposal list",
		}),
		logQueriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: namePrefix + "log_queries_total",
			Help: "Total number of ProposalCreated log queries",
		}),
		stateCallsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: namePrefix + "state_calls_total",
			Help: "Total number of proposal state calls",
		}),
		unknownStates: factory.NewCounter(prometheus.CounterOpts{
			Name: namePrefix + "unknown_states_total",
			Help: "Total number of proposal state values outside the known range",
		}),
		proposalsVisible: factory.NewGauge(prometheus.GaugeOpts{
			Name: namePrefix + "proposals",
			Help: "Number of proposals in the last successful refresh",
		}),
	}
}

func (m *Metrics) ObserveAction(action string, err error, since time.Time) {
	if m == nil || m.actionsTotal == nil {
		return
	}

	m.actionsTotal.WithLabelValues(action, outcome(err)).Inc()
	if err == nil {
		m.actionDuration.WithLabelValues(action).Observe(time.Since(since).Seconds())
	}
}

func (m *Metrics) ObserveRefresh(count int, err error, since time.Time) {
	if m == nil || m.refreshesTotal == nil {
		return
	}

	m.refreshesTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}

	m.refreshDuration.Observe(time.Since(since).Seconds())
	m.proposalsVisible.Set(float64(count))
}

func (m *Metrics) IncLogQueries() {
	if m == nil || m.logQueriesTotal == nil {
		return
	}
	m.logQueriesTotal.Inc()
}

func (m *Metrics) IncStateCalls() {
	if m == nil || m.stateCallsTotal == nil {
		return
	}
	m.stateCallsTotal.Inc()
}

func (m *Metrics) IncUnknownStates() {
	if m == nil || m.unknownStates == nil {
		return
	}
	m.unknownStates.Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
