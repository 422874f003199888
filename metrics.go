package action

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Action outcome label values.
const (
	OutcomeOK                  = "ok"
	OutcomeValidationFailed    = "validation_failed"
	OutcomeAuthorizationFailed = "authorization_failed"
	OutcomeExecutionFailed     = "execution_failed"
	OutcomeTransactionFailed   = "transaction_failed"
)

// Metrics instruments pipeline controllers and task handlers. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	actionsTotal  *prometheus.CounterVec
	tasksEnqueued *prometheus.CounterVec
	taskFailures  *prometheus.CounterVec
}

// NewMetrics registers pipeline collectors on reg. Pass
// prometheus.DefaultRegisterer for the process-global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "action",
			Name:      "executions_total",
			Help:      "Pipeline executions by action name and outcome.",
		}, []string{"action", "outcome"}),
		tasksEnqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "action",
			Name:      "tasks_enqueued_total",
			Help:      "UserActionRequests submitted to a task handler.",
		}, []string{"action"}),
		taskFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "action",
			Name:      "task_failures_total",
			Help:      "UserActionRequest submissions that failed.",
		}, []string{"action"}),
	}
}

func (m *Metrics) observeAction(name, outcome string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) observeTaskEnqueued(actionKey string) {
	if m == nil {
		return
	}
	m.tasksEnqueued.WithLabelValues(actionKey).Inc()
}

func (m *Metrics) observeTaskFailure(actionKey string) {
	if m == nil {
		return
	}
	m.taskFailures.WithLabelValues(actionKey).Inc()
}
