// Package metrics exports container activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
)

const namespace = "navstack"

// Transition kinds used as the kind label of transitions_total.
const (
	TransitionNavigation   = "navigation"
	TransitionDirectUpdate = "direct_update"
)

// Observer is a navstack.Observer that records every operation outcome and
// committed transition of the containers it is added to.
type Observer struct {
	operations  *prometheus.CounterVec
	transitions *prometheus.CounterVec
	depth       *prometheus.GaugeVec
	faults      *prometheus.CounterVec
}

// New creates an observer. Register it with MustRegister before use.
func New() *Observer {
	return &Observer{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Operations processed per container, by operation and status.",
			},
			[]string{"container", "operation", "status"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Committed transitions per container.",
			},
			[]string{"container", "kind"}, // "navigation" or "direct_update"
		),
		depth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "backstack_depth",
				Help:      "Number of instructions on each container's backstack.",
			},
			[]string{"container"},
		),
		faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "faults_total",
				Help:      "Errors escalated to the error handler, by type.",
			},
			[]string{"type"},
		),
	}
}

// MustRegister registers all metrics with registerer.
func (o *Observer) MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(o.operations, o.transitions, o.depth, o.faults)
}

// Instrument adds o to c and records c's current depth.
func (o *Observer) Instrument(c *navstack.Container) {
	c.AddObserver(o)
	o.depth.WithLabelValues(c.ID()).Set(float64(c.Backstack().Len()))
}

// Forget drops the series of a container that is gone for good.
func (o *Observer) Forget(containerID string) {
	labels := prometheus.Labels{"container": containerID}
	o.operations.DeletePartialMatch(labels)
	o.transitions.DeletePartialMatch(labels)
	o.depth.DeleteLabelValues(containerID)
}

func (o *Observer) ObserveTransition(c *navstack.Container, t navstack.Transition) {
	kind := TransitionNavigation
	if t.DirectUpdate {
		kind = TransitionDirectUpdate
	}
	o.transitions.WithLabelValues(c.ID(), kind).Inc()
	o.depth.WithLabelValues(c.ID()).Set(float64(t.Active.Len()))
}

func (o *Observer) ObserveResult(c *navstack.Container, op navstack.Operation, res navstack.Result) {
	o.operations.WithLabelValues(c.ID(), op.Name(), res.Status.String()).Inc()
}

// ErrorHandler wraps next so escalated errors are counted. next may be nil.
func (o *Observer) ErrorHandler(next navstack.ErrorHandler) navstack.ErrorHandler {
	return func(err error) {
		o.faults.WithLabelValues(faultType(err)).Inc()
		if next != nil {
			next(err)
		}
	}
}

func faultType(err error) string {
	switch {
	case navstack.IsInterceptorFault(err):
		return "interceptor_fault"
	case navstack.IsFlowInvariantViolation(err):
		return "flow_invariant"
	case navstack.IsQueueOverflow(err):
		return "queue_overflow"
	default:
		return "other"
	}
}
