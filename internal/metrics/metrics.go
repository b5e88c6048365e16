// Package metrics provides a Prometheus-backed implementation of
// ink.MetricsRecorder, kept outside the ink package so the interpreter
// itself never has to import client_golang.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder implements ink.MetricsRecorder against a set of Prometheus
// collectors registered on construction.
type Recorder struct {
	steps   *prometheus.CounterVec
	diverts *prometheus.CounterVec
	errors  *prometheus.CounterVec
	choices prometheus.Counter
}

// New builds a Recorder and registers its collectors on reg. Passing
// prometheus.NewRegistry() keeps it isolated from the global registry,
// useful in tests and multi-story hosts.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ink",
			Name:      "steps_total",
			Help:      "Number of runtime objects stepped over, labeled by kind.",
		}, []string{"kind"}),
		diverts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ink",
			Name:      "diverts_total",
			Help:      "Number of diverts taken, labeled by whether they call an external function.",
		}, []string{"external"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ink",
			Name:      "errors_total",
			Help:      "Number of runtime errors raised, labeled by error kind.",
		}, []string{"kind"}),
		choices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ink",
			Name:      "choices_made_total",
			Help:      "Number of choices successfully made with ChooseChoiceIndex.",
		}),
	}
	reg.MustRegister(r.steps, r.diverts, r.errors, r.choices)
	return r
}

func (r *Recorder) StepExecuted(kind string) { r.steps.WithLabelValues(kind).Inc() }

func (r *Recorder) DivertTaken(external bool) {
	label := "false"
	if external {
		label = "true"
	}
	r.diverts.WithLabelValues(label).Inc()
}

func (r *Recorder) ErrorRaised(kind string) { r.errors.WithLabelValues(kind).Inc() }

func (r *Recorder) ChoiceMade() { r.choices.Inc() }
