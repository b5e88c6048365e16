package ink

// MetricsRecorder receives counters as a story runs. The ink package
// never imports a concrete metrics backend itself — internal/metrics
// provides a Prometheus-backed implementation that hosts can wire in
// with SetMetricsRecorder, keeping the interpreter importable without
// dragging in the client_golang dependency for callers who don't want it.
type MetricsRecorder interface {
	StepExecuted(kind string)
	DivertTaken(external bool)
	ErrorRaised(kind string)
	ChoiceMade()
}

type noopMetrics struct{}

func (noopMetrics) StepExecuted(string) {}
func (noopMetrics) DivertTaken(bool)    {}
func (noopMetrics) ErrorRaised(string)  {}
func (noopMetrics) ChoiceMade()         {}

// SetMetricsRecorder installs rec to observe this story's step loop. A
// nil rec reverts to the default no-op implementation.
func (st *Story) SetMetricsRecorder(rec MetricsRecorder) {
	if rec == nil {
		rec = noopMetrics{}
	}
	st.metrics = rec
}
