package ink

import "log/slog"

// ExternalFunction is a host-provided implementation of an ink EXTERNAL
// function declaration. args are already evaluated and in declaration
// order. A nil result pushes the integer 0 onto the evaluation stack; no
// separate void value is pushed.
type ExternalFunction func(args []*Value) (*Value, error)

// ErrorHandler receives runtime warnings and errors as they occur, in
// addition to the error value Continue/ChooseChoiceIndex/etc. return
// (spec §7: "the handler is called and the error is also returned").
type ErrorHandler func(message string, isWarning bool)

// BindExternalFunction registers fn as the implementation of the EXTERNAL
// function named name. Binding the same name twice replaces the previous
// handler.
func (st *Story) BindExternalFunction(name string, fn ExternalFunction) {
	st.externals[name] = fn
}

// UnbindExternalFunction removes a previously bound external function.
func (st *Story) UnbindExternalFunction(name string) {
	delete(st.externals, name)
}

// SetErrorHandler installs the handler invoked on every runtime error or
// warning, alongside the error value normally returned to the caller.
func (st *Story) SetErrorHandler(h ErrorHandler) { st.errorHandler = h }

// ObserveVariable registers cb to run after any step that changes the
// named global variable.
func (st *Story) ObserveVariable(name string, cb VariableObserver) {
	st.state.Variables.Observe(name, cb)
}

// GetVariablesState exposes the story's global variable store, e.g. for
// a host wanting to read or set a global directly between turns.
func (st *Story) GetVariablesState() *VariablesState { return st.state.Variables }

func (st *Story) reportError(err error, isWarning bool) {
	if err == nil {
		return
	}
	kind := "error"
	if se, ok := err.(*StoryError); ok {
		kind = se.Kind.String()
	}
	st.metrics.ErrorRaised(kind)
	if isWarning {
		st.logger.Warn(err.Error(), slog.String("kind", kind))
	} else {
		st.logger.Error(err.Error(), slog.String("kind", kind))
	}
	if st.errorHandler != nil {
		st.errorHandler(err.Error(), isWarning)
	}
}
