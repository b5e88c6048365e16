package ink

// VariableObserver is notified once per step, after commit, with the
// variable's value immediately before and immediately after the step's
// writes (spec §4.5).
type VariableObserver func(name string, oldValue, newValue *Value)

// varChange is a pending observer notification: the value a variable
// held before this step's writes began, and its value after the most
// recent write.
type varChange struct {
	old, new *Value
}

// VariablesState owns global variables and dispatches observer
// notifications. Reads consult temporaries on the current frame first
// (via the caller-supplied CallStack), then globals, then the background
// save patch; writes to an undeclared global fail with BadArgument (spec
// §4.5).
type VariablesState struct {
	globals    map[string]*Value
	defaultGlobals map[string]*Value // never populated: nothing assigns or reads it
	observers  map[string][]VariableObserver

	patch       *statePatch
	asyncSaving bool

	pendingNotifications map[string]*varChange
}

func newVariablesState() *VariablesState {
	return &VariablesState{
		globals:               map[string]*Value{},
		observers:             map[string][]VariableObserver{},
		pendingNotifications:  map[string]*varChange{},
	}
}

// Get resolves name against temporaries on cs first, then globals (or the
// patch overlay while async saving is active).
func (vs *VariablesState) Get(name string, cs *CallStack) (*Value, bool) {
	if cs != nil {
		if v, ok := cs.LookupTemporary(name); ok {
			return v, true
		}
	}
	if vs.asyncSaving && vs.patch != nil {
		if v, ok := vs.patch.globals[name]; ok {
			return v, true
		}
	}
	v, ok := vs.globals[name]
	return v, ok
}

// SetGlobal writes a declared global, recording the change for observer
// notification. Writing an undeclared name is a BadArgument error.
func (vs *VariablesState) SetGlobal(name string, v *Value) error {
	old, declared := vs.Get(name, nil)
	if !declared {
		return newError(BadArgument, "variable %q is not declared", name)
	}
	if vs.asyncSaving {
		vs.patch.globals[name] = v
		vs.patch.changedVars[name] = true
	} else {
		vs.globals[name] = v
	}
	if len(vs.observers[name]) > 0 {
		if pending, ok := vs.pendingNotifications[name]; ok {
			pending.new = v
		} else {
			vs.pendingNotifications[name] = &varChange{old: old, new: v}
		}
	}
	return nil
}

// declareGlobal is used only while loading the initial global pool from
// the compiled program, where any name is valid.
func (vs *VariablesState) declareGlobal(name string, v *Value) {
	vs.globals[name] = v
}

// SetTemporary writes a temporary on the innermost frame of cs, declaring
// it if new.
func (vs *VariablesState) SetTemporary(name string, v *Value, cs *CallStack) {
	cs.SetTemporary(name, v)
}

// Observe registers cb to be called after any step in which name changes.
func (vs *VariablesState) Observe(name string, cb VariableObserver) {
	vs.observers[name] = append(vs.observers[name], cb)
}

// FlushObservers calls every observer for variables that changed during
// the step just completed, then clears the pending set — decoupling
// in-flight mutation from observer side effects per spec §9.
func (vs *VariablesState) FlushObservers() {
	if len(vs.pendingNotifications) == 0 {
		return
	}
	pending := vs.pendingNotifications
	vs.pendingNotifications = map[string]*varChange{}
	for name, change := range pending {
		for _, cb := range vs.observers[name] {
			cb(name, change.old, change.new)
		}
	}
}

// StartAsyncSave flips into patch-backed writes.
func (vs *VariablesState) StartAsyncSave() {
	vs.asyncSaving = true
	vs.patch = newStatePatch()
}

// CompleteAsyncSave merges the patch's globals into the base globals and
// clears it; only globals are staged in the patch.
func (vs *VariablesState) CompleteAsyncSave() {
	if vs.patch != nil {
		for k, v := range vs.patch.globals {
			vs.globals[k] = v
		}
	}
	vs.asyncSaving = false
	vs.patch = nil
}

// AbortAsyncSave discards the patch without merging it.
func (vs *VariablesState) AbortAsyncSave() {
	vs.asyncSaving = false
	vs.patch = nil
}

func (vs *VariablesState) clone() *VariablesState {
	nvs := newVariablesState()
	for k, v := range vs.globals {
		nvs.globals[k] = v.Clone()
	}
	nvs.observers = vs.observers // observer callbacks are shared, not cloned
	if vs.patch != nil {
		nvs.patch = vs.patch.clone()
		nvs.asyncSaving = vs.asyncSaving
	}
	return nvs
}
