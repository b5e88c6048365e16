package ink

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Options configures a Story at load time, mirroring the teacher
// interpreter's plain Options-struct construction style rather than
// functional options.
type Options struct {
	// RandomSeed seeds the story's pseudo-random source, used by RANDOM,
	// sequence shuffles and LIST_RANDOM. Zero uses a fixed default seed
	// so a story is reproducible unless the host deliberately varies it.
	RandomSeed int64

	// VersionMin/VersionMax bound the accepted compiled-format version.
	// Zero values fall back to minSupportedInkVersion/maxSupportedInkVersion.
	VersionMin int
	VersionMax int

	// Logger receives step-level tracing (Debug) and divert/error
	// conditions (Warn/Error). A discarding logger is used when nil.
	Logger *slog.Logger

	// DisallowExternalDuringLookahead, when true, skips actually invoking
	// a bound external function while the interpreter is generating text
	// it may discard (inside a string/tag capture, e.g. choice text or a
	// TAG expression) rather than committing it to output. A zero value
	// is pushed in place of the external's result and a warning is
	// logged, letting a host protect non-idempotent externals (original's
	// ExternalFunctions::call guard).
	DisallowExternalDuringLookahead bool
}

// Story is a loaded, runnable ink program: the immutable object tree
// produced by the serializer, plus the single mutable State that
// Continue/ChooseChoiceIndex/etc. advance (spec §3, §6).
type Story struct {
	arena    *arena
	rootIdx  int
	listDefs map[string]map[string]int

	state *State

	externals    map[string]ExternalFunction
	errorHandler ErrorHandler

	// pendingThreadID carries the thread id forked by a just-executed
	// start_thread command forward to the next ChoicePoint it generates.
	pendingThreadID int

	stringCapture []*strings.Builder
	tagCapture    []*strings.Builder

	metrics MetricsRecorder
	logger  *slog.Logger

	disallowExternalDuringLookahead bool
}

// inLookahead reports whether the interpreter is currently generating text
// into a capture buffer (choice text, a TAG expression, string expression
// evaluation) rather than committing it straight to the output stream.
func (st *Story) inLookahead() bool {
	return len(st.stringCapture) > 0 || len(st.tagCapture) > 0
}

// New parses compiled ink JSON and returns a Story positioned at the
// start of its root container. Malformed input is always a *StoryError
// with Kind BadJSON; New never panics (spec §4.1, §9).
func New(compiledJSON string, opt Options) (*Story, error) {
	versionMin, versionMax := opt.VersionMin, opt.VersionMax
	if versionMin == 0 {
		versionMin = minSupportedInkVersion
	}
	if versionMax == 0 {
		versionMax = maxSupportedInkVersion
	}

	doc, err := parseCompiledJSON(compiledJSON, versionMin, versionMax)
	if err != nil {
		return nil, err
	}

	seed := opt.RandomSeed
	if seed == 0 {
		seed = 1
	}

	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	st := &Story{
		arena:                           doc.a,
		rootIdx:                         doc.rootIdx,
		listDefs:                        doc.listDefs,
		externals:                       map[string]ExternalFunction{},
		metrics:                         noopMetrics{},
		logger:                          logger,
		disallowExternalDuringLookahead: opt.DisallowExternalDuringLookahead,
	}
	st.state = newState(startOf(st.rootIdx), seed)
	st.declareInitialGlobals()
	return st, nil
}

// declareInitialGlobals walks the root container's named children for
// top-level VAR declarations encoded by the serializer's trailing
// metadata object, seeding VariablesState so later reads/writes of
// declared globals succeed. Only the root container's own named entries
// are examined, and only those that are literal Values become globals;
// named entries of nested containers are not searched. That covers this
// repository's own encoding of "VAR x = ...".
func (st *Story) declareInitialGlobals() {
	root := st.arena.container(st.rootIdx)
	if root == nil {
		return
	}
	for name, idx := range root.named {
		if v, ok := st.arena.get(idx).(*Value); ok {
			st.state.Variables.declareGlobal(name, v.Clone())
		}
	}
}

func (st *Story) enterContainer(idx int) {
	c := st.arena.container(idx)
	if c == nil {
		return
	}
	path := st.arena.pathOf(idx).String()
	if c.VisitsShouldBeCounted {
		if !c.CountingAtStartOnly || st.state.VisitCount(path) == 0 {
			st.state.incrementVisitCount(path)
		}
	}
	if c.TurnIndexShouldBeCounted {
		st.state.recordTurnIndex(path)
	}
}

// CanContinue reports whether there's more content to pull.
func (st *Story) CanContinue() bool { return st.state.CanContinue() }

// HasEnded reports whether the story has reached a terminal "end".
func (st *Story) HasEnded() bool { return st.state.hasEnded }

// Continue advances the story by one step of content — typically one
// line or paragraph — and returns the text produced.
func (st *Story) Continue() (string, error) { return st.ContinueWithContext(context.Background()) }

// ContinueWithContext is Continue with cooperative cancellation: the step
// loop checks ctx between each microstep, mirroring the teacher
// interpreter's EvalWithContext without needing a second goroutine, since
// unlike evaluating arbitrary Go code a single ink microstep never blocks
// on its own (the only blocking point is a host-bound external function
// call, which runs synchronously inside step()).
func (st *Story) ContinueWithContext(ctx context.Context) (string, error) {
	if !st.state.CanContinue() {
		err := newError(InvalidStoryState, "cannot continue: the story has no more content at the current point")
		st.reportError(err, false)
		return "", err
	}

	flow := st.state.activeFlowObj()
	flow.ClearOutput()
	flow.Choices = nil
	st.state.currentTurnIndex++

	for st.state.CanContinue() {
		select {
		case <-ctx.Done():
			return flow.CurrentText(), wrapError(InvalidStoryState, ctx.Err(), "continue canceled")
		default:
		}
		if err := st.step(); err != nil {
			st.reportError(err, false)
			return flow.CurrentText(), err
		}
		if st.atStepBoundary(flow) {
			break
		}
	}

	st.state.Variables.FlushObservers()
	return flow.CurrentText(), nil
}

// ContinueMaximally keeps calling Continue until the story runs out of
// content or presents choices, returning everything produced.
func (st *Story) ContinueMaximally() (string, error) {
	var b strings.Builder
	for st.state.CanContinue() {
		text, err := st.Continue()
		b.WriteString(text)
		if err != nil {
			return b.String(), err
		}
	}
	return b.String(), nil
}

func (st *Story) atStepBoundary(flow *Flow) bool {
	if st.state.hasEnded {
		return true
	}
	if len(flow.Choices) > 0 {
		return true
	}
	if !st.state.CanContinue() {
		return true
	}
	if !(flow.EndsInNewline() && flow.ContainsContent()) {
		return false
	}
	// A glue object immediately ahead will retract the newline we just
	// committed (spec §4.4): don't stop the line yet, let it run.
	return !st.nextObjectIsGlue()
}

func (st *Story) nextObjectIsGlue() bool {
	frame := st.state.callStack().Peek()
	if frame == nil {
		return false
	}
	ptr := frame.Pointer
	c := st.arena.container(ptr.ContainerIdx)
	if c == nil || ptr.Index < 0 || ptr.Index >= len(c.Children) {
		return false
	}
	_, ok := st.arena.get(c.Children[ptr.Index]).(*Glue)
	return ok
}

// CurrentChoices returns the choices generated by the step(s) just run.
func (st *Story) CurrentChoices() []*Choice { return st.state.CurrentChoices() }

// CurrentText returns the text accumulated since output was last cleared.
func (st *Story) CurrentText() string { return st.state.CurrentText() }

// CurrentTags returns the tags buffered since output was last cleared.
func (st *Story) CurrentTags() []string { return st.state.CurrentTags() }

// ChooseChoiceIndex resumes the story at the target of the chosen
// Choice, discarding sibling branches forked by start_thread.
func (st *Story) ChooseChoiceIndex(index int) error {
	choices := st.state.CurrentChoices()
	if index < 0 || index >= len(choices) {
		err := newError(BadArgument, "choice index %d out of range (have %d choices)", index, len(choices))
		st.reportError(err, false)
		return err
	}
	choice := choices[index]
	cs := st.state.callStack()
	if err := cs.KeepOnlyThread(choice.ThreadAtGeneration); err != nil {
		st.reportError(err, false)
		return err
	}
	target, err := st.resolvePathOnly(choice.TargetPath)
	if err != nil {
		st.reportError(err, false)
		return err
	}
	cs.Peek().Pointer = target
	st.state.activeFlowObj().Choices = nil
	st.state.incrementVisitCount(choice.SourcePath.String())
	st.metrics.ChoiceMade()
	return nil
}

// ChoosePathString diverts directly to path, resetting the call stack —
// used for host-driven navigation outside the normal choice flow.
func (st *Story) ChoosePathString(path string) error {
	p := ParsePath(path)
	target, err := st.resolvePathOnly(p)
	if err != nil {
		st.reportError(err, false)
		return err
	}
	st.ResetCallstack()
	st.state.callStack().Peek().Pointer = target
	return nil
}

// ResetCallstack discards all call-stack state and returns the active
// flow's cursor to the root of the story.
func (st *Story) ResetCallstack() { st.state.forceEnd(startOf(st.rootIdx)) }

// SwitchFlow changes the active flow, creating it fresh if it doesn't
// already exist.
func (st *Story) SwitchFlow(name string) { st.state.switchFlowInternal(name, startOf(st.rootIdx)) }

// RemoveFlow deletes a non-default, non-active flow.
func (st *Story) RemoveFlow(name string) error { return st.state.removeFlowInternal(name) }

// SwitchToDefaultFlow returns to the implicit default flow.
func (st *Story) SwitchToDefaultFlow() { st.state.switchToDefaultFlowInternal() }

// EvaluateFunction calls the knot or stitch named name as a pure
// function: args are pushed for it to read as parameters, and any text
// it would normally print is captured and returned alongside its return
// value instead of being added to the story's current output.
func (st *Story) EvaluateFunction(name string, args ...*Value) (*Value, string, error) {
	target, err := st.resolvePathOnly(ParsePath(name))
	if err != nil {
		return nil, "", err
	}

	for _, a := range args {
		st.state.pushEval(a.Clone())
	}

	cs := st.state.callStack()
	evalDepthAtEntry := len(st.state.evalStack) - len(args)
	cs.Push(FunctionEvaluationFromGame, evalDepthAtEntry, 0, NullPointer)
	cs.Peek().Pointer = target

	flow := st.state.activeFlowObj()
	savedOutput := flow.Output
	flow.Output = nil

	for {
		frame := cs.Peek()
		if frame == nil || frame.Type != FunctionEvaluationFromGame || frame.Pointer.IsNull() || st.state.hasEnded {
			break
		}
		if err := st.step(); err != nil {
			flow.Output = savedOutput
			return nil, "", err
		}
	}

	text := flow.CurrentText()
	flow.Output = savedOutput

	var result *Value
	if len(st.state.evalStack) > evalDepthAtEntry {
		result, _ = st.state.popEval()
	}
	return result, text, nil
}

// VisitCountAtPathString reports how many times the container at path
// has been entered.
func (st *Story) VisitCountAtPathString(path string) int { return st.state.VisitCount(path) }

// ---- the microstep interpreter ----

func runtimeObjectKind(obj RTObject) string {
	switch obj.(type) {
	case *Container:
		return "container"
	case *Value:
		return "value"
	case *Glue:
		return "glue"
	case *Tag:
		return "tag"
	case *ControlCommand:
		return "control_command"
	case *Divert:
		return "divert"
	case *ChoicePoint:
		return "choice_point"
	case *VariableReference:
		return "variable_reference"
	case *VariableAssignment:
		return "variable_assignment"
	case *NativeFunctionCall:
		return "native_function"
	case *Void:
		return "void"
	case *Null:
		return "null"
	default:
		return "unknown"
	}
}

func (st *Story) step() error {
	cs := st.state.callStack()
	frame := cs.Peek()
	ptr := frame.Pointer

	if ptr.IsNull() {
		return st.popCallstackOrEnd()
	}

	c := st.arena.container(ptr.ContainerIdx)
	if c == nil || ptr.Index < 0 || ptr.Index >= len(c.Children) {
		return st.advanceOutOfContainer(ptr)
	}

	objIdx := c.Children[ptr.Index]
	obj := st.arena.get(objIdx)
	st.metrics.StepExecuted(runtimeObjectKind(obj))
	st.logger.Debug("step", "kind", runtimeObjectKind(obj), "container", ptr.ContainerIdx, "index", ptr.Index)

	switch v := obj.(type) {
	case *Container:
		st.enterContainer(objIdx)
		frame.Pointer = startOf(objIdx)
		return nil
	case *Value:
		st.emit(v.Clone(), frame)
		frame.Pointer.Index++
		return nil
	case *Glue:
		st.state.activeFlowObj().removeTrailingNewlineForGlue()
		frame.Pointer.Index++
		return nil
	case *Tag:
		st.state.activeFlowObj().appendOutput(v)
		frame.Pointer.Index++
		return nil
	case *ControlCommand:
		top := cs.Peek()
		if err := st.stepControlCommand(v); err != nil {
			return err
		}
		if cs.Peek() == top {
			frame.Pointer.Index++
		}
		return nil
	case *Divert:
		return st.stepDivert(v, frame)
	case *ChoicePoint:
		if err := st.stepChoicePoint(v, objIdx); err != nil {
			return err
		}
		frame.Pointer.Index++
		return nil
	case *VariableReference:
		if err := st.stepVariableReference(v); err != nil {
			return err
		}
		frame.Pointer.Index++
		return nil
	case *VariableAssignment:
		if err := st.stepVariableAssignment(v); err != nil {
			return err
		}
		frame.Pointer.Index++
		return nil
	case *NativeFunctionCall:
		if err := st.stepNativeFunctionCall(v); err != nil {
			return err
		}
		frame.Pointer.Index++
		return nil
	case *Void, *Null:
		frame.Pointer.Index++
		return nil
	default:
		return newError(InvalidStoryState, "unrecognized runtime object in content stream")
	}
}

func (st *Story) advanceOutOfContainer(ptr Pointer) error {
	obj := st.arena.get(ptr.ContainerIdx)
	if obj == nil {
		st.state.hasEnded = true
		return nil
	}
	parentIdx := obj.parentIndex()
	if parentIdx < 0 {
		return st.popCallstackOrEnd()
	}
	frame := st.state.callStack().Peek()
	frame.Pointer = Pointer{ContainerIdx: parentIdx, Index: obj.selfIndex() + 1}
	return nil
}

func (st *Story) popCallstackOrEnd() error {
	cs := st.state.callStack()
	if cs.CanPop(nil) {
		if _, err := cs.Pop(nil); err != nil {
			return err
		}
		return nil
	}
	st.state.hasEnded = true
	return nil
}

func (st *Story) emit(v *Value, frame *Frame) {
	if frame.InExpressionEvaluation {
		st.state.pushEval(v)
		return
	}
	st.writeOutput(v)
}

func (st *Story) writeOutput(v *Value) {
	if n := len(st.stringCapture); n > 0 {
		st.stringCapture[n-1].WriteString(v.String())
		return
	}
	if n := len(st.tagCapture); n > 0 {
		st.tagCapture[n-1].WriteString(v.String())
		return
	}
	st.state.activeFlowObj().appendOutput(v)
}

func (st *Story) stepDivert(d *Divert, frame *Frame) error {
	cs := st.state.callStack()

	if d.IsConditional {
		v, err := st.state.popEval()
		if err != nil {
			return err
		}
		truthy, err := v.IsTruthy()
		if err != nil {
			return err
		}
		if !truthy {
			frame.Pointer.Index++
			return nil
		}
	}

	st.metrics.DivertTaken(d.IsExternal)

	if d.IsExternal {
		return st.stepExternalDivert(d, frame)
	}

	if d.IsTunnelOnwards {
		frame.PushedDivertOverride = &d.TargetPath
		t := Tunnel
		popped, err := cs.Pop(&t)
		if err != nil {
			return err
		}
		target, err := st.resolvePathOnly(*popped.PushedDivertOverride)
		if err != nil {
			return err
		}
		cs.Peek().Pointer = target
		return nil
	}

	target, err := st.resolveDivertTarget(d)
	if err != nil {
		return err
	}

	frame.Pointer.Index++
	if d.PushesToStack {
		cs.Push(d.StackPushType, len(st.state.evalStack), 0, NullPointer)
	}
	cs.Peek().Pointer = target
	return nil
}

func (st *Story) resolveDivertTarget(d *Divert) (Pointer, error) {
	var path Path
	if d.VariableDivertName != "" {
		v, ok := st.state.Variables.Get(d.VariableDivertName, st.state.callStack())
		if !ok || v.Kind != DivertTargetValue {
			return NullPointer, newError(InvalidStoryState, "variable divert target %q did not hold a divert-target value", d.VariableDivertName)
		}
		path = v.DivertTarget
	} else {
		path = d.TargetPath
	}
	return st.resolvePathOnly(path)
}

func (st *Story) resolvePathOnly(path Path) (Pointer, error) {
	start := st.state.callStack().Peek().Pointer.ContainerIdx
	res := st.arena.resolvePath(start, path)
	idx, ok := res.CorrectObj()
	if !ok {
		return NullPointer, newError(InvalidStoryState, "path %q could not be resolved", path.String())
	}
	if c := st.arena.container(idx); c != nil {
		st.enterContainer(idx)
		return startOf(idx), nil
	}
	obj := st.arena.get(idx)
	return Pointer{ContainerIdx: obj.parentIndex(), Index: obj.selfIndex()}, nil
}

func (st *Story) stepExternalDivert(d *Divert, frame *Frame) error {
	name := d.VariableDivertName
	if name == "" {
		name = d.TargetPath.String()
	}
	fn, ok := st.externals[name]
	if !ok {
		if d.FallbackPath.Len() > 0 {
			frame.Pointer.Index++
			target, err := st.resolvePathOnly(d.FallbackPath)
			if err != nil {
				return err
			}
			st.state.callStack().Peek().Pointer = target
			return nil
		}
		err := newError(InvalidStoryState, "no external function bound for %q and no fallback path provided", name)
		st.reportError(err, true)
		return err
	}

	args := make([]*Value, d.ExternalArgs)
	for i := d.ExternalArgs - 1; i >= 0; i-- {
		v, err := st.state.popEval()
		if err != nil {
			return err
		}
		args[i] = v
	}

	if st.disallowExternalDuringLookahead && st.inLookahead() {
		st.reportError(newError(InvalidStoryState, "skipped external function %q: story is generating text it may discard", name), true)
		st.state.pushEval(NewIntValue(0))
		frame.Pointer.Index++
		return nil
	}

	result, err := fn(args)
	if err != nil {
		return wrapError(InvalidStoryState, err, "external function %q returned an error", name)
	}
	if result != nil {
		st.state.pushEval(result)
	} else {
		st.state.pushEval(NewIntValue(0))
	}
	frame.Pointer.Index++
	return nil
}

func (st *Story) stepChoicePoint(cp *ChoicePoint, objIdx int) error {
	if cp.HasCondition {
		v, err := st.state.popEval()
		if err != nil {
			return err
		}
		truthy, err := v.IsTruthy()
		if err != nil {
			return err
		}
		if !truthy {
			return nil
		}
	}

	text := ""
	if cp.HasStartContent || cp.HasChoiceOnlyContent {
		v, err := st.state.popEval()
		if err != nil {
			return err
		}
		text = v.String()
	}

	choicePath := st.arena.pathOf(objIdx)
	if cp.OnceOnly && st.state.VisitCount(choicePath.String()) > 0 {
		return nil
	}

	threadID := st.state.callStack().currentThread().id
	if st.pendingThreadID != 0 {
		threadID = st.pendingThreadID
		st.pendingThreadID = 0
	}

	flow := st.state.activeFlowObj()
	flow.Choices = append(flow.Choices, &Choice{
		Text:                    text,
		Index:                   len(flow.Choices),
		TargetPath:              cp.PathOnChoice,
		SourcePath:              choicePath,
		ThreadAtGeneration:      threadID,
		OriginalChoicePathIndex: objIdx,
	})
	return nil
}

func (st *Story) stepVariableReference(vr *VariableReference) error {
	if vr.PathForCount.Len() > 0 {
		start := st.state.callStack().Peek().Pointer.ContainerIdx
		res := st.arena.resolvePath(start, vr.PathForCount)
		idx, ok := res.CorrectObj()
		if !ok {
			return newError(InvalidStoryState, "read-count target %q could not be resolved", vr.PathForCount.String())
		}
		path := st.arena.pathOf(idx).String()
		st.state.pushEval(NewIntValue(st.state.VisitCount(path)))
		return nil
	}
	v, ok := st.state.Variables.Get(vr.Name, st.state.callStack())
	if !ok {
		// Reading an undeclared variable inside an expression defaults to
		// 0 rather than erroring; only writes to undeclared globals fail.
		v = NewIntValue(0)
	}
	st.state.pushEval(v.Clone())
	return nil
}

func (st *Story) stepVariableAssignment(va *VariableAssignment) error {
	v, err := st.state.popEval()
	if err != nil {
		return err
	}
	if va.IsGlobal {
		if va.IsNewDeclaration {
			st.state.Variables.declareGlobal(va.Name, v)
			return nil
		}
		return st.state.Variables.SetGlobal(va.Name, v)
	}
	st.state.Variables.SetTemporary(va.Name, v, st.state.callStack())
	return nil
}

func (st *Story) stepNativeFunctionCall(n *NativeFunctionCall) error {
	switch n.Name {
	case "LIST_INVERT":
		if len(st.state.evalStack) < 1 {
			return newError(InvalidStoryState, "LIST_INVERT needs one operand")
		}
		v, err := st.state.popEval()
		if err != nil {
			return err
		}
		st.state.pushEval(NewListValue(st.invertList(v.List)))
		return nil
	case "LIST_ALL":
		if len(st.state.evalStack) < 1 {
			return newError(InvalidStoryState, "LIST_ALL needs one operand")
		}
		v, err := st.state.popEval()
		if err != nil {
			return err
		}
		st.state.pushEval(NewListValue(st.allOfList(v.List)))
		return nil
	}

	result, rest, err := evalNative(n.Name, st.state.evalStack)
	if err != nil {
		return err
	}
	st.state.evalStack = rest
	st.state.pushEval(result)
	return nil
}

func (st *Story) invertList(l InkList) InkList {
	inverted := NewInkList()
	for _, origin := range l.Origins {
		def, ok := st.listDefs[origin]
		if !ok {
			continue
		}
		for itemName, val := range def {
			item := InkListItem{OriginName: origin, ItemName: itemName}
			if _, present := l.Items[item]; !present {
				inverted.Items[item] = val
			}
		}
	}
	inverted.Origins = append([]string(nil), l.Origins...)
	return inverted
}

func (st *Story) allOfList(l InkList) InkList {
	all := NewInkList()
	for _, origin := range l.Origins {
		def, ok := st.listDefs[origin]
		if !ok {
			continue
		}
		for itemName, val := range def {
			all.Items[InkListItem{OriginName: origin, ItemName: itemName}] = val
		}
	}
	all.Origins = append([]string(nil), l.Origins...)
	return all
}

func (st *Story) listFromInt(listName string, val int) *Value {
	l := NewInkList()
	if def, ok := st.listDefs[listName]; ok {
		for itemName, v := range def {
			if v == val {
				l.Items[InkListItem{OriginName: listName, ItemName: itemName}] = v
				break
			}
		}
	}
	l.Origins = []string{listName}
	return NewListValue(l)
}

func (st *Story) randomFromList(l InkList) InkList {
	r := NewInkList()
	if len(l.Items) == 0 {
		return r
	}
	keys := make([]InkListItem, 0, len(l.Items))
	for k := range l.Items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].FullName() < keys[j].FullName() })
	pick := keys[st.state.rng.Intn(len(keys))]
	r.Items[pick] = l.Items[pick]
	r.Origins = append([]string(nil), l.Origins...)
	return r
}

func (st *Story) divertTargetPath(v *Value) string {
	if v.Kind != DivertTargetValue {
		return v.String()
	}
	start := st.state.callStack().Peek().Pointer.ContainerIdx
	res := st.arena.resolvePath(start, v.DivertTarget)
	idx, ok := res.CorrectObj()
	if !ok {
		return v.DivertTarget.String()
	}
	return st.arena.pathOf(idx).String()
}
