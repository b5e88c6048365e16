package ink

import "math/rand"

const defaultFlowName = "DEFAULT_FLOW"

// State is the whole of a story session's mutable data (spec §3): every
// named Flow, the active flow's name, global variables, the shared
// evaluation stack, visit/turn counts keyed by container path, the
// current turn index, a pending diverted pointer, the random source, and
// the background-save patch (held inside Variables).
type State struct {
	flows      map[string]*Flow
	activeFlow string

	Variables *VariablesState

	evalStack []*Value

	visitCounts map[string]int
	turnIndices map[string]int
	currentTurnIndex int

	divertedPointer Pointer

	rng *rand.Rand

	didSafeExit bool
	hasEnded    bool

	// inExpressionLookahead is not set or read anywhere; lookahead is
	// derived from Story's capture buffers instead (see Story.inLookahead).
	inExpressionLookahead bool
}

func newState(rootPointer Pointer, seed int64) *State {
	s := &State{
		flows:            map[string]*Flow{},
		activeFlow:       defaultFlowName,
		Variables:        newVariablesState(),
		visitCounts:      map[string]int{},
		turnIndices:      map[string]int{},
		currentTurnIndex: -1,
		divertedPointer:  NullPointer,
		rng:              rand.New(rand.NewSource(seed)),
	}
	s.flows[defaultFlowName] = newFlow(defaultFlowName, rootPointer)
	return s
}

func (s *State) activeFlowObj() *Flow { return s.flows[s.activeFlow] }

func (s *State) callStack() *CallStack { return s.activeFlowObj().CallStack }

// CanContinue reports whether the interpreter has more content to emit:
// there's a live pointer and the story hasn't hit an "end" command.
func (s *State) CanContinue() bool {
	if s.hasEnded {
		return false
	}
	if len(s.activeFlowObj().Choices) > 0 {
		// Waiting on the host to pick a choice (spec §4.4).
		return false
	}
	cs := s.callStack()
	top := cs.Peek()
	return top != nil && !top.Pointer.IsNull()
}

// CurrentChoices exposes the active flow's currently generated choices.
func (s *State) CurrentChoices() []*Choice {
	if s.hasEnded {
		return nil
	}
	return s.activeFlowObj().Choices
}

// CurrentText returns the concatenated text emitted on the active flow
// since the last time it was cleared.
func (s *State) CurrentText() string { return s.activeFlowObj().CurrentText() }

// CurrentTags returns the tags buffered on the active flow.
func (s *State) CurrentTags() []string { return s.activeFlowObj().CurrentTags() }

// VisitCount returns the number of times the container at path has been
// visited.
func (s *State) VisitCount(path string) int { return s.visitCounts[path] }

func (s *State) incrementVisitCount(path string) {
	s.visitCounts[path]++
}

func (s *State) recordTurnIndex(path string) {
	s.turnIndices[path] = s.currentTurnIndex
}

// TurnsSince returns the number of turns since path was last visited, or
// -1 if never visited.
func (s *State) TurnsSince(path string) int {
	idx, ok := s.turnIndices[path]
	if !ok {
		return -1
	}
	return s.currentTurnIndex - idx
}

// switchFlowInternal resumes or creates the named flow (spec §4.3).
func (s *State) switchFlowInternal(name string, rootPointer Pointer) {
	if _, ok := s.flows[name]; !ok {
		s.flows[name] = newFlow(name, rootPointer)
	}
	s.activeFlow = name
}

// removeFlowInternal deletes a non-active, non-default flow.
func (s *State) removeFlowInternal(name string) error {
	if name == defaultFlowName {
		return newError(InvalidStoryState, "cannot remove the default flow")
	}
	if name == s.activeFlow {
		return newError(InvalidStoryState, "cannot remove the active flow %q", name)
	}
	if _, ok := s.flows[name]; !ok {
		return newError(BadArgument, "no such flow %q", name)
	}
	delete(s.flows, name)
	return nil
}

func (s *State) switchToDefaultFlowInternal() { s.activeFlow = defaultFlowName }

// forceEnd resets the active flow's call stack to the root, clearing
// choices and ending the current thread stack (used by ResetCallstack).
func (s *State) forceEnd(rootPointer Pointer) {
	f := s.activeFlowObj()
	f.CallStack = newCallStack(rootPointer)
	f.Choices = nil
	s.hasEnded = false
}

// pushEval/popEval/peekEval manipulate the shared evaluation stack
// (spec §3 invariant: empty except during expression evaluation or
// between steps).
func (s *State) pushEval(v *Value) { s.evalStack = append(s.evalStack, v) }

func (s *State) popEval() (*Value, error) {
	if len(s.evalStack) == 0 {
		return nil, newError(InvalidStoryState, "evaluation stack underflow")
	}
	v := s.evalStack[len(s.evalStack)-1]
	s.evalStack = s.evalStack[:len(s.evalStack)-1]
	return v, nil
}

func (s *State) peekEval() (*Value, bool) {
	if len(s.evalStack) == 0 {
		return nil, false
	}
	return s.evalStack[len(s.evalStack)-1], true
}

func (s *State) evalStackEmpty() bool { return len(s.evalStack) == 0 }

// clone deep-copies the whole mutable state for state_snapshot().
func (s *State) clone() *State {
	ns := &State{
		flows:            map[string]*Flow{},
		activeFlow:       s.activeFlow,
		Variables:        s.Variables.clone(),
		visitCounts:      map[string]int{},
		turnIndices:      map[string]int{},
		currentTurnIndex: s.currentTurnIndex,
		divertedPointer:  s.divertedPointer,
		rng:              s.rng, // rand.Rand carries no story-observable mutable state we expose beyond seeding
		hasEnded:         s.hasEnded,
	}
	for k, v := range s.flows {
		ns.flows[k] = v.clone()
	}
	for k, v := range s.visitCounts {
		ns.visitCounts[k] = v
	}
	for k, v := range s.turnIndices {
		ns.turnIndices[k] = v
	}
	ns.evalStack = make([]*Value, len(s.evalStack))
	for i, v := range s.evalStack {
		ns.evalStack[i] = v.Clone()
	}
	return ns
}
