package ink

// statePatch is the staging overlay used during background saving (spec
// §4.7, GLOSSARY "Patch"). While VariablesState's async flag is set,
// writes to globals land here instead of the base map; commit merges them
// back in, abort discards them. Visit counts and turn indices are not
// staged: they are always written straight to State, and the visitCounts
// and turnIndices maps below stay empty.
type statePatch struct {
	globals     map[string]*Value
	changedVars map[string]bool // tracks which globals changed, for observer notification
	visitCounts map[string]int
	turnIndices map[string]int
}

func newStatePatch() *statePatch {
	return &statePatch{
		globals:     map[string]*Value{},
		changedVars: map[string]bool{},
		visitCounts: map[string]int{},
		turnIndices: map[string]int{},
	}
}

func (p *statePatch) clone() *statePatch {
	np := newStatePatch()
	for k, v := range p.globals {
		np.globals[k] = v.Clone()
	}
	for k, v := range p.changedVars {
		np.changedVars[k] = v
	}
	for k, v := range p.visitCounts {
		np.visitCounts[k] = v
	}
	for k, v := range p.turnIndices {
		np.turnIndices[k] = v
	}
	return np
}
