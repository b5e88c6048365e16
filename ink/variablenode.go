package ink

// VariableReference reads a global, a temporary on the current frame, or
// (when PathForCount is set) the visit/read count of a container.
type VariableReference struct {
	rtBase

	Name         string
	PathForCount Path
}

func newVariableReference() *VariableReference { return &VariableReference{rtBase: newRTBase()} }

// VariableAssignment writes a value to a global or a temporary on the top
// frame.
type VariableAssignment struct {
	rtBase

	Name             string
	IsNewDeclaration bool
	IsGlobal         bool
}

func newVariableAssignment() *VariableAssignment { return &VariableAssignment{rtBase: newRTBase()} }
