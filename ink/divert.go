package ink

// Divert is a jump to another path, optionally pushing a call-stack
// frame (tunnel or function call) and optionally gated by a boolean
// condition consumed from the evaluation stack.
type Divert struct {
	rtBase

	TargetPath Path
	// VariableDivertName is set instead of TargetPath when the target is
	// held in a variable ("-> {x}").
	VariableDivertName string

	PushesToStack bool
	StackPushType PushPopType

	IsConditional bool
	IsExternal    bool
	ExternalArgs  int

	// IsTunnelOnwards marks a "->-> target" override: instead of
	// returning to the caller when the enclosing tunnel pops, execution
	// continues at this target (spec §4.4, tunnel override).
	IsTunnelOnwards bool

	// FallbackPath is used when IsExternal is true and no handler for
	// the external function name is registered.
	FallbackPath Path
}

func newDivert() *Divert { return &Divert{rtBase: newRTBase()} }

// TargetPathString is VariableDivertName when set, otherwise the whole
// target path in dotted form (for an external divert, that path holds the
// external function's name) — used purely for diagnostics.
func (d *Divert) TargetPathString() string {
	if d.VariableDivertName != "" {
		return d.VariableDivertName
	}
	return d.TargetPath.String()
}
