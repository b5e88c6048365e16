package ink

// PushPopType classifies a call-stack frame. Grounded on
// original_source/lib/src/push_pop.rs: an out-of-range integer value
// decoded from JSON is a BadJSON error, never a panic.
type PushPopType int

const (
	Tunnel PushPopType = iota
	Function
	FunctionEvaluationFromGame
)

func pushPopTypeFromInt(v int) (PushPopType, error) {
	switch v {
	case 0:
		return Tunnel, nil
	case 1:
		return Function, nil
	case 2:
		return FunctionEvaluationFromGame, nil
	default:
		return 0, newError(BadJSON, "unexpected push/pop type value %d", v)
	}
}

func (t PushPopType) String() string {
	switch t {
	case Tunnel:
		return "tunnel"
	case Function:
		return "function"
	case FunctionEvaluationFromGame:
		return "function evaluation from game"
	default:
		return "unknown"
	}
}

// Frame is one call-stack element (spec §3): a cursor, the evaluation
// stack depth at the moment of the call (so a tunnel/function return
// knows how much to unwind), a local scope of temporaries, and the frame
// type.
type Frame struct {
	Pointer               Pointer
	EvalStackDepthAtEntry int
	OutputStreamLenAtEntry int
	Temporaries           map[string]*Value
	Type                  PushPopType
	InExpressionEvaluation bool

	// PushedDivertOverride holds an explicit "->->" override target set
	// by a pending TUNNEL_ONWARDS expression, consumed when this tunnel
	// frame is popped.
	PushedDivertOverride *Path
}

func newFrame(pointer Pointer, evalDepth, outputLen int, t PushPopType) *Frame {
	return &Frame{
		Pointer:                pointer,
		EvalStackDepthAtEntry:  evalDepth,
		OutputStreamLenAtEntry: outputLen,
		Temporaries:            map[string]*Value{},
		Type:                   t,
	}
}

// clone deep-copies a frame, used when forking a thread (spec §4.3,
// start_thread) and when snapshotting state.
func (f *Frame) clone() *Frame {
	c := *f
	c.Temporaries = make(map[string]*Value, len(f.Temporaries))
	for k, v := range f.Temporaries {
		c.Temporaries[k] = v.Clone()
	}
	if f.PushedDivertOverride != nil {
		p := *f.PushedDivertOverride
		c.PushedDivertOverride = &p
	}
	return &c
}
