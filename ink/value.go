package ink

import (
	"fmt"
	"strconv"
)

// ValueKind discriminates the tagged union of scalar ink values described
// in spec §3. A single Value struct carries every variant's payload,
// mirroring the "tagged variant, no virtual calls" design called for in
// spec §9: callers switch on Kind rather than type-asserting interfaces.
type ValueKind int

const (
	IntValue ValueKind = iota
	FloatValue
	BoolValue
	StringValueKind
	DivertTargetValue
	VariablePointerValue
	ListValueKind
)

func (k ValueKind) String() string {
	switch k {
	case IntValue:
		return "int"
	case FloatValue:
		return "float"
	case BoolValue:
		return "bool"
	case StringValueKind:
		return "string"
	case DivertTargetValue:
		return "divert target"
	case VariablePointerValue:
		return "variable pointer"
	case ListValueKind:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a runtime scalar: a literal node in the program tree and also
// the sole element type of the evaluation stack (spec §9, "evaluation
// stack heterogeneity").
type Value struct {
	rtBase
	Kind ValueKind

	IntVal   int
	FloatVal float64
	BoolVal  bool

	StringVal string
	IsNewline bool // only meaningful when Kind == StringValueKind

	DivertTarget Path

	VarPointerName         string
	VarPointerContextIndex int // -1 when unresolved

	List InkList
}

func NewIntValue(v int) *Value     { return &Value{rtBase: newRTBase(), Kind: IntValue, IntVal: v} }
func NewFloatValue(v float64) *Value {
	return &Value{rtBase: newRTBase(), Kind: FloatValue, FloatVal: v}
}
func NewBoolValue(v bool) *Value { return &Value{rtBase: newRTBase(), Kind: BoolValue, BoolVal: v} }

func NewStringValue(s string, isNewline bool) *Value {
	return &Value{rtBase: newRTBase(), Kind: StringValueKind, StringVal: s, IsNewline: isNewline}
}

func NewDivertTargetValue(p Path) *Value {
	return &Value{rtBase: newRTBase(), Kind: DivertTargetValue, DivertTarget: p}
}

func NewVariablePointerValue(name string, contextIndex int) *Value {
	return &Value{rtBase: newRTBase(), Kind: VariablePointerValue, VarPointerName: name, VarPointerContextIndex: contextIndex}
}

func NewListValue(l InkList) *Value {
	return &Value{rtBase: newRTBase(), Kind: ListValueKind, List: l}
}

// IsTruthy implements ink's condition-evaluation coercion: non-zero
// numbers, non-empty strings and non-empty lists are truthy.
func (v *Value) IsTruthy() (bool, error) {
	switch v.Kind {
	case BoolValue:
		return v.BoolVal, nil
	case IntValue:
		return v.IntVal != 0, nil
	case FloatValue:
		return v.FloatVal != 0, nil
	case StringValueKind:
		return len(v.StringVal) > 0, nil
	case ListValueKind:
		return len(v.List.Items) > 0, nil
	default:
		return false, newError(InvalidStoryState, "value of kind %s has no truthiness", v.Kind)
	}
}

// AsFloat coerces numeric kinds to float64 for mixed-type arithmetic.
func (v *Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case IntValue:
		return float64(v.IntVal), true
	case FloatValue:
		return v.FloatVal, true
	default:
		return 0, false
	}
}

// String renders a value for output-stream concatenation and debugging.
func (v *Value) String() string {
	switch v.Kind {
	case IntValue:
		return strconv.Itoa(v.IntVal)
	case FloatValue:
		return strconv.FormatFloat(v.FloatVal, 'g', -1, 64)
	case BoolValue:
		if v.BoolVal {
			return "true"
		}
		return "false"
	case StringValueKind:
		return v.StringVal
	case DivertTargetValue:
		return "-> " + v.DivertTarget.String()
	case VariablePointerValue:
		return v.VarPointerName
	case ListValueKind:
		return v.List.String()
	default:
		return fmt.Sprintf("<value kind %d>", v.Kind)
	}
}

// Clone deep-copies a value, used when pushing literal nodes from the
// program tree onto the (mutable, per-State) evaluation stack.
func (v *Value) Clone() *Value {
	c := *v
	c.rtBase = newRTBase()
	if v.Kind == ListValueKind {
		c.List = v.List.Clone()
	}
	return &c
}
