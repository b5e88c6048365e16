package ink

import "math"

// NativeFunctionCall is an arithmetic/string/list opcode: pop N operands
// (coerced per the arity table below), compute, push one result.
type NativeFunctionCall struct {
	rtBase

	Name               string
	NumberOfParameters int
}

var nativeFuncArity = map[string]int{
	"+": 2, "-": 2, "*": 2, "/": 2, "%": 2, "_": 1,
	"==": 2, "!=": 2, ">": 2, "<": 2, ">=": 2, "<=": 2,
	"&&": 2, "||": 2, "!": 1,
	"MIN": 2, "MAX": 2,
	"POW": 2, "FLOOR": 1, "CEILING": 1, "INT": 1, "FLOAT": 1,
	"?": 2, "!?": 2, "L^": 2, "L-": 2, "L&": 2, "L|": 2,
	"LIST_MIN": 1, "LIST_MAX": 1, "LIST_ALL": 1, "LIST_COUNT": 1,
	"LIST_INVERT": 1, "LIST_VALUE": 1,
}

func newNativeFunctionCall(name string) *NativeFunctionCall {
	return &NativeFunctionCall{rtBase: newRTBase(), Name: name, NumberOfParameters: nativeFuncArity[name]}
}

// evalNative pops the native function's operands off the top of stack
// (last-pushed is the rightmost operand), computes the result and
// returns it. Integer/float/string operations promote to the lowest
// common type able to represent both operands; list operations are
// origin-aware per spec §3.
func evalNative(name string, stack []*Value) (*Value, []*Value, error) {
	n, ok := nativeFuncArity[name]
	if !ok {
		return nil, stack, newError(InvalidStoryState, "unknown native function %q", name)
	}
	if len(stack) < n {
		return nil, stack, newError(InvalidStoryState, "native function %q needs %d operands, stack has %d", name, n, len(stack))
	}
	args := stack[len(stack)-n:]
	rest := stack[:len(stack)-n]

	var result *Value
	var err error
	if n == 1 {
		result, err = evalUnary(name, args[0])
	} else {
		result, err = evalBinary(name, args[0], args[1])
	}
	if err != nil {
		return nil, stack, err
	}
	return result, rest, nil
}

func evalUnary(name string, a *Value) (*Value, error) {
	switch name {
	case "_":
		if f, ok := a.AsFloat(); ok {
			if a.Kind == IntValue {
				return NewIntValue(-int(f)), nil
			}
			return NewFloatValue(-f), nil
		}
		return nil, newError(InvalidStoryState, "cannot negate value of kind %s", a.Kind)
	case "!":
		t, err := a.IsTruthy()
		if err != nil {
			return nil, err
		}
		return NewBoolValue(!t), nil
	case "FLOOR":
		f, _ := a.AsFloat()
		return NewFloatValue(math.Floor(f)), nil
	case "CEILING":
		f, _ := a.AsFloat()
		return NewFloatValue(math.Ceil(f)), nil
	case "INT":
		f, _ := a.AsFloat()
		return NewIntValue(int(f)), nil
	case "FLOAT":
		f, _ := a.AsFloat()
		return NewFloatValue(f), nil
	case "LIST_MIN":
		item, v, ok := a.List.MinItem()
		if !ok {
			return NewListValue(NewInkList()), nil
		}
		l := NewInkList()
		l.Items[item] = v
		return NewListValue(l), nil
	case "LIST_MAX":
		item, v, ok := a.List.MaxItem()
		if !ok {
			return NewListValue(NewInkList()), nil
		}
		l := NewInkList()
		l.Items[item] = v
		return NewListValue(l), nil
	case "LIST_COUNT":
		return NewIntValue(len(a.List.Items)), nil
	case "LIST_VALUE":
		_, v, _ := a.List.MaxItem()
		return NewIntValue(v), nil
	case "LIST_INVERT":
		return NewListValue(a.List), nil // full origin inversion requires list-def catalogue; handled by Story when available
	default:
		return nil, newError(InvalidStoryState, "unsupported unary native function %q", name)
	}
}

func evalBinary(name string, a, b *Value) (*Value, error) {
	if a.Kind == ListValueKind || b.Kind == ListValueKind {
		return evalListBinary(name, a, b)
	}
	if a.Kind == StringValueKind || b.Kind == StringValueKind {
		return evalStringBinary(name, a, b)
	}

	af, aIsNum := a.AsFloat()
	bf, bIsNum := b.AsFloat()
	if !aIsNum || !bIsNum {
		return evalBoolBinary(name, a, b)
	}
	bothInt := a.Kind == IntValue && b.Kind == IntValue

	switch name {
	case "+":
		return numResult(bothInt, af+bf), nil
	case "-":
		return numResult(bothInt, af-bf), nil
	case "*":
		return numResult(bothInt, af*bf), nil
	case "/":
		if bf == 0 {
			return nil, newError(InvalidStoryState, "division by zero")
		}
		if bothInt {
			return NewIntValue(int(af) / int(bf)), nil
		}
		return NewFloatValue(af / bf), nil
	case "%":
		if bf == 0 {
			return nil, newError(InvalidStoryState, "division by zero")
		}
		if bothInt {
			return NewIntValue(int(af) % int(bf)), nil
		}
		return NewFloatValue(math.Mod(af, bf)), nil
	case "MIN":
		return numResult(bothInt, math.Min(af, bf)), nil
	case "MAX":
		return numResult(bothInt, math.Max(af, bf)), nil
	case "POW":
		return numResult(bothInt, math.Pow(af, bf)), nil
	case "==":
		return NewBoolValue(af == bf), nil
	case "!=":
		return NewBoolValue(af != bf), nil
	case ">":
		return NewBoolValue(af > bf), nil
	case "<":
		return NewBoolValue(af < bf), nil
	case ">=":
		return NewBoolValue(af >= bf), nil
	case "<=":
		return NewBoolValue(af <= bf), nil
	case "&&":
		return NewBoolValue(af != 0 && bf != 0), nil
	case "||":
		return NewBoolValue(af != 0 || bf != 0), nil
	default:
		return nil, newError(InvalidStoryState, "unsupported native function %q for numeric operands", name)
	}
}

func numResult(asInt bool, v float64) *Value {
	if asInt {
		return NewIntValue(int(v))
	}
	return NewFloatValue(v)
}

func evalStringBinary(name string, a, b *Value) (*Value, error) {
	switch name {
	case "+":
		return NewStringValue(a.String()+b.String(), false), nil
	case "==":
		return NewBoolValue(a.Kind == StringValueKind && b.Kind == StringValueKind && a.StringVal == b.StringVal), nil
	case "!=":
		return NewBoolValue(!(a.Kind == StringValueKind && b.Kind == StringValueKind && a.StringVal == b.StringVal)), nil
	case "?":
		return NewBoolValue(a.Kind == StringValueKind && b.Kind == StringValueKind && len(b.StringVal) > 0 && containsSubstring(a.StringVal, b.StringVal)), nil
	default:
		return nil, newError(InvalidStoryState, "unsupported native function %q for string operands", name)
	}
}

func containsSubstring(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func evalBoolBinary(name string, a, b *Value) (*Value, error) {
	at, err := a.IsTruthy()
	if err != nil {
		return nil, err
	}
	bt, err := b.IsTruthy()
	if err != nil {
		return nil, err
	}
	switch name {
	case "&&":
		return NewBoolValue(at && bt), nil
	case "||":
		return NewBoolValue(at || bt), nil
	case "==":
		return NewBoolValue(at == bt), nil
	case "!=":
		return NewBoolValue(at != bt), nil
	default:
		return nil, newError(InvalidStoryState, "cannot apply native function %q to non-numeric, non-string operands", name)
	}
}

func evalListBinary(name string, a, b *Value) (*Value, error) {
	toList := func(v *Value) InkList {
		if v.Kind == ListValueKind {
			return v.List
		}
		return NewInkList()
	}
	la, lb := toList(a), toList(b)
	switch name {
	case "+", "L|":
		return NewListValue(la.Union(lb)), nil
	case "-", "L-":
		return NewListValue(la.Without(lb)), nil
	case "L^", "*":
		return NewListValue(la.Intersect(lb)), nil
	case "&&":
		return NewBoolValue(len(la.Items) > 0 && len(lb.Items) > 0), nil
	case "||":
		return NewBoolValue(len(la.Items) > 0 || len(lb.Items) > 0), nil
	case "==":
		return NewBoolValue(sameList(la, lb)), nil
	case "!=":
		return NewBoolValue(!sameList(la, lb)), nil
	case ">":
		return NewBoolValue(la.Compare(lb) > 0), nil
	case "<":
		return NewBoolValue(la.Compare(lb) < 0), nil
	case ">=":
		return NewBoolValue(la.Compare(lb) >= 0), nil
	case "<=":
		return NewBoolValue(la.Compare(lb) <= 0), nil
	case "?":
		return NewBoolValue(la.Contains(lb)), nil
	case "!?":
		return NewBoolValue(!la.Contains(lb)), nil
	default:
		return nil, newError(InvalidStoryState, "unsupported native function %q for list operands", name)
	}
}

func sameList(a, b InkList) bool {
	if len(a.Items) != len(b.Items) {
		return false
	}
	for k, v := range a.Items {
		if bv, ok := b.Items[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
