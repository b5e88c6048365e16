package ink

import "testing"

func TestEvalNativeArithmeticPromotesToFloatOnMixedOperands(t *testing.T) {
	result, rest, err := evalNative("+", []*Value{NewIntValue(1), NewFloatValue(2.5)})
	if err != nil {
		t.Fatalf("evalNative: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected both operands consumed, stack has %d left", len(rest))
	}
	if result.Kind != FloatValue {
		t.Fatalf("expected a float result, got %s", result.Kind)
	}
	if result.FloatVal != 3.5 {
		t.Errorf("1 + 2.5 = %v, want 3.5", result.FloatVal)
	}
}

func TestEvalNativeArithmeticStaysIntWhenBothOperandsAreInt(t *testing.T) {
	result, _, err := evalNative("*", []*Value{NewIntValue(3), NewIntValue(4)})
	if err != nil {
		t.Fatalf("evalNative: %v", err)
	}
	if result.Kind != IntValue || result.IntVal != 12 {
		t.Errorf("3 * 4 = %+v, want int 12", result)
	}
}

func TestEvalNativeDivisionByZeroErrors(t *testing.T) {
	if _, _, err := evalNative("/", []*Value{NewIntValue(1), NewIntValue(0)}); err == nil {
		t.Error("expected an error dividing by zero")
	}
}

func TestEvalNativeKeepsUnrelatedStackEntriesUntouched(t *testing.T) {
	stack := []*Value{NewIntValue(100), NewIntValue(5), NewIntValue(2)}
	result, rest, err := evalNative("-", stack)
	if err != nil {
		t.Fatalf("evalNative: %v", err)
	}
	if len(rest) != 1 || rest[0].IntVal != 100 {
		t.Fatalf("expected the untouched operand to remain on the stack, got %+v", rest)
	}
	if result.IntVal != 3 {
		t.Errorf("5 - 2 = %d, want 3", result.IntVal)
	}
}

func TestEvalNativeUnaryNegationAndNot(t *testing.T) {
	neg, _, err := evalNative("_", []*Value{NewIntValue(7)})
	if err != nil {
		t.Fatalf("evalNative _: %v", err)
	}
	if neg.IntVal != -7 {
		t.Errorf("-7 expected, got %d", neg.IntVal)
	}

	not, _, err := evalNative("!", []*Value{NewBoolValue(false)})
	if err != nil {
		t.Fatalf("evalNative !: %v", err)
	}
	if !not.BoolVal {
		t.Error("!false should be true")
	}
}

func TestEvalNativeStringConcatenation(t *testing.T) {
	result, _, err := evalNative("+", []*Value{NewStringValue("foo", false), NewStringValue("bar", false)})
	if err != nil {
		t.Fatalf("evalNative: %v", err)
	}
	if result.Kind != StringValueKind || result.StringVal != "foobar" {
		t.Errorf("\"foo\"+\"bar\" = %+v, want string \"foobar\"", result)
	}
}

func TestEvalNativeUnknownFunctionErrors(t *testing.T) {
	if _, _, err := evalNative("NOT_A_FUNCTION", []*Value{NewIntValue(1)}); err == nil {
		t.Error("expected an error for an unrecognized native function name")
	}
}

func TestEvalNativeInsufficientOperandsErrors(t *testing.T) {
	if _, _, err := evalNative("+", []*Value{NewIntValue(1)}); err == nil {
		t.Error("expected an error when the stack has fewer operands than the function's arity")
	}
}

func TestEvalNativeListOperations(t *testing.T) {
	a := NewInkList()
	a.Items[item("colors", "red")] = 1
	b := NewInkList()
	b.Items[item("colors", "blue")] = 2

	union, _, err := evalNative("+", []*Value{NewListValue(a), NewListValue(b)})
	if err != nil {
		t.Fatalf("evalNative list +: %v", err)
	}
	if len(union.List.Items) != 2 {
		t.Errorf("expected the unioned list to have 2 items, got %d", len(union.List.Items))
	}

	contains, _, err := evalNative("?", []*Value{NewListValue(a), NewListValue(a)})
	if err != nil {
		t.Fatalf("evalNative list ?: %v", err)
	}
	if !contains.BoolVal {
		t.Error("a list should contain itself")
	}
}
