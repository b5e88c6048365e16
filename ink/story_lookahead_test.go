package ink

import (
	"strings"
	"testing"
)

func newTestExternalDivert(targetName string) *Divert {
	d := newDivert()
	d.IsExternal = true
	d.TargetPath = ParsePath(targetName)
	return d
}

func TestExternalFunctionSkippedDuringDisallowedLookahead(t *testing.T) {
	st, err := New(`{"inkVersion": 20, "root": ["^x"]}`, Options{DisallowExternalDuringLookahead: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	called := false
	st.BindExternalFunction("myExternal", func(args []*Value) (*Value, error) {
		called = true
		return NewIntValue(42), nil
	})

	var warnings []string
	st.SetErrorHandler(func(message string, isWarning bool) {
		if isWarning {
			warnings = append(warnings, message)
		}
	})

	st.stringCapture = append(st.stringCapture, &strings.Builder{})
	if !st.inLookahead() {
		t.Fatal("expected inLookahead() to report true with a pending string capture")
	}

	frame := st.state.callStack().Peek()
	if err := st.stepExternalDivert(newTestExternalDivert("myExternal"), frame); err != nil {
		t.Fatalf("stepExternalDivert: %v", err)
	}

	if called {
		t.Error("external function should not run while a disallowed lookahead is in progress")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %d: %v", len(warnings), warnings)
	}

	v, err := st.state.popEval()
	if err != nil {
		t.Fatalf("popEval: %v", err)
	}
	if v.Kind != IntValue || v.IntVal != 0 {
		t.Errorf("expected a placeholder int 0 pushed in place of the skipped result, got %+v", v)
	}
}

func TestExternalFunctionRunsNormallyOutsideLookahead(t *testing.T) {
	st, err := New(`{"inkVersion": 20, "root": ["^x"]}`, Options{DisallowExternalDuringLookahead: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	called := false
	st.BindExternalFunction("myExternal", func(args []*Value) (*Value, error) {
		called = true
		return NewIntValue(42), nil
	})

	frame := st.state.callStack().Peek()
	if err := st.stepExternalDivert(newTestExternalDivert("myExternal"), frame); err != nil {
		t.Fatalf("stepExternalDivert: %v", err)
	}

	if !called {
		t.Error("external function should run when not in a lookahead")
	}
	v, err := st.state.popEval()
	if err != nil {
		t.Fatalf("popEval: %v", err)
	}
	if v.Kind != IntValue || v.IntVal != 42 {
		t.Errorf("expected the external's actual result, got %+v", v)
	}
}
