package ink

import (
	"os"
	"testing"
)

func loadTestStory(t *testing.T, name string) *Story {
	t.Helper()
	raw, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	st, err := New(string(raw), Options{})
	if err != nil {
		t.Fatalf("loading %s: %v", name, err)
	}
	return st
}

func TestTwoLineStoryContinuesLineByLine(t *testing.T) {
	st := loadTestStory(t, "two_line.json")

	first, err := st.Continue()
	if err != nil {
		t.Fatalf("first Continue: %v", err)
	}
	if first != "Line.\n" {
		t.Errorf("first Continue = %q, want %q", first, "Line.\n")
	}
	if !st.CanContinue() {
		t.Fatal("expected more content after first line")
	}

	second, err := st.Continue()
	if err != nil {
		t.Fatalf("second Continue: %v", err)
	}
	if second != "Other line." {
		t.Errorf("second Continue = %q, want %q", second, "Other line.")
	}
	if st.CanContinue() {
		t.Error("expected no more content after second line")
	}
	if !st.HasEnded() {
		t.Error("expected story to have ended")
	}
}

func TestGlueRetractsTheLineBreakBeforeIt(t *testing.T) {
	st := loadTestStory(t, "glue.json")

	text, err := st.ContinueMaximally()
	if err != nil {
		t.Fatalf("ContinueMaximally: %v", err)
	}
	want := "Some content with glue.\n"
	if text != want {
		t.Errorf("glued text = %q, want %q", text, want)
	}
}

func TestSimpleDivertJumpsToTargetContainer(t *testing.T) {
	st := loadTestStory(t, "simple_divert.json")

	text, err := st.ContinueMaximally()
	if err != nil {
		t.Fatalf("ContinueMaximally: %v", err)
	}
	want := "We arrived into London at 9.45pm exactly.\nWe hurried home to Savile Row as fast as we could.\n"
	if text != want {
		t.Errorf("diverted text = %q, want %q", text, want)
	}
	if !st.HasEnded() {
		t.Error("expected story to have ended")
	}
}

func TestTunnelOnwardsOverridesTheReturnTarget(t *testing.T) {
	st := loadTestStory(t, "tunnel_override.json")

	text, err := st.ContinueMaximally()
	if err != nil {
		t.Fatalf("ContinueMaximally: %v", err)
	}
	want := "This is A\nNow in B.\n"
	if text != want {
		t.Errorf("tunnel-onwards text = %q, want %q", text, want)
	}
	if !st.HasEnded() {
		t.Error("expected story to have ended after the tunnel override redirected past the tunnel's caller")
	}
}

func TestChoicePointTextComesFromTheEvalStack(t *testing.T) {
	st := loadTestStory(t, "conditional_choice.json")

	text, err := st.ContinueMaximally()
	if err != nil {
		t.Fatalf("ContinueMaximally: %v", err)
	}
	if text != "" {
		t.Errorf("expected no text before a choice is made, got %q", text)
	}

	choices := st.CurrentChoices()
	if len(choices) != 1 {
		t.Fatalf("expected 1 choice, got %d", len(choices))
	}
	if choices[0].Text != "one" {
		t.Errorf("choice text = %q, want %q", choices[0].Text, "one")
	}

	if err := st.ChooseChoiceIndex(0); err != nil {
		t.Fatalf("ChooseChoiceIndex: %v", err)
	}
	text, err = st.ContinueMaximally()
	if err != nil {
		t.Fatalf("ContinueMaximally after choice: %v", err)
	}
	if text != "one\n" {
		t.Errorf("post-choice text = %q, want %q", text, "one\n")
	}
	if !st.HasEnded() {
		t.Error("expected story to have ended")
	}
}

func TestVariableObserverReportsOldAndNewValue(t *testing.T) {
	st := loadTestStory(t, "variable_set_get.json")

	v, ok := st.GetVariablesState().Get("x", nil)
	if !ok {
		t.Fatal("expected global \"x\" to be declared")
	}
	if v.Kind != IntValue || v.IntVal != 10 {
		t.Fatalf("x = %+v, want int 10", v)
	}

	type observation struct {
		old, new int
	}
	var got []observation
	st.ObserveVariable("x", func(name string, oldValue, newValue *Value) {
		got = append(got, observation{old: oldValue.IntVal, new: newValue.IntVal})
	})

	if err := st.GetVariablesState().SetGlobal("x", NewIntValue(15)); err != nil {
		t.Fatalf("SetGlobal: %v", err)
	}
	st.GetVariablesState().FlushObservers()

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 observer notification, got %d", len(got))
	}
	if got[0].old != 10 || got[0].new != 15 {
		t.Errorf("notification = %+v, want old=10 new=15", got[0])
	}

	// The story itself still reads the choice/content path independently
	// of the direct SetGlobal above.
	if _, err := st.ContinueMaximally(); err != nil {
		t.Fatalf("ContinueMaximally: %v", err)
	}
	if err := st.ChooseChoiceIndex(0); err != nil {
		t.Fatalf("ChooseChoiceIndex: %v", err)
	}
	text, err := st.ContinueMaximally()
	if err != nil {
		t.Fatalf("ContinueMaximally after choice: %v", err)
	}
	if text != "OK" {
		t.Errorf("post-choice text = %q, want %q", text, "OK")
	}
	if !st.HasEnded() {
		t.Error("expected story to have ended")
	}
}

// TestStartThreadForksAndAdvancesPastItself guards against a regression
// where CmdStartThread forked the call stack but never advanced the
// fork's own pointer past the "thread" opcode: the forked (now current)
// frame kept re-executing the same control command and forking forever.
// This fixture's weave offers its first option from a forked thread, so
// a hang here means the fork's pointer was never moved.
func TestStartThreadForksAndAdvancesPastItself(t *testing.T) {
	st := loadTestStory(t, "weave_threads.json")

	text, err := st.Continue()
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if text != "" {
		t.Errorf("Continue text = %q, want empty (only a choice should be queued)", text)
	}

	choices := st.CurrentChoices()
	if len(choices) != 1 {
		t.Fatalf("expected exactly 1 queued choice, got %d", len(choices))
	}
	if choices[0].Text != "Option A" {
		t.Errorf("choice text = %q, want %q", choices[0].Text, "Option A")
	}
	if choices[0].ThreadAtGeneration == 0 {
		t.Error("expected the choice to be generated from the forked thread, not the original (id 0)")
	}
	if st.CanContinue() {
		t.Error("expected CanContinue() to be false while a choice is pending")
	}

	if err := st.ChooseChoiceIndex(0); err != nil {
		t.Fatalf("ChooseChoiceIndex: %v", err)
	}

	text, err = st.Continue()
	if err != nil {
		t.Fatalf("Continue after choosing: %v", err)
	}
	if text != "You picked A.\n" {
		t.Errorf("post-choice text = %q, want %q", text, "You picked A.\n")
	}
}

// TestOnceOnlyChoiceIsNotReofferedAfterBeingChosen guards against a
// regression where the OnceOnly choice flag (bit 0x10) was decoded with an
// inverted sense: the fixture's loop diverts straight back to the start of
// the content preceding its only choice point, so a second pass through it
// only fails to re-offer the choice if OnceOnly was parsed correctly.
func TestOnceOnlyChoiceIsNotReofferedAfterBeingChosen(t *testing.T) {
	st := loadTestStory(t, "once_only_choice.json")

	text, err := st.Continue()
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if text != "" {
		t.Errorf("Continue text = %q, want empty (only a choice should be queued)", text)
	}

	choices := st.CurrentChoices()
	if len(choices) != 1 {
		t.Fatalf("expected exactly 1 queued choice, got %d", len(choices))
	}
	if choices[0].Text != "Pick me" {
		t.Errorf("choice text = %q, want %q", choices[0].Text, "Pick me")
	}

	if err := st.ChooseChoiceIndex(0); err != nil {
		t.Fatalf("ChooseChoiceIndex: %v", err)
	}

	text, err = st.Continue()
	if err != nil {
		t.Fatalf("Continue after choosing: %v", err)
	}
	if text != "Chosen.\n" {
		t.Errorf("post-choice text = %q, want %q", text, "Chosen.\n")
	}
	if !st.CanContinue() {
		t.Fatal("expected the loop-back divert to leave more content to process")
	}

	text, err = st.Continue()
	if err != nil {
		t.Fatalf("Continue after loop-back: %v", err)
	}
	if text != "" {
		t.Errorf("Continue text after loop-back = %q, want empty", text)
	}
	if len(st.CurrentChoices()) != 0 {
		t.Errorf("expected the OnceOnly choice not to be re-offered, got %d choices", len(st.CurrentChoices()))
	}
	if !st.HasEnded() {
		t.Error("expected the story to have ended once the suppressed choice left no more content")
	}
}
