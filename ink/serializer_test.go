package ink

import (
	"errors"
	"testing"
)

func storyErrorKind(t *testing.T, err error) ErrorKind {
	t.Helper()
	var se *StoryError
	if !errors.As(err, &se) {
		t.Fatalf("expected a *StoryError, got %T: %v", err, err)
	}
	return se.Kind
}

func TestNewRejectsMissingInkVersion(t *testing.T) {
	_, err := New(`{"root": ["^hello"]}`, Options{})
	if err == nil {
		t.Fatal("expected an error for a document missing \"inkVersion\"")
	}
	if k := storyErrorKind(t, err); k != BadJSON {
		t.Errorf("error kind = %v, want BadJSON", k)
	}
}

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := New(`{"inkVersion": 20}`, Options{})
	if err == nil {
		t.Fatal("expected an error for a document missing \"root\"")
	}
	if k := storyErrorKind(t, err); k != BadJSON {
		t.Errorf("error kind = %v, want BadJSON", k)
	}
}

func TestNewRejectsOutOfRangeVersion(t *testing.T) {
	_, err := New(`{"inkVersion": 999, "root": ["^hello"]}`, Options{})
	if err == nil {
		t.Fatal("expected an error for an out-of-range ink version")
	}
	if k := storyErrorKind(t, err); k != BadJSON {
		t.Errorf("error kind = %v, want BadJSON", k)
	}
}

func TestNewRejectsNonObjectDocument(t *testing.T) {
	if _, err := New(`["not", "an", "object"]`, Options{}); err == nil {
		t.Error("expected an error when the top-level document is not an object")
	}
}

func TestNewRejectsRootThatIsNotAContainer(t *testing.T) {
	_, err := New(`{"inkVersion": 20, "root": "^not an array"}`, Options{})
	if err == nil {
		t.Fatal("expected an error when \"root\" does not encode a container")
	}
	if k := storyErrorKind(t, err); k != BadJSON {
		t.Errorf("error kind = %v, want BadJSON", k)
	}
}

func TestNewRejectsUnrecognizedStringTag(t *testing.T) {
	_, err := New(`{"inkVersion": 20, "root": ["not a caret-prefixed string"]}`, Options{})
	if err == nil {
		t.Fatal("expected an error for a bare string that isn't a recognized tag")
	}
	if k := storyErrorKind(t, err); k != BadJSON {
		t.Errorf("error kind = %v, want BadJSON", k)
	}
}

func TestNewRejectsMalformedChoicePointFlag(t *testing.T) {
	_, err := New(`{"inkVersion": 20, "root": [{"*": "0", "flg": "not-a-number"}]}`, Options{})
	if err == nil {
		t.Fatal("expected an error when a choice point's \"flg\" isn't an integer")
	}
	if k := storyErrorKind(t, err); k != BadJSON {
		t.Errorf("error kind = %v, want BadJSON", k)
	}
}

func TestNewRejectsUnknownDivertPushType(t *testing.T) {
	_, err := New(`{"inkVersion": 20, "root": [{"->": "0", "push": "not-a-push-type"}]}`, Options{})
	if err == nil {
		t.Fatal("expected an error for an unrecognized divert push type")
	}
	if k := storyErrorKind(t, err); k != BadJSON {
		t.Errorf("error kind = %v, want BadJSON", k)
	}
}

func TestNewAcceptsMinimalValidStory(t *testing.T) {
	st, err := New(`{"inkVersion": 20, "root": ["^hello\n"]}`, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text, err := st.Continue()
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if text != "hello\n" {
		t.Errorf("text = %q, want %q", text, "hello\n")
	}
}
