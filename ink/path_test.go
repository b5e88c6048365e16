package ink

import "testing"

func TestParsePathRoundTripsThroughString(t *testing.T) {
	cases := []string{
		"knot.stitch.3",
		".knot",
		"4",
		"^",
		"a.b.^.c",
	}
	for _, s := range cases {
		p := ParsePath(s)
		if got := p.String(); got != s {
			t.Errorf("ParsePath(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParsePathDetectsRelative(t *testing.T) {
	if ParsePath("knot.stitch").IsRelative() {
		t.Error("a path with no leading dot should be absolute")
	}
	if !ParsePath(".knot").IsRelative() {
		t.Error("a path with a leading dot should be relative")
	}
}

func TestPathEqualsIsComponentwise(t *testing.T) {
	a := ParsePath("knot.stitch.3")
	b := ParsePath("knot.stitch.3")
	c := ParsePath("knot.stitch.4")

	if !a.Equals(b) {
		t.Error("identical paths should compare equal")
	}
	if a.Equals(c) {
		t.Error("paths differing by one component should not compare equal")
	}
	if a.Equals(ParsePath(".knot.stitch.3")) {
		t.Error("absolute and relative paths with the same components should not compare equal")
	}
}

func TestPathHeadAndTail(t *testing.T) {
	p := ParsePath("knot.stitch.3")
	head, rest := p.Head()
	if head.String() != "knot" {
		t.Errorf("head = %q, want %q", head.String(), "knot")
	}
	if rest.String() != "stitch.3" {
		t.Errorf("Head's remainder = %q, want %q", rest.String(), "stitch.3")
	}

	tail := p.Tail()
	if !tail.IsRelative() {
		t.Error("Tail should always produce a relative path")
	}
	if tail.String() != ".stitch.3" {
		t.Errorf("tail = %q, want %q", tail.String(), ".stitch.3")
	}
}

func TestPathWithAppendedComponent(t *testing.T) {
	p := ParsePath("knot")
	appended := p.WithAppendedComponent(indexComponent(2))
	if appended.String() != "knot.2" {
		t.Errorf("appended path = %q, want %q", appended.String(), "knot.2")
	}
	if p.String() != "knot" {
		t.Error("WithAppendedComponent should not mutate the receiver")
	}
}

func TestComponentFromStringParsesIndexVsName(t *testing.T) {
	if c := componentFromString("42"); !c.isIndex || c.index != 42 {
		t.Errorf("expected an index component for \"42\", got %+v", c)
	}
	if c := componentFromString("knot"); c.isIndex || c.name != "knot" {
		t.Errorf("expected a named component for \"knot\", got %+v", c)
	}
	if c := componentFromString("^"); !c.isParent {
		t.Errorf("expected a parent component for \"^\", got %+v", c)
	}
}
