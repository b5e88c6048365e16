package ink

import "strings"

// OutputItem is any RTObject kind that can live on a Flow's output
// stream: text/other Values, Glue markers, and Tags (spec §3).
type OutputItem interface{ isOutputItem() }

func (*Value) isOutputItem() {}
func (*Glue) isOutputItem()  {}
func (*Tag) isOutputItem()   {}

// Flow is a named, independent execution context: its own call stack,
// output stream, current choice list, and current-tags buffer (spec §3).
type Flow struct {
	Name      string
	CallStack *CallStack
	Output    []OutputItem
	Choices   []*Choice
}

func newFlow(name string, rootPointer Pointer) *Flow {
	return &Flow{Name: name, CallStack: newCallStack(rootPointer)}
}

func (f *Flow) clone() *Flow {
	nf := &Flow{Name: f.Name, CallStack: f.CallStack.clone()}
	nf.Output = append([]OutputItem(nil), f.Output...)
	nf.Choices = append([]*Choice(nil), f.Choices...)
	return nf
}

// appendOutput appends one item, dropping a bare "\n" string when the
// stream already ends in one. Retracting a newline for glue is not done
// here: step() calls removeTrailingNewlineForGlue when it reaches a Glue.
func (f *Flow) appendOutput(item OutputItem) {
	if v, ok := item.(*Value); ok && v.Kind == StringValueKind {
		if f.pendingNewlineIsRetractable() && isWhitespaceOnlyNewline(v.StringVal) {
			// Consecutive bare newlines collapse to one, matching ink's
			// "only one structural newline between paragraphs" rule.
			return
		}
	}
	f.Output = append(f.Output, item)
}

// removeTrailingNewlineForGlue retracts the last emitted newline-only
// string so that glue can stitch the next fragment onto it without a
// line break, per spec §4.4.
func (f *Flow) removeTrailingNewlineForGlue() {
	for i := len(f.Output) - 1; i >= 0; i-- {
		if v, ok := f.Output[i].(*Value); ok && v.Kind == StringValueKind {
			if isWhitespaceOnlyNewline(v.StringVal) {
				f.Output = append(f.Output[:i], f.Output[i+1:]...)
			}
			return
		}
		if _, ok := f.Output[i].(*Glue); ok {
			continue
		}
		return
	}
}

func (f *Flow) pendingNewlineIsRetractable() bool {
	for i := len(f.Output) - 1; i >= 0; i-- {
		if v, ok := f.Output[i].(*Value); ok && v.Kind == StringValueKind {
			return isWhitespaceOnlyNewline(v.StringVal)
		}
		if _, ok := f.Output[i].(*Glue); ok {
			continue
		}
		return false
	}
	return false
}

func isWhitespaceOnlyNewline(s string) bool { return s == "\n" }

// ContainsContent reports whether any non-whitespace text has been
// emitted onto the stream.
func (f *Flow) ContainsContent() bool {
	for _, item := range f.Output {
		if v, ok := item.(*Value); ok && v.Kind == StringValueKind && strings.TrimSpace(v.StringVal) != "" {
			return true
		}
	}
	return false
}

// EndsInNewline reports whether the most recent text item ends with a
// newline (used to decide whether a microstep break is a "natural" one).
func (f *Flow) EndsInNewline() bool {
	for i := len(f.Output) - 1; i >= 0; i-- {
		if v, ok := f.Output[i].(*Value); ok && v.Kind == StringValueKind {
			return strings.HasSuffix(v.StringVal, "\n")
		}
		if _, ok := f.Output[i].(*Tag); ok {
			continue
		}
	}
	return false
}

// CurrentText concatenates every string Value currently on the output
// stream.
func (f *Flow) CurrentText() string {
	var b strings.Builder
	for _, item := range f.Output {
		if v, ok := item.(*Value); ok && v.Kind == StringValueKind {
			b.WriteString(v.StringVal)
		}
	}
	return b.String()
}

// CurrentTags collects every Tag currently buffered on the output stream.
func (f *Flow) CurrentTags() []string {
	var tags []string
	for _, item := range f.Output {
		if t, ok := item.(*Tag); ok {
			tags = append(tags, t.Text)
		}
	}
	return tags
}

// ClearOutput drops everything emitted so far, called once the host has
// consumed a completed step's text.
func (f *Flow) ClearOutput() { f.Output = nil }
