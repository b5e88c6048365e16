package ink

import (
	"strconv"
	"strings"
)

const parentComponentName = "^"

// PathComponent is one element of a Path: either a named child, an
// indexed child, or a reference to the parent container.
type PathComponent struct {
	name    string
	index   int // valid when !isParent && name == ""
	isIndex bool
	isParent bool
}

func namedComponent(name string) PathComponent { return PathComponent{name: name} }
func indexComponent(i int) PathComponent        { return PathComponent{index: i, isIndex: true} }
func parentComponent() PathComponent            { return PathComponent{isParent: true} }

func (c PathComponent) String() string {
	switch {
	case c.isParent:
		return parentComponentName
	case c.isIndex:
		return strconv.Itoa(c.index)
	default:
		return c.name
	}
}

func (c PathComponent) equals(other PathComponent) bool {
	if c.isParent || other.isParent {
		return c.isParent == other.isParent
	}
	if c.isIndex || other.isIndex {
		return c.isIndex == other.isIndex && c.index == other.index
	}
	return c.name == other.name
}

// componentFromString parses a single path component. A bare integer
// parses as an indexed component; "^" parses as a parent reference;
// anything else is a named component.
func componentFromString(s string) PathComponent {
	if s == parentComponentName {
		return parentComponent()
	}
	if n, err := strconv.Atoi(s); err == nil {
		return indexComponent(n)
	}
	return namedComponent(s)
}

// Path addresses an RTObject inside the container tree. It is either
// absolute (rooted at the story's root container) or relative (resolved
// against a starting container).
type Path struct {
	components []PathComponent
	isRelative bool
}

// NewPath builds an absolute path from already-parsed components.
func NewPath(components ...PathComponent) Path {
	return Path{components: append([]PathComponent(nil), components...)}
}

// ParsePath parses ink's dotted path string syntax, e.g. "knot.stitch.3"
// or ".knot" for a relative path.
func ParsePath(s string) Path {
	p := Path{}
	if s == "" {
		return p
	}
	if strings.HasPrefix(s, ".") {
		p.isRelative = true
		s = s[1:]
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			continue
		}
		p.components = append(p.components, componentFromString(part))
	}
	return p
}

// String renders the path back into ink's dotted syntax.
func (p Path) String() string {
	var b strings.Builder
	if p.isRelative {
		b.WriteByte('.')
	}
	for i, c := range p.components {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(c.String())
	}
	return b.String()
}

// IsRelative reports whether the path should be resolved relative to a
// starting container rather than the program root.
func (p Path) IsRelative() bool { return p.isRelative }

// Len returns the number of components.
func (p Path) Len() int { return len(p.components) }

// Head returns the first component and the remainder of the path.
func (p Path) Head() (PathComponent, Path) {
	if len(p.components) == 0 {
		return PathComponent{}, p
	}
	return p.components[0], Path{components: p.components[1:], isRelative: p.isRelative}
}

// Component returns the component at index i.
func (p Path) Component(i int) PathComponent { return p.components[i] }

// Tail returns a new relative path containing every component after the
// first, used when resolving through a named ancestor.
func (p Path) Tail() Path {
	if len(p.components) == 0 {
		return Path{isRelative: true}
	}
	return Path{components: p.components[1:], isRelative: true}
}

// WithAppendedComponent returns a new path with c appended.
func (p Path) WithAppendedComponent(c PathComponent) Path {
	return Path{components: append(append([]PathComponent(nil), p.components...), c), isRelative: p.isRelative}
}

// Equals reports componentwise equality, matching spec §3's path identity
// invariant.
func (p Path) Equals(other Path) bool {
	if p.isRelative != other.isRelative || len(p.components) != len(other.components) {
		return false
	}
	for i := range p.components {
		if !p.components[i].equals(other.components[i]) {
			return false
		}
	}
	return true
}
