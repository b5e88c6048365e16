package ink

import (
	"fmt"
	"strings"
)

// BuildStringOfHierarchy renders the container tree as an indented
// diagnostic listing, grounded on the same "-> build_string_of_hierarchy"
// debugging entry point the original engine exposes. It's intended for
// developer tooling (see cmd/inkplay's dump --tree), never for players.
func (st *Story) BuildStringOfHierarchy() string {
	var b strings.Builder
	st.writeHierarchy(&b, st.rootIdx, 0)
	return b.String()
}

// ContainerVisit is one row of a container visit/turn-count report,
// exposed so a host CLI can render it without re-walking the arena
// itself (see cmd/inkplay's dump subcommand).
type ContainerVisit struct {
	Path   string
	Depth  int
	Visits int
	Turns  int
}

// ContainerVisitReport walks the container tree in document order and
// reports each container's path alongside its visit and turn-index
// counts. Only positional children are followed: containers reachable
// solely by name (those held in a container's trailing metadata object)
// are not listed, nor is anything beneath them.
func (st *Story) ContainerVisitReport() []ContainerVisit {
	var rows []ContainerVisit
	st.collectContainerVisits(st.rootIdx, 0, &rows)
	return rows
}

func (st *Story) collectContainerVisits(idx int, depth int, rows *[]ContainerVisit) {
	c := st.arena.container(idx)
	if c == nil {
		return
	}
	path := st.arena.pathOf(idx).String()
	*rows = append(*rows, ContainerVisit{
		Path:   path,
		Depth:  depth,
		Visits: st.state.VisitCount(path),
		Turns:  st.state.turnIndices[path],
	})
	for _, childIdx := range c.Children {
		if st.arena.container(childIdx) != nil {
			st.collectContainerVisits(childIdx, depth+1, rows)
		}
	}
}

func (st *Story) writeHierarchy(b *strings.Builder, idx int, depth int) {
	obj := st.arena.get(idx)
	if obj == nil {
		return
	}
	indent := strings.Repeat("  ", depth)

	switch v := obj.(type) {
	case *Container:
		label := v.Name
		if label == "" {
			label = fmt.Sprintf("<container %d>", idx)
		}
		path := st.arena.pathOf(idx)
		fmt.Fprintf(b, "%s%s (%s) visits=%d\n", indent, label, path.String(), st.state.VisitCount(path.String()))
		for _, childIdx := range v.Children {
			st.writeHierarchy(b, childIdx, depth+1)
		}
	case *Value:
		fmt.Fprintf(b, "%s%s\n", indent, v.String())
	case *Divert:
		fmt.Fprintf(b, "%s-> %s\n", indent, v.TargetPathString())
	case *ChoicePoint:
		fmt.Fprintf(b, "%s* %s\n", indent, v.PathOnChoice.String())
	case *ControlCommand:
		fmt.Fprintf(b, "%s[%s]\n", indent, commandLabel(v.Command))
	case *Tag:
		fmt.Fprintf(b, "%s# %s\n", indent, v.Text)
	case *Glue:
		fmt.Fprintf(b, "%s<>\n", indent)
	case *NativeFunctionCall:
		fmt.Fprintf(b, "%s%s\n", indent, v.Name)
	case *VariableReference:
		fmt.Fprintf(b, "%sVAR?%s\n", indent, v.Name)
	case *VariableAssignment:
		fmt.Fprintf(b, "%sVAR=%s\n", indent, v.Name)
	}
}

func commandLabel(c CommandType) string {
	for name, cmd := range commandNames {
		if cmd == c {
			return name
		}
	}
	return "?"
}
