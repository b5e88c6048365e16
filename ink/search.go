package ink

// SearchResult is the outcome of resolving a Path: the object found, and
// whether resolution only matched a prefix of the path (spec §4.2).
type SearchResult struct {
	ObjIndex    int
	Approximate bool
}

// CorrectObj returns the resolved object index only when resolution was
// exact; ok is false in the approximate case, mirroring
// original_source's correct_obj() returning None.
func (r SearchResult) CorrectObj() (int, bool) {
	if r.Approximate {
		return -1, false
	}
	return r.ObjIndex, true
}

// resolvePath resolves path against startIdx (a container index),
// stepping through each component: a named child, an indexed child, or
// a parent reference. Named lookup wins over indexed lookup of the same
// component. If a component fails to resolve, the search falls back to
// the deepest prefix that did resolve and marks the result approximate.
func (a *arena) resolvePath(startIdx int, path Path) SearchResult {
	if path.Len() == 0 {
		return SearchResult{ObjIndex: startIdx}
	}

	cur := startIdx
	first := 0
	if !path.IsRelative() {
		cur = a.rootIndex()
	} else {
		// Relative paths resolve from the nearest named ancestor of the
		// starting container when the first component is a name that
		// matches an ancestor rather than a child (spec §4.2).
		if head, _ := path.Head(); !head.isIndex && !head.isParent {
			if _, isChild := a.step(startIdx, head); !isChild {
				if anc, ok := a.nearestNamedAncestorOrSelf(startIdx, head.name); ok {
					cur = anc
					first = 1 // the ancestor itself is what the first component names
				}
			}
		}
	}

	approximate := false
	for i := first; i < path.Len(); i++ {
		comp := path.Component(i)
		next, ok := a.step(cur, comp)
		if !ok {
			approximate = true
			break
		}
		cur = next
	}
	return SearchResult{ObjIndex: cur, Approximate: approximate}
}

func (a *arena) rootIndex() int { return 0 }

func (a *arena) step(cur int, comp PathComponent) (int, bool) {
	if comp.isParent {
		obj := a.get(cur)
		if obj == nil {
			return cur, false
		}
		p := obj.parentIndex()
		if p < 0 {
			return cur, false
		}
		return p, true
	}

	c := a.container(cur)
	if c == nil {
		return cur, false
	}

	// A named child wins over a positional/indexed interpretation of the
	// same literal component, even when the literal parses as an integer
	// (e.g. a child actually named "3"): try the name first regardless of
	// how componentFromString classified it.
	if idx, ok := c.NamedChild(comp.String()); ok {
		return idx, true
	}

	if !comp.isIndex {
		return cur, false
	}

	if comp.index < 0 || comp.index >= len(c.Children) {
		return cur, false
	}
	return c.Children[comp.index], true
}

// nearestNamedAncestorOrSelf walks up from startIdx looking for a
// container (including startIdx itself) whose parent names it `name`, or
// whose own Name field equals name; used to resolve a relative path whose
// first component names an ancestor knot/stitch rather than a child.
func (a *arena) nearestNamedAncestorOrSelf(startIdx int, name string) (int, bool) {
	cur := startIdx
	for cur >= 0 {
		c := a.container(cur)
		if c != nil && c.Name == name {
			return cur, true
		}
		obj := a.get(cur)
		if obj == nil {
			return -1, false
		}
		cur = obj.parentIndex()
	}
	return -1, false
}
