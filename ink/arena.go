package ink

// arena is the flat store backing the whole runtime tree. Every RTObject
// loaded from the compiled JSON lives at a stable index here; children
// and parents reference each other by index instead of pointer, per the
// re-architecture in spec §9. This is what makes a state snapshot cheap
// to reason about: the tree itself never needs copying, only the
// arena-relative cursor and variable state do.
type arena struct {
	objects []RTObject
}

func newArena() *arena { return &arena{objects: make([]RTObject, 0, 256)} }

// add appends obj to the arena and returns its stable index.
func (a *arena) add(obj RTObject) int {
	idx := len(a.objects)
	a.objects = append(a.objects, obj)
	return idx
}

func (a *arena) get(i int) RTObject {
	if i < 0 || i >= len(a.objects) {
		return nil
	}
	return a.objects[i]
}

func (a *arena) container(i int) *Container {
	c, _ := a.get(i).(*Container)
	return c
}

// pathOf walks the parent chain from index i back to the root, emitting
// a named component for each named container ancestor encountered and an
// indexed component otherwise, matching the original engine's path()
// implementation.
func (a *arena) pathOf(i int) Path {
	var comps []PathComponent
	cur := i
	for cur >= 0 {
		obj := a.get(cur)
		if obj == nil {
			break
		}
		parent := obj.parentIndex()
		if parent < 0 {
			break // reached the root; root itself contributes no component
		}
		parentContainer := a.container(parent)
		if parentContainer == nil {
			break
		}
		if name, ok := parentContainer.nameOfChild(cur); ok {
			comps = append([]PathComponent{namedComponent(name)}, comps...)
		} else {
			comps = append([]PathComponent{indexComponent(obj.selfIndex())}, comps...)
		}
		cur = parent
	}
	return Path{components: comps}
}
