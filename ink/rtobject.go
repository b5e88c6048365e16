package ink

// RTObject is the tagged-variant base for every node reachable from a
// story's root Container. Per the arena re-architecture in spec §9,
// concrete variants don't carry pointers to each other: a node only knows
// its owning Container's arena index, never the reverse, so there are no
// reference cycles to manage.
type RTObject interface {
	// parentIndex returns the arena index of the owning Container, or
	// -1 if the object has not been attached to a tree (or is the root).
	parentIndex() int
	setParentIndex(i int)
	// selfIndex is this object's position within its parent's children,
	// used by path() to walk back up to the root.
	selfIndex() int
	setSelfIndex(i int)
}

// rtBase is embedded by every concrete RTObject to supply the weak
// parent back-reference described in spec §3 ("relation only, never
// ownership").
type rtBase struct {
	parent int // arena index into Story.objects, or -1
	self   int // index within parent's children, or -1 for unattached
}

func (b *rtBase) parentIndex() int     { return b.parent }
func (b *rtBase) setParentIndex(i int) { b.parent = i }
func (b *rtBase) selfIndex() int       { return b.self }
func (b *rtBase) setSelfIndex(i int)   { b.self = i }

func newRTBase() rtBase { return rtBase{parent: -1, self: -1} }
