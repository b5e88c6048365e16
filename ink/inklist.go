package ink

import (
	"sort"
	"strings"
)

// InkListItem identifies one member of a list definition by its origin
// list name and its item name. Grounded on
// original_source/lib/src/ink_list_item.rs.
type InkListItem struct {
	OriginName string // empty means unknown/unqualified origin
	ItemName   string
}

// FullName renders "origin.item", using "?" for an unknown origin to
// match the original's Display impl.
func (i InkListItem) FullName() string {
	origin := i.OriginName
	if origin == "" {
		origin = "?"
	}
	return origin + "." + i.ItemName
}

// IsNull reports whether this is the zero/null list item.
func (i InkListItem) IsNull() bool { return i.OriginName == "" && i.ItemName == "" }

func listItemFromFullName(full string) InkListItem {
	parts := strings.SplitN(full, ".", 2)
	if len(parts) == 2 {
		return InkListItem{OriginName: parts[0], ItemName: parts[1]}
	}
	return InkListItem{ItemName: full}
}

// InkList is a set-like mapping of list items to their integer values,
// annotated with the set of origin list names that could still produce
// additional items (needed by LIST_ALL / list range operations).
type InkList struct {
	Items   map[InkListItem]int
	Origins []string
}

// NewInkList returns an empty list.
func NewInkList() InkList { return InkList{Items: map[InkListItem]int{}} }

// Clone deep-copies the list; InkList is a value carried inside Value, so
// callers must not alias the backing map across frames.
func (l InkList) Clone() InkList {
	c := InkList{Items: make(map[InkListItem]int, len(l.Items)), Origins: append([]string(nil), l.Origins...)}
	for k, v := range l.Items {
		c.Items[k] = v
	}
	return c
}

func (l InkList) String() string {
	names := make([]string, 0, len(l.Items))
	for item := range l.Items {
		names = append(names, item.ItemName)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Union returns the set union of two lists, taking each item's existing
// value where duplicated.
func (l InkList) Union(other InkList) InkList {
	r := l.Clone()
	for k, v := range other.Items {
		if _, ok := r.Items[k]; !ok {
			r.Items[k] = v
		}
	}
	r.Origins = mergeOrigins(r.Origins, other.Origins)
	return r
}

// Intersect returns items present in both lists.
func (l InkList) Intersect(other InkList) InkList {
	r := NewInkList()
	for k, v := range l.Items {
		if _, ok := other.Items[k]; ok {
			r.Items[k] = v
		}
	}
	r.Origins = mergeOrigins(l.Origins, other.Origins)
	return r
}

// Without returns items in l that are not present in other.
func (l InkList) Without(other InkList) InkList {
	r := NewInkList()
	for k, v := range l.Items {
		if _, ok := other.Items[k]; !ok {
			r.Items[k] = v
		}
	}
	r.Origins = append([]string(nil), l.Origins...)
	return r
}

// Contains reports whether other is a subset of l.
func (l InkList) Contains(other InkList) bool {
	for k := range other.Items {
		if _, ok := l.Items[k]; !ok {
			return false
		}
	}
	return true
}

// MaxItem returns the item with the highest integer value, matching
// ink's LIST_MAX semantics. ok is false for an empty list.
func (l InkList) MaxItem() (InkListItem, int, bool) {
	best, bestVal, ok := InkListItem{}, 0, false
	for k, v := range l.Items {
		if !ok || v > bestVal {
			best, bestVal, ok = k, v, true
		}
	}
	return best, bestVal, ok
}

// MinItem returns the item with the lowest integer value.
func (l InkList) MinItem() (InkListItem, int, bool) {
	best, bestVal, ok := InkListItem{}, 0, false
	for k, v := range l.Items {
		if !ok || v < bestVal {
			best, bestVal, ok = k, v, true
		}
	}
	return best, bestVal, ok
}

// Range returns the subset of l whose values fall within [min, max]
// inclusive, implementing LIST_RANGE.
func (l InkList) Range(min, max int) InkList {
	r := NewInkList()
	for k, v := range l.Items {
		if v >= min && v <= max {
			r.Items[k] = v
		}
	}
	r.Origins = append([]string(nil), l.Origins...)
	return r
}

// Compare implements ink's ordered comparison between lists: a list is
// "greater than" another when its minimum element exceeds the other's
// maximum, and vice versa; equal-valued lists compare by item count. Only
// meaningful for single-origin, contiguous usage the way ink authors use
// list comparisons in practice.
func (l InkList) Compare(other InkList) int {
	_, lMax, lok := l.MaxItem()
	_, oMin, ook := other.MinItem()
	if lok && ook && lMax < oMin {
		return -1
	}
	_, lMin, _ := l.MinItem()
	_, oMax, _ := other.MaxItem()
	if lok && ook && lMin > oMax {
		return 1
	}
	if len(l.Items) == len(other.Items) {
		return 0
	}
	if len(l.Items) < len(other.Items) {
		return -1
	}
	return 1
}

func mergeOrigins(a, b []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
