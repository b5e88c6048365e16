package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(origin, name string) InkListItem { return InkListItem{OriginName: origin, ItemName: name} }

func TestInkListUnionKeepsExistingValueOnOverlap(t *testing.T) {
	a := NewInkList()
	a.Items[item("colors", "red")] = 1
	b := NewInkList()
	b.Items[item("colors", "red")] = 99
	b.Items[item("colors", "blue")] = 2

	u := a.Union(b)

	require.Len(t, u.Items, 2)
	assert.Equal(t, 1, u.Items[item("colors", "red")], "union should keep the left operand's value on overlap")
	assert.Equal(t, 2, u.Items[item("colors", "blue")])
}

func TestInkListIntersectAndWithout(t *testing.T) {
	a := NewInkList()
	a.Items[item("colors", "red")] = 1
	a.Items[item("colors", "blue")] = 2
	b := NewInkList()
	b.Items[item("colors", "blue")] = 2
	b.Items[item("colors", "green")] = 3

	inter := a.Intersect(b)
	require.Len(t, inter.Items, 1)
	assert.Contains(t, inter.Items, item("colors", "blue"))

	without := a.Without(b)
	require.Len(t, without.Items, 1)
	assert.Contains(t, without.Items, item("colors", "red"))
}

func TestInkListContainsIsSubsetCheck(t *testing.T) {
	a := NewInkList()
	a.Items[item("colors", "red")] = 1
	a.Items[item("colors", "blue")] = 2
	b := NewInkList()
	b.Items[item("colors", "blue")] = 2

	assert.True(t, a.Contains(b))
	assert.False(t, b.Contains(a))
}

func TestInkListMinMaxItem(t *testing.T) {
	l := NewInkList()
	l.Items[item("nums", "one")] = 1
	l.Items[item("nums", "three")] = 3
	l.Items[item("nums", "two")] = 2

	_, maxVal, ok := l.MaxItem()
	require.True(t, ok)
	assert.Equal(t, 3, maxVal)

	_, minVal, ok := l.MinItem()
	require.True(t, ok)
	assert.Equal(t, 1, minVal)

	_, _, ok = NewInkList().MaxItem()
	assert.False(t, ok, "empty list has no max item")
}

func TestInkListRange(t *testing.T) {
	l := NewInkList()
	l.Items[item("nums", "one")] = 1
	l.Items[item("nums", "two")] = 2
	l.Items[item("nums", "three")] = 3

	r := l.Range(2, 3)
	require.Len(t, r.Items, 2)
	assert.Contains(t, r.Items, item("nums", "two"))
	assert.Contains(t, r.Items, item("nums", "three"))
}

func TestInkListCompareByDisjointRanges(t *testing.T) {
	low := NewInkList()
	low.Items[item("nums", "one")] = 1
	high := NewInkList()
	high.Items[item("nums", "five")] = 5

	assert.Equal(t, -1, low.Compare(high))
	assert.Equal(t, 1, high.Compare(low))
	assert.Equal(t, 0, low.Compare(low.Clone()))
}
