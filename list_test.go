package graphmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	graphmap "github.com/reoring/graphmap"
)

func TestList_ReadOnlyView(t *testing.T) {
	src := []string{"a", "b"}
	l := graphmap.ListOf(src...)
	src[0] = "z"
	assert.Equal(t, "a", l.At(0), "ListOf copies its input")

	items := l.Items()
	items[1] = "z"
	assert.Equal(t, "b", l.At(1), "Items returns a copy")

	var seen []string
	for i, v := range l.All() {
		assert.Equal(t, l.At(i), v)
		seen = append(seen, v)
	}
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.True(t, l.Contains(func(s string) bool { return s == "b" }))
	assert.False(t, l.Contains(func(s string) bool { return s == "z" }))
}

func TestList_Mutators(t *testing.T) {
	var l graphmap.List[int]
	assert.Equal(t, 0, l.Len())

	l.Add(1, 2, 3, 4)
	assert.True(t, l.Remove(1))
	assert.False(t, l.Remove(10))
	assert.Equal(t, []int{1, 3, 4}, l.Items())

	n := l.RemoveFunc(func(v int) bool { return v > 2 })
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{1}, l.Items())

	l.Clear()
	assert.Equal(t, 0, l.Len())
}

func TestList_AllStopsEarly(t *testing.T) {
	l := graphmap.ListOf(1, 2, 3)
	count := 0
	for range l.All() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
