package graphmap

import (
	"iter"
	"reflect"
	"slices"
)

// List is an insertion-ordered sequence that callers read but cannot modify
// structurally. Mutation goes through Add, Remove, RemoveFunc and Clear on the
// owning value. The zero value is an empty list.
type List[T any] struct {
	items []T
}

// ListOf builds a list holding items in order.
func ListOf[T any](items ...T) List[T] {
	return List[T]{items: slices.Clone(items)}
}

func (l List[T]) Len() int { return len(l.items) }

// At returns the i-th element. It panics when i is out of range.
func (l List[T]) At(i int) T { return l.items[i] }

// Items returns a copy of the elements.
func (l List[T]) Items() []T { return slices.Clone(l.items) }

// All iterates index/element pairs in order.
func (l List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range l.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Contains reports whether any element satisfies match.
func (l List[T]) Contains(match func(T) bool) bool {
	return slices.ContainsFunc(l.items, match)
}

func (l *List[T]) Add(items ...T) { l.items = append(l.items, items...) }

// Remove deletes the i-th element, keeping the order of the rest. It reports
// false when i is out of range.
func (l *List[T]) Remove(i int) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

// RemoveFunc deletes every element satisfying match and returns how many
// were removed.
func (l *List[T]) RemoveFunc(match func(T) bool) int {
	n := len(l.items)
	l.items = slices.DeleteFunc(l.items, match)
	return n - len(l.items)
}

func (l *List[T]) Clear() { l.items = nil }

// listBinder lets the mapping engine fill and read a List[T] without knowing T.
type listBinder interface {
	listElemType() reflect.Type
	listReset()
	listAppend(v reflect.Value)
	listLen() int
	listValue(i int) reflect.Value
}

func (l *List[T]) listElemType() reflect.Type { return reflect.TypeFor[T]() }
func (l *List[T]) listReset()                 { l.items = nil }
func (l *List[T]) listLen() int               { return len(l.items) }

func (l *List[T]) listAppend(v reflect.Value) {
	var x T
	if v.IsValid() {
		x, _ = v.Interface().(T)
	}
	l.items = append(l.items, x)
}

func (l *List[T]) listValue(i int) reflect.Value { return reflect.ValueOf(&l.items[i]).Elem() }
