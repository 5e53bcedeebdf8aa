// Package set provides a generic set datastructure.
package set

import (
	"cmp"
	"slices"
)

// Set is an unordered collection of unique elements.
// The zero value is not usable, create it with New or From.
type Set[T cmp.Ordered] map[T]struct{}

func New[T cmp.Ordered]() Set[T] {
	return Set[T]{}
}

// From returns a set containing the elements of sl.
func From[T cmp.Ordered](sl ...T) Set[T] {
	result := make(Set[T], len(sl))

	for _, elem := range sl {
		result[elem] = struct{}{}
	}

	return result
}

func (s Set[T]) Add(elem T) {
	s[elem] = struct{}{}
}

func (s Set[T]) Remove(elem T) {
	delete(s, elem)
}

func (s Set[T]) Contains(elem T) bool {
	_, exist := s[elem]
	return exist
}

func (s Set[T]) Len() int {
	return len(s)
}

// Sorted returns the elements in ascending order.
func (s Set[T]) Sorted() []T {
	res := make([]T, 0, len(s))

	for k := range s {
		res = append(res, k)
	}

	slices.Sort(res)

	return res
}

// Difference returns a new set with the elements of s that are not in other.
func (s Set[T]) Difference(other Set[T]) Set[T] {
	result := New[T]()

	for k := range s {
		if !other.Contains(k) {
			result.Add(k)
		}
	}

	return result
}

// Clone returns a shallow copy of s.
func (s Set[T]) Clone() Set[T] {
	result := make(Set[T], len(s))

	for k := range s {
		result[k] = struct{}{}
	}

	return result
}

// Union returns a new set with the elements of s and other.
func (s Set[T]) Union(other Set[T]) Set[T] {
	result := s.Clone()

	for k := range other {
		result.Add(k)
	}

	return result
}
