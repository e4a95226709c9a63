package slices

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
	goslices "golang.org/x/exp/slices"
)

// Map maps the elements of s into a new slice using the provided function.
func Map[S ~[]E, E any, V any](s S, mapFunc func(E) V) []V {
	rv := make([]V, len(s))
	for i, e := range s {
		rv[i] = mapFunc(e)
	}
	return rv
}

// Fill returns a slice of length n with all elements equal to v.
func Fill[T any](v T, n int) []T {
	rv := make([]T, n)
	for i := range rv {
		rv[i] = v
	}
	return rv
}

// Zeros returns a slice of length n with all elements equal to the zero value of T.
func Zeros[T any](n int) []T {
	return make([]T, n)
}

// Ones returns a slice of length n with all elements equal to 1.
func Ones[T constraints.Integer | constraints.Float](n int) []T {
	return Fill[T](1, n)
}

// PartitionToMaxLen partitions the elements of s into non-overlapping slices,
// such that each such slice contains at most maxLen elements.
func PartitionToMaxLen[S ~[]E, E any](s S, maxLen int) []S {
	n := int(math.Ceil(float64(len(s)) / float64(maxLen)))
	if n == 0 {
		n = 1
	}
	return Partition(s, n)
}

// Partition partitions the elements of s into n non-overlapping slices,
// such that some slices have len(s)/n+1 items and some len(s)/n items.
// Ordering is preserved, such that Flatten(Partition(s)) is equal to s.
func Partition[S ~[]E, E any](s S, n int) []S {
	if n < 1 {
		panic(fmt.Sprintf("n is %d but must be at least 1", n))
	}
	k := len(s) - (len(s)/n)*n
	rv := make([]S, n)
	i := 0
	for j := 0; j < k; j++ {
		rv[j] = goslices.Clone(s[i : i+len(s)/n+1])
		i += len(s)/n + 1
	}
	for j := k; j < n; j++ {
		rv[j] = goslices.Clone(s[i : i+len(s)/n])
		i += len(s) / n
	}
	return rv
}

// Flatten merges a slice of slices into a single slice.
func Flatten[S ~[]E, E any](s []S) S {
	n := 0
	allNil := true
	for _, si := range s {
		n += len(si)
		allNil = allNil && si == nil
	}
	if allNil {
		return nil
	}
	rv := make(S, n)
	i := 0
	for _, si := range s {
		for _, e := range si {
			rv[i] = e
			i++
		}
	}
	return rv
}

// Concatenate returns a single slice created by concatenating the input slices.
func Concatenate[S ~[]E, E any](s ...S) S {
	return Flatten(s)
}

// Unique returns a copy of s with duplicate elements removed, keeping only the first occurrence.
func Unique[S ~[]E, E comparable](s S) S {
	if s == nil {
		return nil
	}
	rv := make(S, 0)
	seen := make(map[E]bool)
	for _, v := range s {
		if !seen[v] {
			rv = append(rv, v)
			seen[v] = true
		}
	}
	return rv
}
