// Package go2 holds small generic helpers missing from the standard library.
package go2

import (
	"golang.org/x/exp/constraints"
)

func Pointer[T any](v T) *T {
	return &v
}

// Min returns the smallest of its arguments. NaN is never selected over a number.
func Min[T constraints.Ordered](first T, rest ...T) T {
	m := first
	for _, v := range rest {
		if v < m || m != m {
			m = v
		}
	}
	return m
}

// Max returns the largest of its arguments. NaN is never selected over a number.
func Max[T constraints.Ordered](first T, rest ...T) T {
	m := first
	for _, v := range rest {
		if v > m || m != m {
			m = v
		}
	}
	return m
}

func Contains[T comparable](els []T, el T) bool {
	for i := range els {
		if els[i] == el {
			return true
		}
	}
	return false
}

// Default returns v unless it is the zero value, in which case def is returned.
func Default[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
