// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package vartype

// VarString is a Variable[string], used for map tags that may or may not be present.
type VarString = Variable[string]

// Variable holds a value together with the information whether it was ever set.
type Variable[T any] struct {
	value T
	isset bool
}

// NewVariable returns a Variable that is set to value.
func NewVariable[T any](value T) Variable[T] {
	return Variable[T]{value: value, isset: true}
}

// Lookup builds a Variable from the comma-ok result of a map access.
func Lookup[K comparable, T any](m map[K]T, key K) Variable[T] {
	val, ok := m[key]
	if !ok {
		return Variable[T]{}
	}
	return NewVariable(val)
}

// Value returns the stored value, or the zero value if unset.
func (v Variable[T]) Value() T {
	return v.value
}

// IsSet reports whether the Variable holds a value.
func (v Variable[T]) IsSet() bool {
	return v.isset
}
