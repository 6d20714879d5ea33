package foundation

import "strings"

// Option represents a value that may or may not be present.
type Option[T any] struct {
	value   T
	present bool
}

// Some creates an Option with a value.
func Some[T any](value T) Option[T] {
	return Option[T]{value: value, present: true}
}

// None creates an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// NonEmpty returns Some(s) unless s is blank.
func NonEmpty(s string) Option[string] {
	if strings.TrimSpace(s) == "" {
		return None[string]()
	}
	return Some(s)
}

// UnwrapOr returns the value if present, otherwise the fallback.
func (o Option[T]) UnwrapOr(fallback T) T {
	if o.present {
		return o.value
	}
	return fallback
}

// Filter returns the Option if the predicate holds for its value, otherwise None.
func (o Option[T]) Filter(predicate func(T) bool) Option[T] {
	if o.present && predicate(o.value) {
		return o
	}
	return None[T]()
}
