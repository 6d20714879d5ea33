package foundation

import "strings"

// Normalizer maps user spellings of an enum onto its values. Lookups ignore
// case and surrounding whitespace.
type Normalizer[T comparable] struct {
	values   map[string]T
	fallback T
}

// NewNormalizer indexes values by their normalized key. fallback is what
// Normalize returns for unknown input.
func NewNormalizer[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	index := make(map[string]T, len(values))
	for k, v := range values {
		index[normalizeKey(k)] = v
	}
	return &Normalizer[T]{values: index, fallback: fallback}
}

// Lookup returns the value spelled by raw and whether raw is known.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.values[normalizeKey(raw)]
	return v, ok
}

// Normalize returns the value spelled by raw, or the fallback.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.Lookup(raw); ok {
		return v
	}
	return n.fallback
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
