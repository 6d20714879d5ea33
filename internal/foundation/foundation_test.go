package foundation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOption(t *testing.T) {
	t.Run("Some", func(t *testing.T) {
		assert.Equal(t, "/usr/bin/python3", Some("/usr/bin/python3").UnwrapOr("fallback"))
	})

	t.Run("None", func(t *testing.T) {
		assert.Equal(t, "fallback", None[string]().UnwrapOr("fallback"))
	})

	t.Run("NonEmpty", func(t *testing.T) {
		assert.Equal(t, "x", NonEmpty("x").UnwrapOr("fallback"))
		assert.Equal(t, "fallback", NonEmpty("").UnwrapOr("fallback"))
		assert.Equal(t, "fallback", NonEmpty("   ").UnwrapOr("fallback"))
	})

	t.Run("Filter", func(t *testing.T) {
		assert.Equal(t, 0, Some(3).Filter(func(i int) bool { return i > 5 }).UnwrapOr(0))
		assert.Equal(t, 7, Some(7).Filter(func(i int) bool { return i > 5 }).UnwrapOr(0))
	})
}

type color string

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(map[string]color{"Red": "red", "blue": "blue"}, "")

	assert.Equal(t, color("red"), n.Normalize("  RED "))
	assert.Equal(t, color(""), n.Normalize("green"))

	v, ok := n.Lookup("Blue")
	assert.True(t, ok)
	assert.Equal(t, color("blue"), v)

	_, ok = n.Lookup("green")
	assert.False(t, ok)
}
