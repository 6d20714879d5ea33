package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Toolchain
	}{
		{"msvc", MSVC},
		{"MSVC", MSVC},
		{" msys2 ", MSYS2},
		{"Msys2", MSYS2},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{"invalid", "", "gcc", "msvc2"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)
			assert.True(t, dberrors.HasCategory(err, dberrors.CategoryValidation))
			assert.Contains(t, err.Error(), "msvc")
			assert.Contains(t, err.Error(), "msys2")
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"msvc", "msys2"}, Names())
	assert.Equal(t, MSVC, Default)
	assert.False(t, Toolchain("clang").Valid())
}
