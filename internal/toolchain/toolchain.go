package toolchain

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/buildproj/internal/foundation"
	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
)

// Toolchain identifies a supported build toolchain.
type Toolchain string

const (
	// MSVC builds with CMake's Visual Studio 17 2022 generator for x64.
	MSVC Toolchain = "msvc"
	// MSYS2 builds with CMake's Ninja generator.
	MSYS2 Toolchain = "msys2"
)

// Default is the toolchain used when none is requested.
const Default = MSVC

// Names returns the identifiers of the supported toolchains.
func Names() []string {
	return []string{string(MSVC), string(MSYS2)}
}

var toolchainNormalizer = foundation.NewNormalizer(map[string]Toolchain{
	string(MSVC):  MSVC,
	string(MSYS2): MSYS2,
}, "")

// String implements fmt.Stringer.
func (t Toolchain) String() string {
	return string(t)
}

// Valid reports whether t is one of the supported toolchains.
func (t Toolchain) Valid() bool {
	switch t {
	case MSVC, MSYS2:
		return true
	default:
		return false
	}
}

// Parse converts a user supplied identifier into a Toolchain. Matching is
// case-insensitive and ignores surrounding whitespace.
func Parse(raw string) (Toolchain, error) {
	t, ok := toolchainNormalizer.Lookup(raw)
	if !ok {
		return "", ArgumentError(raw)
	}
	return t, nil
}

// ArgumentError reports an unknown build method and names the valid choices.
func ArgumentError(raw string) error {
	return dberrors.ValidationError(fmt.Sprintf("invalid build method %q: choose %s",
		raw, strings.Join(Names(), " or "))).
		WithContext("build_method", raw).
		Build()
}
