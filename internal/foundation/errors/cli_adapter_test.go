package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("unknown toolchain").Build(), expected: 2},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "filesystem", err: FileSystemError("remove build").Build(), expected: 11},
		{name: "build", err: BuildError("cmake failed").Build(), expected: 11},
		{name: "internal", err: InternalError("boom").Build(), expected: 10},
		{name: "unclassified", err: errors.New("unknown"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	msg := adapter.FormatError(ValidationError("invalid build method \"gcc\": choose msvc or msys2").Build())
	assert.Equal(t, "Error: invalid build method \"gcc\": choose msvc or msys2", msg)

	msg = adapter.FormatError(WrapError(errors.New("disk full"), CategoryFileSystem, "write CMakeLists.txt").Build())
	assert.Equal(t, "filesystem error: write CMakeLists.txt: disk full", msg)

	assert.Equal(t, "Error: plain", adapter.FormatError(errors.New("plain")))
	assert.Empty(t, adapter.FormatError(nil))
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var out, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(true, logger).WithOutput(&out)

	code := adapter.Report(BuildError("compile failed").WithContext("phase", "compile").Build())

	assert.Equal(t, 11, code)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"), "exactly one diagnostic line")
	assert.Contains(t, out.String(), "compile failed")
	assert.Contains(t, logs.String(), "phase=compile")
}
