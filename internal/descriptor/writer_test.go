package descriptor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildproj/internal/foundation"
	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
	"git.home.luguber.info/inful/buildproj/internal/observability"
	"git.home.luguber.info/inful/buildproj/internal/workspace"
)

const goldenDescriptor = `cmake_minimum_required(VERSION 3.15)
project(mymod LANGUAGES CXX)

# C++ standard
set(CMAKE_CXX_STANDARD 17)
set(CMAKE_CXX_STANDARD_REQUIRED ON)

# Use the modern FindPython integration in pybind11
set(PYBIND11_FINDPYTHON ON)

# Explicit interpreter
set(Python3_EXECUTABLE "/usr/bin/python3" CACHE FILEPATH "Path to Python executable")

# Locate Python and pybind11
find_package(Python3 COMPONENTS Interpreter Development REQUIRED)
find_package(pybind11 CONFIG REQUIRED)

# Module target
pybind11_add_module(mymod main.cpp)
`

func newWriter(t *testing.T, defaultPython string) (*Writer, *workspace.Manager) {
	t.Helper()
	ws := workspace.NewManager(t.TempDir())
	return NewWriter(ws, defaultPython), ws
}

func TestEnsure_WritesGoldenDescriptor(t *testing.T) {
	w, ws := newWriter(t, "/opt/default/python")

	outcome, err := w.Ensure(context.Background(), Params{
		Module: "mymod",
		Python: foundation.Some("/usr/bin/python3"),
		Source: "main.cpp",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeWritten, outcome)

	data, err := os.ReadFile(ws.DescriptorPath())
	require.NoError(t, err)
	assert.Equal(t, goldenDescriptor, string(data))
}

func TestEnsure_UsesDefaultInterpreterAndSource(t *testing.T) {
	w, ws := newWriter(t, "C:/Python312/python.exe")

	_, err := w.Ensure(context.Background(), Params{Module: "fastmath", Python: foundation.None[string]()})
	require.NoError(t, err)

	data, err := os.ReadFile(ws.DescriptorPath())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `set(Python3_EXECUTABLE "C:/Python312/python.exe" CACHE FILEPATH`)
	assert.Equal(t, 1, strings.Count(content, "pybind11_add_module("))
	assert.Contains(t, content, "pybind11_add_module(fastmath main.cpp)")
	assert.Contains(t, content, "project(fastmath LANGUAGES CXX)")
}

func TestEnsure_EmptyExplicitInterpreterFallsBack(t *testing.T) {
	w, _ := newWriter(t, "/usr/local/bin/python3.12")
	assert.Equal(t, "/usr/local/bin/python3.12", w.Interpreter(Params{Python: foundation.Some("")}))
	assert.Equal(t, "/x/python", w.Interpreter(Params{Python: foundation.Some("/x/python")}))
}

func TestEnsure_SkipsExistingDescriptor(t *testing.T) {
	w, ws := newWriter(t, "/usr/bin/python3")
	original := []byte("# hand written\nproject(other)\n")
	require.NoError(t, os.WriteFile(ws.DescriptorPath(), original, 0o600))

	for range 2 {
		outcome, err := w.Ensure(context.Background(), Params{Module: "mymod"})
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, outcome)
	}

	data, err := os.ReadFile(ws.DescriptorPath())
	require.NoError(t, err)
	assert.Equal(t, original, data, "existing descriptor must stay byte-for-byte identical")
}

func TestEnsure_SecondCallIsNoop(t *testing.T) {
	w, ws := newWriter(t, "/usr/bin/python3")

	outcome, err := w.Ensure(context.Background(), Params{Module: "first"})
	require.NoError(t, err)
	require.Equal(t, OutcomeWritten, outcome)
	before, err := os.ReadFile(ws.DescriptorPath())
	require.NoError(t, err)

	outcome, err = w.Ensure(context.Background(), Params{Module: "second", Source: "other.cpp"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	after, err := os.ReadFile(ws.DescriptorPath())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEnsure_RejectsInvalidModuleName(t *testing.T) {
	for _, name := range []string{"", "1mod", "my-mod", "my mod", "mod;rm"} {
		t.Run(name, func(t *testing.T) {
			w, ws := newWriter(t, "/usr/bin/python3")

			_, err := w.Ensure(context.Background(), Params{Module: name})
			require.Error(t, err)
			assert.True(t, dberrors.HasCategory(err, dberrors.CategoryValidation))
			assert.NoFileExists(t, ws.DescriptorPath())
		})
	}
}

func TestValidateSource(t *testing.T) {
	for _, ok := range []string{"", "main.cpp", "src/bindings.cpp", "C:/work/mod.cpp"} {
		assert.NoError(t, ValidateSource(ok), ok)
	}
	for _, bad := range []string{"my src.cpp", "a\tb.cpp", `src\main.cpp`, `"main.cpp"`, "main.cpp)", "a;b.cpp", "#x.cpp"} {
		err := ValidateSource(bad)
		require.Error(t, err, bad)
		assert.True(t, dberrors.HasCategory(err, dberrors.CategoryValidation), bad)
	}
}

func TestEnsure_RejectsSourceWithWhitespace(t *testing.T) {
	w, ws := newWriter(t, "/usr/bin/python3")

	_, err := w.Ensure(context.Background(), Params{Module: "mymod", Source: "my src.cpp"})
	require.Error(t, err)
	assert.True(t, dberrors.HasCategory(err, dberrors.CategoryValidation))
	assert.NoFileExists(t, ws.DescriptorPath())
}

func TestEnsure_WriteFailureLeavesNothingBehind(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	w, ws := newWriter(t, "/usr/bin/python3")
	require.NoError(t, os.Chmod(ws.Root(), 0o500))
	t.Cleanup(func() { _ = os.Chmod(ws.Root(), 0o750) })

	_, err := w.Ensure(context.Background(), Params{Module: "mymod"})
	require.Error(t, err)
	assert.True(t, dberrors.HasCategory(err, dberrors.CategoryFileSystem))

	entries, readErr := os.ReadDir(ws.Root())
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no descriptor or temporary file may remain")
}

func TestWriteAtomic_RenameFailureCleansTemp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "CMakeLists.txt")
	// A non-empty directory at the target path makes the rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0o750))

	err := writeAtomic(target, []byte("content"), 0o644)
	require.Error(t, err)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	require.Len(t, entries, 1)
	assert.Equal(t, "CMakeLists.txt", entries[0].Name())
}

func TestRender_DefaultSource(t *testing.T) {
	out, err := Render("mymod", "/usr/bin/python3", "")
	require.NoError(t, err)
	assert.Equal(t, goldenDescriptor, string(out))
}

func TestResolveInterpreter(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "python3.12")
	require.NoError(t, os.WriteFile(real, nil, 0o700))
	link := filepath.Join(dir, "python3")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	lookups := []string{}
	lookPath := func(name string) (string, error) {
		lookups = append(lookups, name)
		if name == "python3" {
			return link, nil
		}
		return "", errors.New("not found")
	}

	got, err := ResolveInterpreter(lookPath)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(real)
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(want), got)
	assert.Equal(t, []string{"python3"}, lookups)
}

func TestResolveInterpreter_NoneFound(t *testing.T) {
	_, err := ResolveInterpreter(func(string) (string, error) { return "", errors.New("not found") }, "pythonX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pythonX")
}

func TestEnsure_LogsModuleOnce(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	defer slog.SetDefault(prev)

	w, _ := newWriter(t, "/usr/bin/python3")
	ctx := observability.WithTarget(context.Background(), "mymod", "msvc")
	_, err := w.Ensure(ctx, Params{Module: "mymod"})
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "Wrote descriptor")
	assert.Equal(t, 1, strings.Count(logs.String(), "module=mymod"), logs.String())
}
