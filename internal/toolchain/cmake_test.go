package toolchain

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
)

type fakeCall struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	calls   []fakeCall
	results []CommandResult
	errs    []error
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) (CommandResult, error) {
	i := len(f.calls)
	f.calls = append(f.calls, fakeCall{dir: dir, name: name, args: args})
	var res CommandResult
	var err error
	if i < len(f.results) {
		res = f.results[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return res, err
}

func TestCMakeBuilder_MSVCCommands(t *testing.T) {
	runner := &fakeRunner{}
	b, err := NewCMakeBuilder(MSVC, CMakeOptions{Runner: runner, Dir: "/work"})
	require.NoError(t, err)

	_, err = b.Invoke(context.Background(), "mymod")
	require.NoError(t, err)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, "/work", runner.calls[0].dir)
	assert.Equal(t, "cmake", runner.calls[0].name)
	assert.Equal(t, []string{
		"-G", "Visual Studio 17 2022", "-A", "x64",
		"-S", ".", "-B", "build",
		"-DPYBIND11_FINDPYTHON=ON", "-DCMAKE_CXX_STANDARD=17",
	}, runner.calls[0].args)
	assert.Equal(t, []string{"--build", "build", "--config", "Release", "--target", "mymod"}, runner.calls[1].args)
}

func TestCMakeBuilder_MSYS2CommandsWithExtras(t *testing.T) {
	runner := &fakeRunner{}
	b, err := NewCMakeBuilder(MSYS2, CMakeOptions{
		Runner:      runner,
		CMake:       "/mingw64/bin/cmake",
		BuildConfig: "Debug",
		ExtraArgs:   []string{"-DCMAKE_C_COMPILER=gcc"},
	})
	require.NoError(t, err)

	_, err = b.Invoke(context.Background(), "fast")
	require.NoError(t, err)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, "/mingw64/bin/cmake", runner.calls[0].name)
	assert.Equal(t, []string{
		"-G", "Ninja",
		"-S", ".", "-B", "build",
		"-DPYBIND11_FINDPYTHON=ON", "-DCMAKE_CXX_STANDARD=17",
		"-DCMAKE_C_COMPILER=gcc",
	}, runner.calls[0].args)
	assert.Equal(t, []string{"--build", "build", "--config", "Debug", "--target", "fast"}, runner.calls[1].args)
}

func TestCMakeBuilder_ConfigureFailureStopsCompile(t *testing.T) {
	runner := &fakeRunner{results: []CommandResult{{ExitCode: 1, Output: []byte("CMake Error")}}}
	b, err := NewCMakeBuilder(MSVC, CMakeOptions{Runner: runner})
	require.NoError(t, err)

	res, err := b.Invoke(context.Background(), "mymod")
	require.Error(t, err)
	assert.Len(t, runner.calls, 1)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "CMake Error", string(res.Output))

	classified, ok := dberrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, dberrors.CategoryBuild, classified.Category())
	phase, _ := classified.Context().GetString("phase")
	assert.Equal(t, "configure", phase)
}

func TestCMakeBuilder_CompileFailure(t *testing.T) {
	runner := &fakeRunner{results: []CommandResult{{}, {ExitCode: 2}}}
	b, err := NewCMakeBuilder(MSYS2, CMakeOptions{Runner: runner})
	require.NoError(t, err)

	_, err = b.Invoke(context.Background(), "mymod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile")
	assert.Len(t, runner.calls, 2)
}

func TestCMakeBuilder_SpawnFailure(t *testing.T) {
	cause := errors.New("executable file not found")
	runner := &fakeRunner{errs: []error{cause}}
	b, err := NewCMakeBuilder(MSVC, CMakeOptions{Runner: runner})
	require.NoError(t, err)

	_, err = b.Invoke(context.Background(), "mymod")
	require.ErrorIs(t, err, cause)
	assert.True(t, dberrors.HasCategory(err, dberrors.CategoryBuild))
}

func TestNewCMakeBuilder_Validation(t *testing.T) {
	_, err := NewCMakeBuilder(Toolchain("gcc"), CMakeOptions{Runner: &fakeRunner{}})
	assert.True(t, dberrors.HasCategory(err, dberrors.CategoryValidation))

	_, err = NewCMakeBuilder(MSVC, CMakeOptions{})
	assert.True(t, dberrors.HasCategory(err, dberrors.CategoryInternal))
}

func TestNewDefaultDispatcher(t *testing.T) {
	runner := &fakeRunner{}
	d, err := NewDefaultDispatcher(CMakeOptions{Runner: runner})
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), MSYS2, "mymod")
	require.NoError(t, err)
	require.NotEmpty(t, runner.calls)
	assert.Equal(t, []string{"-G", "Ninja"}, runner.calls[0].args[:2])
}

func TestParseExtraArgs(t *testing.T) {
	args, err := ParseExtraArgs(`-DFOO=bar "-DPATH=C:/Program Files/x"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"-DFOO=bar", "-DPATH=C:/Program Files/x"}, args)

	args, err = ParseExtraArgs("")
	require.NoError(t, err)
	assert.Nil(t, args)

	_, err = ParseExtraArgs(`"unterminated`)
	assert.True(t, dberrors.HasCategory(err, dberrors.CategoryValidation))
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	res, err := ExecRunner{}.Run(context.Background(), t.TempDir(), "sh", "-c", "echo out; echo err 1>&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, string(res.Output), "out")
	assert.Contains(t, string(res.Output), "err")

	_, err = ExecRunner{}.Run(context.Background(), t.TempDir(), "definitely-not-a-real-binary-xyz")
	assert.Error(t, err)
}
