package toolchain

import (
	"context"
	"fmt"
	"time"

	"github.com/kballard/go-shellquote"

	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
	"git.home.luguber.info/inful/buildproj/internal/logfields"
	"git.home.luguber.info/inful/buildproj/internal/observability"
)

// DefaultBuildConfig is the configuration passed to `cmake --build --config`.
const DefaultBuildConfig = "Release"

// Phase names the CMake step a command belongs to.
type Phase string

const (
	PhaseConfigure Phase = "configure"
	PhaseCompile   Phase = "compile"
)

// CMakeOptions configures a CMakeBuilder.
type CMakeOptions struct {
	// CMake is the cmake executable; "cmake" when empty.
	CMake string
	// Dir is the source directory holding CMakeLists.txt.
	Dir string
	// BuildDir is the binary directory relative to Dir; "build" when empty.
	BuildDir string
	// BuildConfig is the multi-config build type; DefaultBuildConfig when empty.
	BuildConfig string
	// ExtraArgs are appended to the configure command.
	ExtraArgs []string
	// Runner executes the commands; required.
	Runner CommandRunner
}

// CMakeBuilder configures and compiles a module with CMake using a fixed
// generator.
type CMakeBuilder struct {
	toolchain     Toolchain
	generatorArgs []string
	opts          CMakeOptions
}

// NewCMakeBuilder returns the CMake builder for t.
func NewCMakeBuilder(t Toolchain, opts CMakeOptions) (*CMakeBuilder, error) {
	var gen []string
	switch t {
	case MSVC:
		gen = []string{"-G", "Visual Studio 17 2022", "-A", "x64"}
	case MSYS2:
		gen = []string{"-G", "Ninja"}
	default:
		return nil, ArgumentError(string(t))
	}
	if opts.Runner == nil {
		return nil, dberrors.InternalError("cmake builder requires a command runner").Build()
	}
	if opts.CMake == "" {
		opts.CMake = "cmake"
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.BuildDir == "" {
		opts.BuildDir = "build"
	}
	if opts.BuildConfig == "" {
		opts.BuildConfig = DefaultBuildConfig
	}
	return &CMakeBuilder{toolchain: t, generatorArgs: gen, opts: opts}, nil
}

// NewDefaultDispatcher wires CMake builders for both toolchains sharing opts.
func NewDefaultDispatcher(opts CMakeOptions) (*Dispatcher, error) {
	msvc, err := NewCMakeBuilder(MSVC, opts)
	if err != nil {
		return nil, err
	}
	msys2, err := NewCMakeBuilder(MSYS2, opts)
	if err != nil {
		return nil, err
	}
	return NewDispatcher(msvc, msys2), nil
}

// ConfigureArgs returns the arguments of the configure command.
func (b *CMakeBuilder) ConfigureArgs() []string {
	args := append([]string{}, b.generatorArgs...)
	args = append(args,
		"-S", ".",
		"-B", b.opts.BuildDir,
		"-DPYBIND11_FINDPYTHON=ON",
		"-DCMAKE_CXX_STANDARD=17",
	)
	return append(args, b.opts.ExtraArgs...)
}

// CompileArgs returns the arguments of the build command for module.
func (b *CMakeBuilder) CompileArgs(module string) []string {
	return []string{"--build", b.opts.BuildDir, "--config", b.opts.BuildConfig, "--target", module}
}

// Invoke runs the configure step followed by the compile step.
func (b *CMakeBuilder) Invoke(ctx context.Context, module string) (Result, error) {
	start := time.Now()
	var res Result

	steps := []struct {
		phase Phase
		args  []string
	}{
		{PhaseConfigure, b.ConfigureArgs()},
		{PhaseCompile, b.CompileArgs(module)},
	}

	for _, step := range steps {
		cmdline := shellquote.Join(append([]string{b.opts.CMake}, step.args...)...)
		observability.InfoContext(ctx, "Running CMake", logfields.Phase(string(step.phase)), logfields.Command(cmdline))

		out, err := b.opts.Runner.Run(ctx, b.opts.Dir, b.opts.CMake, step.args...)
		res.Output = append(res.Output, out.Output...)
		res.ExitCode = out.ExitCode
		res.Duration = time.Since(start)

		if err != nil {
			return res, dberrors.WrapError(err, dberrors.CategoryBuild, fmt.Sprintf("cmake %s could not run", step.phase)).
				Fatal().
				WithContext("phase", string(step.phase)).
				WithContext("toolchain", b.toolchain.String()).
				Build()
		}
		if out.ExitCode != 0 {
			observability.DebugContext(ctx, "CMake step failed", logfields.Phase(string(step.phase)), logfields.ExitCode(out.ExitCode))
			return res, dberrors.BuildError(fmt.Sprintf("cmake %s failed with exit code %d", step.phase, out.ExitCode)).
				WithContext("phase", string(step.phase)).
				WithContext("exit_code", out.ExitCode).
				WithContext("toolchain", b.toolchain.String()).
				Build()
		}
	}

	return res, nil
}

// ParseExtraArgs splits a shell-quoted argument string.
func ParseExtraArgs(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	args, err := shellquote.Split(s)
	if err != nil {
		return nil, dberrors.WrapError(err, dberrors.CategoryValidation, "invalid extra cmake arguments").
			Fatal().
			WithContext("cmake_args", s).
			Build()
	}
	return args, nil
}
