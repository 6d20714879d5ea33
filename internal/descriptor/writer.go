package descriptor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"git.home.luguber.info/inful/buildproj/internal/foundation"
	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
	"git.home.luguber.info/inful/buildproj/internal/logfields"
	"git.home.luguber.info/inful/buildproj/internal/observability"
	"git.home.luguber.info/inful/buildproj/internal/workspace"
)

// moduleNamePattern matches names usable both as a CMake target and as a
// Python extension module.
var moduleNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrNoInterpreter is returned when a descriptor must be written but neither
// an explicit nor a default interpreter is available.
var ErrNoInterpreter = dberrors.ConfigError("no python interpreter configured (--python-executable)").Build()

// Outcome reports what Ensure did.
type Outcome string

const (
	OutcomeWritten Outcome = "written"
	OutcomeSkipped Outcome = "skipped"
)

// Params are the substitution values for a descriptor.
type Params struct {
	Module string
	// Python overrides the writer's default interpreter when set.
	Python foundation.Option[string]
	// Source is the C++ file; DefaultSource when empty.
	Source string
}

// Writer persists descriptors into a workspace.
type Writer struct {
	ws            *workspace.Manager
	defaultPython string
	perm          os.FileMode
}

// NewWriter returns a Writer for ws. defaultPython is used whenever Params
// carries no explicit interpreter; it is resolved once by the caller.
func NewWriter(ws *workspace.Manager, defaultPython string) *Writer {
	return &Writer{ws: ws, defaultPython: defaultPython, perm: 0o644}
}

// ValidateModuleName rejects names that cannot be a build target.
func ValidateModuleName(name string) error {
	if name == "" {
		return dberrors.ValidationError("module name is required (--module-name)").Build()
	}
	if !moduleNamePattern.MatchString(name) {
		return dberrors.ValidationError(fmt.Sprintf("invalid module name %q: must be a C/Python identifier", name)).
			WithContext("module", name).
			Build()
	}
	return nil
}

// sourceSpecialChars end or escape an unquoted CMake argument.
const sourceSpecialChars = "\"();#\\"

// ValidateSource rejects source paths that would not survive as a single
// unquoted argument of pybind11_add_module. Empty selects DefaultSource.
func ValidateSource(source string) error {
	if strings.IndexFunc(source, unicode.IsSpace) < 0 && !strings.ContainsAny(source, sourceSpecialChars) {
		return nil
	}
	return dberrors.ValidationError(fmt.Sprintf("invalid cpp file %q: must not contain whitespace, quotes, parentheses, ';', '#' or '\\' (use '/' as separator)", source)).
		WithContext("cpp_file", source).
		Build()
}

// Interpreter returns the interpreter path p would render.
func (w *Writer) Interpreter(p Params) string {
	return p.Python.Filter(func(s string) bool { return s != "" }).UnwrapOr(w.defaultPython)
}

// Ensure writes the descriptor unless one already exists. An existing file is
// never read, validated or regenerated.
func (w *Writer) Ensure(ctx context.Context, p Params) (Outcome, error) {
	path := w.ws.DescriptorPath()

	exists, err := w.ws.DescriptorExists()
	if err != nil {
		return "", w.fail(ctx, path, "stat descriptor", err)
	}
	if exists {
		observability.InfoContext(ctx, "Descriptor already present, skipping generation", logfields.Path(path))
		return OutcomeSkipped, nil
	}

	if err := ValidateModuleName(p.Module); err != nil {
		return "", err
	}
	if err := ValidateSource(p.Source); err != nil {
		return "", err
	}

	python := w.Interpreter(p)
	if python == "" {
		return "", ErrNoInterpreter
	}

	content, err := Render(p.Module, python, p.Source)
	if err != nil {
		return "", dberrors.WrapError(err, dberrors.CategoryInternal, "render descriptor").Fatal().Build()
	}

	if err := writeAtomic(path, content, w.perm); err != nil {
		return "", w.fail(ctx, path, "write descriptor", err)
	}

	observability.InfoContext(ctx, "Wrote descriptor",
		logfields.Path(path),
		logfields.Python(python),
		logfields.Source(sourceOrDefault(p.Source)))
	return OutcomeWritten, nil
}

func (w *Writer) fail(ctx context.Context, path, op string, err error) error {
	observability.DebugContext(ctx, "Failed to create "+workspace.DescriptorName, logfields.Path(path), logfields.Error(err))
	return dberrors.WrapError(err, dberrors.CategoryFileSystem, op).
		Fatal().
		WithContext("path", path).
		Build()
}

func sourceOrDefault(s string) string {
	if s == "" {
		return DefaultSource
	}
	return s
}

// writeAtomic writes data to a temporary file next to path, syncs it and
// renames it into place. On failure the temporary file is removed and path
// is left as it was.
func writeAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temporary file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temporary file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temporary file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
