package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
	"git.home.luguber.info/inful/buildproj/internal/logfields"
)

const (
	// BuildDirName is the conventional build output directory.
	BuildDirName = "build"
	// DescriptorName is the CMake project descriptor kept in the root.
	DescriptorName = "CMakeLists.txt"
)

// Manager handles workspace operations rooted at a fixed directory.
type Manager struct {
	root string
}

// NewManager creates a workspace manager rooted at root. An empty root means
// the current working directory.
func NewManager(root string) *Manager {
	if root == "" {
		root = "."
	}
	return &Manager{root: root}
}

// Root returns the workspace root directory.
func (m *Manager) Root() string {
	return m.root
}

// BuildPath returns the path to the build output directory.
func (m *Manager) BuildPath() string {
	return filepath.Join(m.root, BuildDirName)
}

// DescriptorPath returns the path to CMakeLists.txt.
func (m *Manager) DescriptorPath() string {
	return filepath.Join(m.root, DescriptorName)
}

// Reset removes the build output directory and everything under it.
// A missing directory is not an error. Removal is irreversible, so Reset
// must only be called before a build starts.
func (m *Manager) Reset() error {
	buildPath := m.BuildPath()

	if _, err := os.Lstat(buildPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("No stale build directory", logfields.Path(buildPath))
			return nil
		}
		return resetError(buildPath, err)
	}

	if err := os.RemoveAll(buildPath); err != nil {
		return resetError(buildPath, err)
	}

	slog.Info("Removed stale build directory", logfields.Path(buildPath))
	return nil
}

func resetError(path string, err error) error {
	slog.Error("Failed to reset workspace", logfields.Path(path), logfields.Error(err))
	return dberrors.WrapError(fmt.Errorf("remove %s: %w", path, err), dberrors.CategoryFileSystem, "workspace reset failed").
		Fatal().
		WithContext("path", path).
		Build()
}

// DescriptorExists reports whether CMakeLists.txt is present in the root.
func (m *Manager) DescriptorExists() (bool, error) {
	_, err := os.Lstat(m.DescriptorPath())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
