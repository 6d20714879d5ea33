package descriptor

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// DefaultInterpreterCandidates are looked up on PATH, in order, when no
// interpreter is configured.
var DefaultInterpreterCandidates = []string{"python3", "python"}

// LookPathFunc resolves an executable name to a path.
type LookPathFunc func(file string) (string, error)

// ResolveInterpreter finds the default Python interpreter: the first
// candidate found on PATH, made absolute, with symlinks resolved and
// separators normalised to forward slashes.
func ResolveInterpreter(lookPath LookPathFunc, candidates ...string) (string, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if len(candidates) == 0 {
		candidates = DefaultInterpreterCandidates
	}

	var lastErr error
	for _, name := range candidates {
		p, err := lookPath(name)
		if err != nil {
			lastErr = err
			continue
		}
		return NormalizeInterpreterPath(p)
	}
	return "", fmt.Errorf("no python interpreter found on PATH (tried %v): %w", candidates, lastErr)
}

// NormalizeInterpreterPath returns the absolute, symlink-free, forward-slash
// form of p. Paths that cannot be resolved on disk are kept absolute.
func NormalizeInterpreterPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve interpreter path %q: %w", p, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return filepath.ToSlash(abs), nil
}
