package toolchain

import (
	"context"
	"time"
)

// Result is what a Builder reports after the toolchain process exits.
type Result struct {
	// ExitCode of the last command run; zero on success.
	ExitCode int
	// Output is the combined stdout/stderr captured from every command.
	Output []byte
	// Duration is the wall time spent in the toolchain.
	Duration time.Duration
}

// Builder compiles the named module. Invoke blocks until the toolchain
// finishes and returns a build-category error on failure.
type Builder interface {
	Invoke(ctx context.Context, module string) (Result, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(ctx context.Context, module string) (Result, error)

// Invoke calls f(ctx, module).
func (f BuilderFunc) Invoke(ctx context.Context, module string) (Result, error) {
	return f(ctx, module)
}
