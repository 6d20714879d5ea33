package toolchain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// CommandResult is the outcome of one external command.
type CommandResult struct {
	ExitCode int
	Output   []byte
}

// CommandRunner executes an external command in dir and waits for it.
// A non-zero exit is reported through CommandResult.ExitCode with a nil
// error; err is reserved for commands that could not be started or waited on.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (CommandResult, error)
}

// ExecRunner runs commands with os/exec, streaming combined output to Output
// while capturing it.
type ExecRunner struct {
	Output io.Writer
}

// Run implements CommandRunner.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (CommandResult, error) {
	var captured bytes.Buffer
	var w io.Writer = &captured
	if r.Output != nil {
		w = io.MultiWriter(&captured, r.Output)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	// Same writer for both streams keeps output ordered and the buffer single-writer.
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	res := CommandResult{Output: captured.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	res.ExitCode = -1
	return res, err
}
