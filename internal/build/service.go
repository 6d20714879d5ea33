package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/buildproj/internal/descriptor"
	"git.home.luguber.info/inful/buildproj/internal/foundation"
	"git.home.luguber.info/inful/buildproj/internal/toolchain"
)

// Service executes a build run.
type Service interface {
	// Run validates the request and then resets the workspace, ensures the
	// descriptor and dispatches to the toolchain, in that order. The Result
	// is returned even when err is non-nil.
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains all inputs of a run.
type Request struct {
	Options BuildOptions

	// Trigger names what started the run ("build", "watch"). It is only
	// recorded.
	Trigger string
}

// BuildOptions are the validated user choices for a run.
type BuildOptions struct {
	BuildMethod toolchain.Toolchain

	// CppFile is the source compiled into the module; main.cpp when empty.
	CppFile string

	// PythonExecutable overrides the default interpreter.
	PythonExecutable foundation.Option[string]

	// ModuleName is the extension module and CMake target name. Required.
	ModuleName string
}

// Stage identifies one step of the pipeline.
type Stage string

const (
	StageResetWorkspace   Stage = "reset_workspace"
	StageEnsureDescriptor Stage = "ensure_descriptor"
	StageDispatch         Stage = "dispatch"
)

// StageResult records the outcome of a single stage.
type StageResult struct {
	Stage    Stage
	Outcome  string
	Duration time.Duration
	Err      error
}

// Result contains the outcome of a run.
type Result struct {
	BuildID string
	Status  BuildStatus

	// State is the final pipeline state; Transitions lists every state the
	// run passed through, starting with StateIdle.
	State       State
	Transitions []State

	Stages     []StageResult
	Descriptor descriptor.Outcome
	Builder    toolchain.Result

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// BuildStatus represents the outcome of a run.
type BuildStatus string

const (
	BuildStatusRunning   BuildStatus = "running"
	BuildStatusSuccess   BuildStatus = "success"
	BuildStatusFailed    BuildStatus = "failed"
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the run completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
