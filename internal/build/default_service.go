package build

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/buildproj/internal/descriptor"
	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
	"git.home.luguber.info/inful/buildproj/internal/logfields"
	"git.home.luguber.info/inful/buildproj/internal/metrics"
	"git.home.luguber.info/inful/buildproj/internal/observability"
	"git.home.luguber.info/inful/buildproj/internal/toolchain"
)

// WorkspaceResetter clears the build directory.
type WorkspaceResetter interface {
	Reset() error
}

// DescriptorEnsurer writes the descriptor when it is missing.
type DescriptorEnsurer interface {
	Ensure(ctx context.Context, p descriptor.Params) (descriptor.Outcome, error)
}

// Dispatcher invokes the builder of a toolchain.
type Dispatcher interface {
	Dispatch(ctx context.Context, t toolchain.Toolchain, module string) (toolchain.Result, error)
}

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	workspace   WorkspaceResetter
	descriptors DescriptorEnsurer
	dispatcher  Dispatcher
	recorder    metrics.Recorder
	journal     *journal
	newID       func() string
}

// NewService wires the three pipeline stages.
func NewService(ws WorkspaceResetter, descriptors DescriptorEnsurer, dispatcher Dispatcher) *DefaultService {
	return &DefaultService{
		workspace:   ws,
		descriptors: descriptors,
		dispatcher:  dispatcher,
		recorder:    metrics.NoopRecorder{},
		newID:       uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder. Nil restores the no-op recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// WithJournal enables the run journal.
func (s *DefaultService) WithJournal(store JournalStore) *DefaultService {
	s.journal = newJournal(store)
	return s
}

// WithIDGenerator replaces the run id source (for testing).
func (s *DefaultService) WithIDGenerator(gen func() string) *DefaultService {
	s.newID = gen
	return s
}

// Run executes the pipeline.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{
		BuildID:     s.newID(),
		Status:      BuildStatusRunning,
		State:       StateIdle,
		Transitions: []State{StateIdle},
		StartTime:   time.Now(),
	}
	opts := req.Options

	ctx = observability.WithBuildID(ctx, result.BuildID)
	ctx = observability.WithTarget(ctx, opts.ModuleName, opts.BuildMethod.String())
	observability.InfoContext(ctx, "Starting build", logfields.Command(req.Trigger), logfields.Source(sourceName(opts.CppFile)))
	s.journal.runStarted(ctx, result.BuildID, req)

	if err := validate(opts); err != nil {
		return s.finish(ctx, result, err)
	}

	err := s.runStage(ctx, result, StageResetWorkspace, StateResettingWorkspace, func(context.Context) (metrics.ResultLabel, error) {
		if err := s.workspace.Reset(); err != nil {
			return metrics.ResultFatal, err
		}
		return metrics.ResultSuccess, nil
	})
	if err != nil {
		return s.finish(ctx, result, err)
	}

	err = s.runStage(ctx, result, StageEnsureDescriptor, StateEnsuringDescriptor, func(ctx context.Context) (metrics.ResultLabel, error) {
		outcome, err := s.descriptors.Ensure(ctx, descriptor.Params{
			Module: opts.ModuleName,
			Python: opts.PythonExecutable,
			Source: opts.CppFile,
		})
		if err != nil {
			return metrics.ResultFatal, err
		}
		result.Descriptor = outcome
		if outcome == descriptor.OutcomeSkipped {
			return metrics.ResultSkipped, nil
		}
		return metrics.ResultSuccess, nil
	})
	if err != nil {
		return s.finish(ctx, result, err)
	}

	err = s.runStage(ctx, result, StageDispatch, StateDispatching, func(ctx context.Context) (metrics.ResultLabel, error) {
		start := time.Now()
		res, err := s.dispatcher.Dispatch(ctx, opts.BuildMethod, opts.ModuleName)
		s.recorder.ObserveToolchainDuration(opts.BuildMethod.String(), time.Since(start), err == nil)
		result.Builder = res
		if err != nil {
			return metrics.ResultFatal, err
		}
		return metrics.ResultSuccess, nil
	})
	return s.finish(ctx, result, err)
}

// validate rejects options before any side effect happens.
func validate(opts BuildOptions) error {
	if !opts.BuildMethod.Valid() {
		return toolchain.ArgumentError(string(opts.BuildMethod))
	}
	if err := descriptor.ValidateModuleName(opts.ModuleName); err != nil {
		return err
	}
	return descriptor.ValidateSource(opts.CppFile)
}

type stageFunc func(ctx context.Context) (metrics.ResultLabel, error)

// runStage enters state and runs fn. A canceled context stops the run before
// the stage is entered, so every entered stage leaves a StageResult.
func (s *DefaultService) runStage(ctx context.Context, result *Result, stage Stage, state State, fn stageFunc) error {
	if err := ctx.Err(); err != nil {
		return dberrors.WrapError(err, dberrors.CategoryRuntime, "build canceled").
			WithContext("stage", string(stage)).
			Build()
	}
	if err := result.transition(state); err != nil {
		return err
	}

	ctx = observability.WithStage(ctx, string(stage))
	observability.DebugContext(ctx, "Stage started")

	start := time.Now()
	label, err := fn(ctx)
	elapsed := time.Since(start)
	if err != nil && isCanceled(ctx, err) {
		label = metrics.ResultCanceled
	}

	result.Stages = append(result.Stages, StageResult{Stage: stage, Outcome: string(label), Duration: elapsed, Err: err})
	s.recorder.ObserveStageDuration(string(stage), elapsed)
	s.recorder.IncStageResult(string(stage), label)
	s.journal.stageCompleted(ctx, result.BuildID, stage, label, elapsed, err)

	if err != nil {
		observability.DebugContext(ctx, "Stage failed", logfields.Status(string(label)), logfields.Error(err))
		return err
	}
	observability.DebugContext(ctx, "Stage completed",
		logfields.Status(string(label)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return nil
}

func (s *DefaultService) finish(ctx context.Context, result *Result, runErr error) (*Result, error) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	next := StateSucceeded
	if runErr != nil {
		next = StateFailed
	}
	if err := result.transition(next); err != nil {
		runErr = stderrors.Join(runErr, err)
		result.State = StateFailed
	}

	var outcome metrics.BuildOutcomeLabel
	switch {
	case runErr == nil:
		result.Status = BuildStatusSuccess
		outcome = metrics.BuildOutcomeSuccess
	case isCanceled(ctx, runErr):
		result.Status = BuildStatusCancelled
		outcome = metrics.BuildOutcomeCanceled
	default:
		result.Status = BuildStatusFailed
		outcome = metrics.BuildOutcomeFailed
	}
	s.recorder.IncBuildOutcome(outcome)
	s.recorder.ObserveBuildDuration(result.Duration)
	s.journal.runFinished(ctx, result, runErr)

	status := logfields.Status(string(result.Status))
	duration := logfields.DurationMS(float64(result.Duration.Microseconds()) / 1000)
	if runErr != nil {
		observability.DebugContext(ctx, "Build finished with errors", status, duration)
		return result, runErr
	}
	observability.InfoContext(ctx, "Build finished", status, duration)
	return result, nil
}

func isCanceled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func sourceName(s string) string {
	if s == "" {
		return descriptor.DefaultSource
	}
	return s
}
