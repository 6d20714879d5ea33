package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/buildproj/internal/eventstore"
	"git.home.luguber.info/inful/buildproj/internal/logfields"
	"git.home.luguber.info/inful/buildproj/internal/metrics"
	"git.home.luguber.info/inful/buildproj/internal/observability"
)

// JournalStore is the part of eventstore.Store the service writes to.
type JournalStore interface {
	Append(ctx context.Context, event eventstore.Event) (eventstore.Event, error)
}

// journal records run events. A nil journal records nothing, and append
// failures are logged without failing the run.
type journal struct {
	store JournalStore
}

func newJournal(store JournalStore) *journal {
	if store == nil {
		return nil
	}
	return &journal{store: store}
}

func (j *journal) runStarted(ctx context.Context, buildID string, req Request) {
	if j == nil {
		return
	}
	j.append(ctx, func() (eventstore.Event, error) {
		return eventstore.NewRunStarted(buildID, eventstore.RunStartedPayload{
			Module:    req.Options.ModuleName,
			Toolchain: req.Options.BuildMethod.String(),
			Source:    sourceName(req.Options.CppFile),
			Python:    req.Options.PythonExecutable.UnwrapOr(""),
			Command:   req.Trigger,
		})
	})
}

func (j *journal) stageCompleted(ctx context.Context, buildID string, stage Stage, label metrics.ResultLabel, elapsed time.Duration, err error) {
	if j == nil {
		return
	}
	j.append(ctx, func() (eventstore.Event, error) {
		return eventstore.NewStageCompleted(buildID, eventstore.StageCompletedPayload{
			Stage:      string(stage),
			Outcome:    string(label),
			DurationMS: elapsed.Milliseconds(),
			Error:      errorText(err),
		})
	})
}

func (j *journal) runFinished(ctx context.Context, result *Result, err error) {
	if j == nil {
		return
	}
	j.append(ctx, func() (eventstore.Event, error) {
		return eventstore.NewRunFinished(result.BuildID, eventstore.RunFinishedPayload{
			Status:     string(result.Status),
			FinalState: string(result.State),
			DurationMS: result.Duration.Milliseconds(),
			ExitCode:   result.Builder.ExitCode,
			Error:      errorText(err),
		})
	})
}

func (j *journal) append(ctx context.Context, build func() (eventstore.Event, error)) {
	event, err := build()
	if err == nil {
		// The run context may already be canceled; the journal entry is
		// still wanted.
		_, err = j.store.Append(context.WithoutCancel(ctx), event)
	}
	if err != nil {
		observability.WarnContext(ctx, "Failed to record run event", logfields.Error(err))
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
