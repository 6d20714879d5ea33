package eventstore

import (
	"context"
	"time"
)

// StageSummary is a stage as reconstructed from the journal.
type StageSummary struct {
	Stage    string
	Outcome  string
	Duration time.Duration
	Error    string
}

// RunSummary is the read model of a single run.
type RunSummary struct {
	BuildID    string
	Command    string
	Module     string
	Toolchain  string
	Source     string
	Status     string
	FinalState string
	ExitCode   int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Stages     []StageSummary
}

// Finished reports whether a RunFinished event was seen.
func (r RunSummary) Finished() bool { return !r.FinishedAt.IsZero() }

// Summarize folds the events of one run into a RunSummary. Events of other
// runs and unknown types are ignored.
func Summarize(buildID string, events []Event) (RunSummary, error) {
	summary := RunSummary{BuildID: buildID, Status: "running"}
	for _, e := range events {
		if e.BuildID != buildID {
			continue
		}
		switch e.Type {
		case EventRunStarted:
			var p RunStartedPayload
			if err := e.Decode(&p); err != nil {
				return summary, err
			}
			summary.Command = p.Command
			summary.Module = p.Module
			summary.Toolchain = p.Toolchain
			summary.Source = p.Source
			summary.StartedAt = e.Timestamp
		case EventStageCompleted:
			var p StageCompletedPayload
			if err := e.Decode(&p); err != nil {
				return summary, err
			}
			summary.Stages = append(summary.Stages, StageSummary{
				Stage:    p.Stage,
				Outcome:  p.Outcome,
				Duration: time.Duration(p.DurationMS) * time.Millisecond,
				Error:    p.Error,
			})
		case EventRunFinished:
			var p RunFinishedPayload
			if err := e.Decode(&p); err != nil {
				return summary, err
			}
			summary.Status = p.Status
			summary.FinalState = p.FinalState
			summary.ExitCode = p.ExitCode
			summary.Error = p.Error
			summary.FinishedAt = e.Timestamp
			summary.Duration = time.Duration(p.DurationMS) * time.Millisecond
		}
	}
	return summary, nil
}

// History summarizes the most recent runs, newest first.
func History(ctx context.Context, store Store, limit int) ([]RunSummary, error) {
	ids, err := store.RecentBuildIDs(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]RunSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := Run(ctx, store, id)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

// Run summarizes one run by id.
func Run(ctx context.Context, store Store, buildID string) (RunSummary, error) {
	events, err := store.ByBuildID(ctx, buildID)
	if err != nil {
		return RunSummary{}, err
	}
	if len(events) == 0 {
		return RunSummary{}, notFoundError(buildID)
	}
	return Summarize(buildID, events)
}
