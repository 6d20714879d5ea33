package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildproj/internal/foundation/errors"
)

func appendRun(t *testing.T, store Store, buildID, status string) {
	t.Helper()
	ctx := t.Context()

	started, err := NewRunStarted(buildID, RunStartedPayload{Module: "mymod", Toolchain: "msys2", Source: "main.cpp", Command: "build"})
	require.NoError(t, err)
	stage, err := NewStageCompleted(buildID, StageCompletedPayload{Stage: "reset_workspace", Outcome: "success", DurationMS: 3})
	require.NoError(t, err)
	finished, err := NewRunFinished(buildID, RunFinishedPayload{Status: status, FinalState: "succeeded", DurationMS: 1500})
	require.NoError(t, err)

	for _, e := range []Event{started, stage, finished} {
		_, err := store.Append(ctx, e)
		require.NoError(t, err)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	events := []Event{
		{BuildID: "r1", Type: EventRunStarted, Timestamp: now, Payload: []byte(`{"module":"mymod","toolchain":"msvc","source":"main.cpp","command":"build"}`)},
		{BuildID: "other", Type: EventRunFinished, Payload: []byte(`{"status":"failed"}`)},
		{BuildID: "r1", Type: EventStageCompleted, Payload: []byte(`{"stage":"dispatch","outcome":"fatal","duration_ms":20,"error":"boom"}`)},
		{BuildID: "r1", Type: "SomethingElse", Payload: []byte(`garbage`)},
	}

	summary, err := Summarize("r1", events)
	require.NoError(t, err)
	assert.Equal(t, "mymod", summary.Module)
	assert.Equal(t, "msvc", summary.Toolchain)
	assert.Equal(t, "running", summary.Status)
	assert.False(t, summary.Finished())
	require.Len(t, summary.Stages, 1)
	assert.Equal(t, 20*time.Millisecond, summary.Stages[0].Duration)
	assert.Equal(t, "boom", summary.Stages[0].Error)
}

func TestHistoryNewestFirst(t *testing.T) {
	store := newTestStore(t)
	appendRun(t, store, "older", "success")
	appendRun(t, store, "newer", "failed")

	runs, err := History(t.Context(), store, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "newer", runs[0].BuildID)
	assert.Equal(t, "failed", runs[0].Status)
	assert.True(t, runs[0].Finished())
	assert.Equal(t, 1500*time.Millisecond, runs[0].Duration)
	assert.Equal(t, "older", runs[1].BuildID)
}

func TestRunUnknownID(t *testing.T) {
	store := newTestStore(t)
	_, err := Run(t.Context(), store, "nope")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}
