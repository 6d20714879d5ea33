package toolchain

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
	"git.home.luguber.info/inful/buildproj/internal/observability"
)

type recordingBuilder struct {
	calls []string
	err   error
}

func (r *recordingBuilder) Invoke(_ context.Context, module string) (Result, error) {
	r.calls = append(r.calls, module)
	return Result{Output: []byte("ok")}, r.err
}

func TestDispatcher_RoutesToSelectedBuilder(t *testing.T) {
	msvc, msys2 := &recordingBuilder{}, &recordingBuilder{}
	d := NewDispatcher(msvc, msys2)

	_, err := d.Dispatch(context.Background(), MSVC, "mymod")
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), MSYS2, "other")
	require.NoError(t, err)

	assert.Equal(t, []string{"mymod"}, msvc.calls)
	assert.Equal(t, []string{"other"}, msys2.calls)
}

func TestDispatcher_UnknownToolchainHasNoSideEffects(t *testing.T) {
	msvc, msys2 := &recordingBuilder{}, &recordingBuilder{}
	d := NewDispatcher(msvc, msys2)

	_, err := d.Dispatch(context.Background(), Toolchain("invalid"), "mymod")
	require.Error(t, err)
	assert.True(t, dberrors.HasCategory(err, dberrors.CategoryValidation))
	assert.Contains(t, err.Error(), "msvc")
	assert.Contains(t, err.Error(), "msys2")
	assert.Empty(t, msvc.calls)
	assert.Empty(t, msys2.calls)
}

func TestDispatcher_PropagatesBuilderFailure(t *testing.T) {
	failure := dberrors.BuildError("cmake compile failed").Build()
	d := NewDispatcher(&recordingBuilder{err: failure}, &recordingBuilder{})

	_, err := d.Dispatch(context.Background(), MSVC, "mymod")
	require.ErrorIs(t, err, failure)
}

func TestDispatcher_MissingBuilder(t *testing.T) {
	d := NewDispatcher(nil, BuilderFunc(func(context.Context, string) (Result, error) {
		return Result{}, errors.New("unreachable")
	}))

	_, err := d.Resolve(MSVC)
	require.Error(t, err)
	assert.True(t, dberrors.HasCategory(err, dberrors.CategoryInternal))
}

func TestDispatcher_LogsTargetOnce(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	defer slog.SetDefault(prev)

	d := NewDispatcher(&recordingBuilder{}, &recordingBuilder{})
	ctx := observability.WithTarget(context.Background(), "mymod", "msvc")
	_, err := d.Dispatch(ctx, MSVC, "mymod")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(logs.String(), "module=mymod"), logs.String())
	assert.Equal(t, 1, strings.Count(logs.String(), "toolchain=msvc"), logs.String())
}
