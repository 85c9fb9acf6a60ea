package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls atomic.Int32
	n     int
	err   error
	seen  time.Time
}

func (f *fakeExpirer) ExpireFeatured(_ context.Context, now time.Time) (int, error) {
	f.calls.Add(1)
	f.seen = now
	return f.n, f.err
}

func TestRunOnce(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	exp := &fakeExpirer{n: 2}
	s := New(exp, "@every 1h")
	s.now = func() time.Time { return fixed }

	assert.Equal(t, 2, s.RunOnce(context.Background()))
	assert.Equal(t, fixed, exp.seen)
}

func TestRunOnceSwallowsErrors(t *testing.T) {
	exp := &fakeExpirer{n: 5, err: errors.New("db down")}
	s := New(exp, "@every 1h")

	assert.Zero(t, s.RunOnce(context.Background()))
	assert.Equal(t, int32(1), exp.calls.Load())
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(&fakeExpirer{}, "not a spec")
	assert.Error(t, s.Start(context.Background()))
}

func TestStartRunsJob(t *testing.T) {
	exp := &fakeExpirer{}
	s := New(exp, "@every 1s")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return exp.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
