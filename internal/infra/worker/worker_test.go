package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) Run(context.Context, time.Time) (int, error) {
	r.calls.Add(1)
	return 1, r.err
}

func TestRemarketingWorker_RunsImmediatelyAndOnTicks(t *testing.T) {
	runner := &countingRunner{}
	w := NewRemarketingWorker(runner, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestRemarketingWorker_SurvivesErrors(t *testing.T) {
	runner := &countingRunner{err: errors.New("db down")}
	w := NewRemarketingWorker(runner, time.Hour, nil)
	w.tick(context.Background())
	w.tick(context.Background())
	assert.EqualValues(t, 2, runner.calls.Load())
}

func TestNextMidnight(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)

	got := nextMidnight(time.Date(2024, 3, 10, 23, 59, 0, 0, loc), loc)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, loc), got)

	got = nextMidnight(time.Date(2024, 3, 11, 0, 0, 0, 0, loc), loc)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, loc), got)

	// 02:00 UTC is still the previous day in BRT
	got = nextMidnight(time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, loc), got)
}

type resetterFunc func(ctx context.Context) (int64, error)

func (f resetterFunc) ResetDailyCounters(ctx context.Context) (int64, error) { return f(ctx) }

func TestDailyResetWorker_Reset(t *testing.T) {
	called := false
	w := NewDailyResetWorker(resetterFunc(func(context.Context) (int64, error) {
		called = true
		return 3, nil
	}), time.UTC, nil)
	w.reset(context.Background())
	assert.True(t, called)
}
