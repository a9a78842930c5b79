package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls int
	err   error
}

func (f *fakeRunner) RunLifecycle(ctx context.Context, now time.Time) (int, int, error) {
	f.calls++
	return 1, 2, f.err
}

type fakeSweeper struct{ n int }

func (f *fakeSweeper) SweepAbandoned(ctx context.Context) (int, error) { return f.n, nil }

func TestFlashSaleLifecycleJob(t *testing.T) {
	runner := &fakeRunner{}
	job := FlashSaleLifecycle(runner, logger.NewNop())

	require.NoError(t, job(context.Background()))
	assert.Equal(t, 1, runner.calls)

	runner.err = errors.New("db down")
	assert.EqualError(t, job(context.Background()), "db down")
}

func TestAbandonedCartSweepJob(t *testing.T) {
	job := AbandonedCartSweep(&fakeSweeper{n: 3}, logger.NewNop())
	assert.NoError(t, job(context.Background()))
}

func TestRegisterSchedulesBothJobs(t *testing.T) {
	s := NewScheduler(logger.NewNop(), time.Second)
	require.NoError(t, Register(s, &fakeRunner{}, &fakeSweeper{}, logger.NewNop()))
	assert.Len(t, s.cron.Entries(), 2)
}

func TestAddRejectsBadSpec(t *testing.T) {
	s := NewScheduler(logger.NewNop(), time.Second)
	err := s.Add("not a spec", "broken", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestRunAppliesTimeout(t *testing.T) {
	s := NewScheduler(logger.NewNop(), 10*time.Millisecond)
	var deadline bool
	s.run("probe", func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	})
	assert.True(t, deadline)
}

func TestStopWithoutStart(t *testing.T) {
	s := NewScheduler(logger.NewNop(), time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
