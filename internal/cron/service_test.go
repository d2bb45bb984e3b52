package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/metrics"
	pkgredis "github.com/HarshArya1405/typescriptDemo/pkg/redis"
)

type fakeLocker struct {
	held     bool
	err      error
	released int
	keys     []string
}

func (f *fakeLocker) Acquire(_ context.Context, key string) (func(context.Context) error, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	if f.held {
		return nil, pkgredis.ErrLockHeld
	}
	f.held = true
	return func(context.Context) error {
		f.held = false
		f.released++
		return nil
	}, nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func newTestService(t *testing.T, lock *fakeLocker, m *metrics.JobMetrics, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:  logger.Nop(),
		Jobs:    jobs,
		Locker:  lock,
		LockKey: "valu:cron:test",
		Metrics: m,
	})
	require.NoError(t, err)
	return svc
}

func TestRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	lock := &fakeLocker{}
	ok := &testJob{name: "ok"}
	failing := &testJob{name: "failing", err: errors.New("boom")}
	svc := newTestService(t, lock, metrics.NewJobMetrics(reg), ok, nil, failing)

	require.NoError(t, svc.runCycle(context.Background()))

	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, 1, lock.released)
	assert.Equal(t, []string{"valu:cron:test"}, lock.keys)
	count, err := testutil.GatherAndCount(reg, "scheduled_job_success_total", "scheduled_job_failure_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	lock := &fakeLocker{held: true}
	job := &testJob{name: "tags.sync"}
	svc := newTestService(t, lock, nil, job)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Zero(t, job.runs)
	assert.Zero(t, lock.released)
}

func TestRunCycleSurfacesLockErrors(t *testing.T) {
	lock := &fakeLocker{err: errors.New("redis down")}
	job := &testJob{name: "tags.sync"}
	svc := newTestService(t, lock, nil, job)

	err := svc.runCycle(context.Background())
	require.Error(t, err)
	assert.Zero(t, job.runs)
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "tags.sync"}
	svc := newTestService(t, &fakeLocker{}, nil, job)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := svc.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewServiceValidatesParams(t *testing.T) {
	_, err := NewService(ServiceParams{Locker: &fakeLocker{}, LockKey: "k"})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop(), LockKey: "k"})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop(), Locker: &fakeLocker{}})
	assert.Error(t, err)
}
