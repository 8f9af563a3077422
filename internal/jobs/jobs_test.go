package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(subject string, data interface{}) error {
	return m.Called(subject, data).Error(0)
}

func (m *mockPublisher) Close() { m.Called() }

func newManager(t *testing.T, opts Options) (*Manager, *mockPublisher) {
	t.Helper()
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	m := New(opts, pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return m, pub
}

func waitStatus(t *testing.T, m *Manager, id uuid.UUID, want Status) Job {
	t.Helper()
	var j Job
	require.Eventually(t, func() bool {
		var err error
		j, err = m.Get(id)
		return err == nil && j.Status == want
	}, 2*time.Second, 5*time.Millisecond, "job never reached %s", want)
	return j
}

func blockUntilDone(ctx context.Context, _ ProgressFunc) (interface{}, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestJobCompletes(t *testing.T) {
	m, pub := newManager(t, Options{Workers: 2})
	m.Start(context.Background())
	defer m.Stop()

	job, err := m.Submit("sweep", func(ctx context.Context, progress ProgressFunc) (interface{}, error) {
		for i := 1; i <= 4; i++ {
			progress(i, 4)
		}
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, job.Status)
	assert.Equal(t, "sweep", job.Kind)

	got := waitStatus(t, m, job.ID, StatusCompleted)
	assert.Equal(t, "done", got.Result)
	assert.Equal(t, Progress{Done: 4, Total: 4}, got.Progress)
	require.NotNil(t, got.StartedAt)
	require.NotNil(t, got.FinishedAt)
	assert.Empty(t, got.Error)

	pub.AssertCalled(t, "Publish", "mcdm.job."+job.ID.String()+".queued", mock.Anything)
	pub.AssertCalled(t, "Publish", "mcdm.job."+job.ID.String()+".completed", mock.Anything)
	pub.AssertCalled(t, "Publish", "mcdm.job."+job.ID.String()+".progress", mock.Anything)
}

func TestJobFails(t *testing.T) {
	m, pub := newManager(t, Options{})
	m.Start(context.Background())
	defer m.Stop()

	job, err := m.Submit("sweep", func(context.Context, ProgressFunc) (interface{}, error) {
		return "partial", errors.New("boom")
	})
	require.NoError(t, err)

	got := waitStatus(t, m, job.ID, StatusFailed)
	assert.Equal(t, "boom", got.Error)
	assert.Nil(t, got.Result)
	pub.AssertCalled(t, "Publish", mock.MatchedBy(func(s string) bool {
		return strings.HasSuffix(s, ".failed")
	}), mock.Anything)
}

func TestCancelRunningJob(t *testing.T) {
	m, _ := newManager(t, Options{})
	m.Start(context.Background())
	defer m.Stop()

	job, err := m.Submit("sweep", blockUntilDone)
	require.NoError(t, err)
	waitStatus(t, m, job.ID, StatusRunning)

	_, err = m.Cancel(job.ID)
	require.NoError(t, err)
	got := waitStatus(t, m, job.ID, StatusCancelled)
	assert.Contains(t, got.Error, "cancelled")
}

func TestCancelQueuedJob(t *testing.T) {
	m, _ := newManager(t, Options{Workers: 1})

	job, err := m.Submit("sweep", func(context.Context, ProgressFunc) (interface{}, error) {
		t.Error("cancelled job must not run")
		return nil, nil
	})
	require.NoError(t, err)

	got, err := m.Cancel(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	m.Start(context.Background())
	defer m.Stop()
	done, err := m.Submit("marker", func(context.Context, ProgressFunc) (interface{}, error) { return nil, nil })
	require.NoError(t, err)
	waitStatus(t, m, done.ID, StatusCompleted)

	got, err = m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestCancelFinishedJobIsNoop(t *testing.T) {
	m, _ := newManager(t, Options{})
	m.Start(context.Background())
	defer m.Stop()

	job, err := m.Submit("sweep", func(context.Context, ProgressFunc) (interface{}, error) { return 1, nil })
	require.NoError(t, err)
	waitStatus(t, m, job.ID, StatusCompleted)

	got, err := m.Cancel(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestUnknownJob(t *testing.T) {
	m, _ := newManager(t, Options{})
	_, err := m.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Cancel(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueueFull(t *testing.T) {
	m, _ := newManager(t, Options{QueueSize: 1})

	_, err := m.Submit("sweep", blockUntilDone)
	require.NoError(t, err)
	_, err = m.Submit("sweep", blockUntilDone)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestRunningJobTimesOut(t *testing.T) {
	m, _ := newManager(t, Options{Timeout: 30 * time.Millisecond, CheckInterval: 5 * time.Millisecond})
	m.Start(context.Background())
	defer m.Stop()

	job, err := m.Submit("sweep", blockUntilDone)
	require.NoError(t, err)

	got := waitStatus(t, m, job.ID, StatusFailed)
	assert.Equal(t, ErrTimeout.Error(), got.Error)
}

func TestQueuedJobTimesOut(t *testing.T) {
	m, _ := newManager(t, Options{Workers: 1, Timeout: time.Millisecond})

	job, err := m.Submit("sweep", blockUntilDone)
	require.NoError(t, err)

	m.checkDeadlines(time.Now().Add(time.Second))
	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, ErrTimeout.Error(), got.Error)
}

func TestFinishedJobsExpire(t *testing.T) {
	m, _ := newManager(t, Options{Retention: time.Minute})
	m.Start(context.Background())
	defer m.Stop()

	job, err := m.Submit("sweep", func(context.Context, ProgressFunc) (interface{}, error) { return nil, nil })
	require.NoError(t, err)
	waitStatus(t, m, job.ID, StatusCompleted)

	m.checkDeadlines(time.Now())
	_, err = m.Get(job.ID)
	require.NoError(t, err, "still within retention")

	m.checkDeadlines(time.Now().Add(2 * time.Minute))
	_, err = m.Get(job.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStopCancelsRunningJobs(t *testing.T) {
	m, _ := newManager(t, Options{})
	m.Start(context.Background())

	job, err := m.Submit("sweep", blockUntilDone)
	require.NoError(t, err)
	waitStatus(t, m, job.ID, StatusRunning)

	m.Stop()
	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	_, err = m.Submit("sweep", blockUntilDone)
	assert.ErrorIs(t, err, ErrStopped)
}

func TestListNewestFirst(t *testing.T) {
	m, _ := newManager(t, Options{})
	first, err := m.Submit("a", blockUntilDone)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := m.Submit("b", blockUntilDone)
	require.NoError(t, err)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
