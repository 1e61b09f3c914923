package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueueProcessesJobs(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
		done = make(chan struct{}, 3)
	)
	q := NewQueue("calendar-export", func(_ context.Context, job Job) error {
		mu.Lock()
		seen = append(seen, job.ID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job{ID: id, Type: "ics"}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b", "c"}, seen)
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	var attempts int32
	gaveUp := make(chan Job, 1)

	q := NewQueue("calendar-export", func(context.Context, Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("render failed")
	}, QueueConfig{
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
		OnGiveUp:   func(j Job, _ error) { gaveUp <- j },
	})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))

	select {
	case j := <-gaveUp:
		assert.Equal(t, 3, j.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("job never gave up")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestQueueRecoversFromPanics(t *testing.T) {
	gaveUp := make(chan error, 1)
	q := NewQueue("calendar-export", func(context.Context, Job) error {
		panic("boom")
	}, QueueConfig{OnGiveUp: func(_ Job, err error) { gaveUp <- err }})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))
	select {
	case err := <-gaveUp:
		assert.Contains(t, err.Error(), "boom")
	case <-time.After(2 * time.Second):
		t.Fatal("panic was not reported")
	}
}

func TestEnqueueRequiresRunningQueue(t *testing.T) {
	q := NewQueue("calendar-export", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.Enqueue(Job{ID: "early"}), ErrQueueNotRunning)

	q.Start(context.Background())
	q.Stop()
	assert.ErrorIs(t, q.Enqueue(Job{ID: "late"}), ErrQueueNotRunning)
}

func TestStopWaitsForPendingRetries(t *testing.T) {
	failed := make(chan struct{}, 1)
	q := NewQueue("calendar-export", func(context.Context, Job) error {
		select {
		case failed <- struct{}{}:
		default:
		}
		return errors.New("fail")
	}, QueueConfig{MaxRetries: 5, RetryDelay: time.Hour})

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))
	<-failed
	q.Stop()
}
