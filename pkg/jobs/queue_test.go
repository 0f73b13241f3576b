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
	"go.uber.org/zap"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make([]string, 0)
	done := make(chan struct{}, 2)

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		seen = append(seen, job.ID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4, Logger: zap.NewNop()})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.TryEnqueue(Job{ID: "a"}))
	require.NoError(t, q.Enqueue(Job{ID: "b"}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("job not processed")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b"}, seen)
}

func TestTryEnqueueReportsFullBuffer(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := NewQueue("full", func(ctx context.Context, job Job) error {
		started <- struct{}{}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(release)
		q.Stop()
	}()

	require.NoError(t, q.TryEnqueue(Job{ID: "busy"}))
	<-started
	require.NoError(t, q.TryEnqueue(Job{ID: "buffered"}))

	err := q.TryEnqueue(Job{ID: "overflow"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueueFull))
	assert.Equal(t, 1, q.Pending())
}

func TestTryEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.TryEnqueue(Job{ID: "x"}))
}

func TestQueueRetriesThenDrops(t *testing.T) {
	var attempts int32
	dropped := make(chan Job, 1)

	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("store down")
	}, QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
		OnDrop:     func(job Job, err error) { dropped <- job },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.TryEnqueue(Job{ID: "flaky"}))

	select {
	case job := <-dropped:
		assert.Equal(t, "flaky", job.ID)
		assert.Equal(t, 3, job.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("job was never dropped")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestStopFinishesBufferedJobs(t *testing.T) {
	var processed int32
	q := NewQueue("drain", func(ctx context.Context, job Job) error {
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&processed, 1)
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})
	q.Start(context.Background())

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.TryEnqueue(Job{ID: id}))
	}
	q.Stop()

	assert.Equal(t, int32(3), atomic.LoadInt32(&processed))
	assert.Equal(t, 0, q.Pending())

	err := q.TryEnqueue(Job{ID: "late"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueueStopped))
}

func TestStopHandsLeftoversToOnDrop(t *testing.T) {
	var mu sync.Mutex
	dropped := map[string]error{}
	started := make(chan struct{}, 1)

	q := NewQueue("stuck", func(ctx context.Context, job Job) error {
		started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	}, QueueConfig{
		Workers:      1,
		BufferSize:   4,
		DrainTimeout: 20 * time.Millisecond,
		OnDrop: func(job Job, err error) {
			mu.Lock()
			dropped[job.ID] = err
			mu.Unlock()
		},
	})
	q.Start(context.Background())

	require.NoError(t, q.TryEnqueue(Job{ID: "running"}))
	<-started
	require.NoError(t, q.TryEnqueue(Job{ID: "queued-1"}))
	require.NoError(t, q.TryEnqueue(Job{ID: "queued-2"}))

	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, dropped, 3)
	assert.ErrorIs(t, dropped["running"], context.Canceled)
	assert.ErrorIs(t, dropped["queued-1"], ErrQueueStopped)
	assert.ErrorIs(t, dropped["queued-2"], ErrQueueStopped)
}
