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
)

func TestQueueProcessesAndDrains(t *testing.T) {
	var handled int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&handled, 1)
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "j", Type: "push"}))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Drain(ctx))
	assert.Equal(t, int32(5), atomic.LoadInt32(&handled))
}

func TestQueueRetriesThenReportsOutcome(t *testing.T) {
	var attempts int32
	var mu sync.Mutex
	var outcomes []error
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond, OnDone: func(job Job, err error) {
		mu.Lock()
		outcomes = append(outcomes, err)
		mu.Unlock()
	}})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1"}))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Drain(ctx))

	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []error{nil}, outcomes)
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	var outcome error
	done := make(chan struct{})
	q := NewQueue("fail", func(ctx context.Context, job Job) error {
		return errors.New("down")
	}, QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond, OnDone: func(job Job, err error) {
		outcome = err
		close(done)
	}})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never finished")
	}
	assert.EqualError(t, outcome, "down")
}

func TestQueueTryEnqueueWhenFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("full", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(block)

	require.NoError(t, q.TryEnqueue(Job{ID: "a"}))
	// the worker may or may not have picked up the first job yet
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = q.TryEnqueue(Job{ID: "b"})
	}
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{}))
}

func TestQueueCoalescesWaitingJobs(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []interface{}
	q := NewQueue("mirror", func(ctx context.Context, job Job) error {
		if job.ID == "busy" {
			<-release
			return nil
		}
		mu.Lock()
		seen = append(seen, job.Payload)
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4, Coalesce: true})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "busy"}))
	// wait until the single worker holds the busy job so the rest queue up
	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		_, waiting := q.waiting["busy"]
		return !waiting
	}, time.Second, time.Millisecond)

	require.NoError(t, q.TryEnqueue(Job{ID: "gv@school.vn/students", Payload: 1}))
	require.NoError(t, q.TryEnqueue(Job{ID: "gv@school.vn/students", Payload: 2}))
	require.NoError(t, q.TryEnqueue(Job{ID: "gv@school.vn/classes", Payload: 3}))
	require.NoError(t, q.TryEnqueue(Job{ID: "gv@school.vn/students", Payload: 4}))
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Drain(ctx))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []interface{}{4, 3}, seen)
}
