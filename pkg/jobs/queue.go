package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by TryEnqueue when the buffer has no room.
var ErrQueueFull = errors.New("queue full")

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
	// Coalesce replaces the payload of a job still waiting under the same ID
	// instead of queueing a second one. Jobs already running are not touched.
	Coalesce bool
	// OnDone is called once per job with its final outcome.
	OnDone func(job Job, err error)
}

// slot is one buffered job. Coalesced enqueues rewrite slot.job in place
// while it waits, under Queue.mu.
type slot struct {
	job Job
}

// Queue is an in-memory job dispatcher backed by a fixed set of goroutines.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	slots    chan *slot
	waiting  map[string]*slot
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	inflight sync.WaitGroup
	mu       sync.Mutex
	started  bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		slots:   make(chan *slot, cfg.BufferSize),
		waiting: make(map[string]*slot),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers), zap.Bool("coalesce", q.cfg.Coalesce))
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("queue stopped")
}

// Enqueue pushes a job onto the queue, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	return q.enqueue(job, true)
}

// TryEnqueue pushes a job without blocking.
func (q *Queue) TryEnqueue(job Job) error {
	return q.enqueue(job, false)
}

// Drain blocks until every accepted job, retries included, has finished or
// ctx is done.
func (q *Queue) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) enqueue(job Job, block bool) error {
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return fmt.Errorf("queue %s not started", q.name)
	}
	ctx := q.ctx
	if q.cfg.Coalesce && job.ID != "" {
		if s, ok := q.waiting[job.ID]; ok {
			s.job.Payload = job.Payload
			s.job.Enqueued = job.Enqueued
			q.mu.Unlock()
			return nil
		}
	}
	s := &slot{job: job}
	if q.cfg.Coalesce && job.ID != "" {
		q.waiting[job.ID] = s
	}
	q.inflight.Add(1)
	q.mu.Unlock()

	if block {
		select {
		case q.slots <- s:
			return nil
		case <-ctx.Done():
			q.abandon(s, ctx.Err())
			return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
		}
	}
	select {
	case q.slots <- s:
		return nil
	default:
		q.abandon(s, ErrQueueFull)
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
}

// take claims a buffered slot, closing it to further coalescing.
func (q *Queue) take(s *slot) Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if cur, ok := q.waiting[s.job.ID]; ok && cur == s {
		delete(q.waiting, s.job.ID)
	}
	return s.job
}

func (q *Queue) abandon(s *slot, err error) {
	q.finish(q.take(s), err)
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case s := <-q.slots:
			job := q.take(s)
			if err := q.handler(q.ctx, job); err != nil {
				q.retry(job, err)
				continue
			}
			q.finish(job, nil)
		}
	}
}

func (q *Queue) finish(job Job, err error) {
	if q.cfg.OnDone != nil {
		q.cfg.OnDone(job, err)
	}
	q.inflight.Done()
}

// retry re-buffers a failed job after RetryDelay. Retried jobs bypass
// coalescing so a newer enqueue under the same ID runs on its own.
func (q *Queue) retry(job Job, err error) {
	job.Attempt++
	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err)}
	if job.Attempt > q.cfg.MaxRetries {
		q.logger.Error("job exceeded retries", fields...)
		q.finish(job, err)
		return
	}
	q.logger.Warn("job failed, retrying", fields...)

	go func(s *slot) {
		timer := time.NewTimer(q.cfg.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.finish(s.job, q.ctx.Err())
		case <-timer.C:
			select {
			case q.slots <- s:
			case <-q.ctx.Done():
				q.finish(s.job, q.ctx.Err())
			}
		}
	}(&slot{job: job})
}
