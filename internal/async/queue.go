// Package async runs validation jobs on a bounded worker pool, used by the
// batch CLI to process many document sets concurrently.
package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/mudassirkhan-17/policyqc/constants"
	"github.com/mudassirkhan-17/policyqc/internal/common"
	"github.com/mudassirkhan-17/policyqc/internal/pipeline"
)

// Job is one queued validation.
type Job struct {
	ID          uuid.UUID
	Task        pipeline.Task
	Input       pipeline.Input
	SubmittedAt time.Time
}

// ResultFunc receives each finished report. The report may be a failed
// run's partial report; err carries the failure.
type ResultFunc func(job Job, rep *pipeline.Report, err error)

// ValidationQueue fans jobs out to a fixed pool of pipeline runs.
type ValidationQueue struct {
	runner  *pipeline.Runner
	onDone  ResultFunc
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ValidationQueue)

func WithWorkers(n int) Option {
	return func(q *ValidationQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ValidationQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithRunTimeout(d time.Duration) Option {
	return func(q *ValidationQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithResultFunc(fn ResultFunc) Option {
	return func(q *ValidationQueue) {
		q.onDone = fn
	}
}

func NewValidationQueue(runner *pipeline.Runner, logger *slog.Logger, opts ...Option) *ValidationQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ValidationQueue{
		runner:  runner,
		logger:  logger,
		workers: 4,
		timeout: 10 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ValidationQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := common.WithTimeout(context.Background(), q.timeout)
					ctx = common.WithRunID(ctx, job.ID.String())
					rep, err := q.run(ctx, job)
					cancel()

					if err != nil {
						q.logger.Error("validation failed", "worker_id", workerID, "job_id", job.ID, "task", job.Task, "error", err)
					} else {
						q.logger.Info("validation complete", "worker_id", workerID, "job_id", job.ID, "task", job.Task, "status", rep.Status)
					}
					if q.onDone != nil {
						q.onDone(job, rep, err)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ValidationQueue) run(ctx context.Context, job Job) (*pipeline.Report, error) {
	switch job.Task {
	case pipeline.TaskInterests:
		return q.runner.ValidateInterests(ctx, job.Input)
	case pipeline.TaskExtractQC:
		return q.runner.ExtractAndCompare(ctx, job.Input)
	default:
		return q.runner.ValidateCoverages(ctx, job.Input)
	}
}

// Enqueue queues a job, blocking when the channel is full. Enqueueing after
// Shutdown is a no-op.
func (q *ValidationQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", job.ID)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued validation job", "job_id", job.ID, "task", job.Task, "status", constants.RunQueued)
	default:
		q.logger.Warn("queue full, applying backpressure", "job_id", job.ID)
		q.ch <- job
	}
	return nil
}

// Shutdown closes the queue and waits for in-flight jobs until ctx expires.
func (q *ValidationQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
