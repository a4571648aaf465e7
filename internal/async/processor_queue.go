package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
)

type ProcessorQueue struct {
	gen     Generator
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(gen Generator, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		gen:     gen,
		logger:  logger,
		workers: 2,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.process(workerID, job)
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) process(workerID int, job Job) {
	if job.Cleanup != nil {
		defer job.Cleanup()
	}
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if job.RequestID != "" {
		ctx = common.WithRequestID(ctx, job.RequestID)
	}

	in := job.Inputs
	in.ID = job.ID
	_, err := q.gen.Generate(ctx, in)
	if err != nil {
		q.logger.Error("generation failed", "worker_id", workerID, "generation_id", job.ID, "error", err,
			"waited_ms", time.Since(job.SubmittedAt).Milliseconds())
		return
	}
	q.logger.Info("generation completed", "worker_id", workerID, "generation_id", job.ID,
		"waited_ms", time.Since(job.SubmittedAt).Milliseconds())
}

// Enqueue hands the job to a worker without blocking. A full or closing
// queue rejects the job and runs its Cleanup.
func (q *ProcessorQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "generation_id", job.ID)
		reject(job)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued generation", "generation_id", job.ID, "depth", len(q.ch))
		return nil
	default:
		q.logger.Warn("queue full, rejecting generation", "generation_id", job.ID, "capacity", cap(q.ch))
		reject(job)
		return ErrQueueFull
	}
}

func reject(job Job) {
	if job.Cleanup != nil {
		job.Cleanup()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to drain or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
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
