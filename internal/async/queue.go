package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/system-prompt-generator/internal/pipeline"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is shutting down")
)

// Job is one queued generation. Cleanup, when set, runs after the job
// finishes or is rejected, and removes the uploaded files.
type Job struct {
	ID          uuid.UUID
	Inputs      pipeline.Inputs
	Cleanup     func()
	SubmittedAt time.Time
	RequestID   string
}

// Generator is the part of pipeline.Processor the workers call.
type Generator interface {
	Generate(ctx context.Context, in pipeline.Inputs) (pipeline.Result, error)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
