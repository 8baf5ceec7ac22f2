package workers

import (
	"context"
	"log/slog"
	"sync"

	application "ugnayan/contexts/community-engagement/certificate-service/application"
	"ugnayan/contexts/community-engagement/certificate-service/application/commands"
	domainerrors "ugnayan/contexts/community-engagement/certificate-service/domain/errors"
)

// LocalBatchOutcome is the completed-batch message sent back to the caller.
type LocalBatchOutcome struct {
	Result commands.LocalBatchResult
	Err    error
}

type localJob struct {
	command commands.RunBatchCommand
	result  chan LocalBatchOutcome
}

// LocalRunner executes local-mode batches on a dedicated worker goroutine so
// rendering never blocks the interactive caller. Communication is pure
// message passing: Submit hands over a job and returns the result channel.
// There is no cancellation once a batch starts; a caller may abandon the
// result, but the worker runs each batch to completion.
type LocalRunner struct {
	commands commands.UseCase
	logger   *slog.Logger
	jobs     chan localJob

	mu      sync.Mutex
	stopped bool
}

func NewLocalRunner(useCase commands.UseCase, queueSize int, logger *slog.Logger) *LocalRunner {
	if queueSize <= 0 {
		queueSize = 8
	}
	runner := &LocalRunner{
		commands: useCase,
		logger:   application.ResolveLogger(logger),
		jobs:     make(chan localJob, queueSize),
	}
	go runner.loop()
	return runner
}

// Submit queues a batch and returns the channel the outcome arrives on.
// The channel is buffered, so an abandoned result never wedges the worker.
func (r *LocalRunner) Submit(cmd commands.RunBatchCommand) (<-chan LocalBatchOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return nil, domainerrors.ErrLocalRunnerStopped
	}
	result := make(chan LocalBatchOutcome, 1)
	r.jobs <- localJob{command: cmd, result: result}
	return result, nil
}

// Stop drains queued jobs and shuts the worker down. Submit calls after Stop
// fail fast.
func (r *LocalRunner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	close(r.jobs)
}

func (r *LocalRunner) loop() {
	for job := range r.jobs {
		result, err := r.commands.RunLocal(context.Background(), job.command)
		if err != nil {
			r.logger.Warn("local certificate batch failed",
				"event", "certificate_local_runner_batch_failed",
				"module", "community-engagement/certificate-service",
				"layer", "worker",
				"activity_id", job.command.ActivityID,
				"error", err.Error(),
			)
		}
		job.result <- LocalBatchOutcome{Result: result, Err: err}
	}
}
