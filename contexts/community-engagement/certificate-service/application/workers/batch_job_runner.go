package workers

import (
	"context"
	"log/slog"
	"time"

	application "ugnayan/contexts/community-engagement/certificate-service/application"
	"ugnayan/contexts/community-engagement/certificate-service/application/commands"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

// BatchJobRunner drains pending deferred batch jobs. Each job is one durable
// unit of work; replaying a job is safe because uploads overwrite by
// identifier and metadata writes are upserts.
type BatchJobRunner struct {
	Commands  commands.UseCase
	Jobs      ports.BatchJobQueue
	BatchSize int
	Logger    *slog.Logger
}

func (r BatchJobRunner) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 10
	}

	pending, err := r.Jobs.ListPendingBatchJobs(ctx, limit)
	if err != nil {
		logger.Error("certificate batch job listing failed",
			"event", "certificate_batch_job_list_failed",
			"module", "community-engagement/certificate-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, job := range pending {
		now := time.Now().UTC()
		cmd, err := commands.DecodeBatchPayload(job.Payload)
		if err != nil {
			logger.Error("certificate batch job payload decode failed",
				"event", "certificate_batch_job_decode_failed",
				"module", "community-engagement/certificate-service",
				"layer", "worker",
				"job_id", job.ID,
				"activity_id", job.ActivityID,
				"error", err.Error(),
			)
			if err := r.Jobs.MarkBatchJobFailed(ctx, job.ID, "payload decode: "+err.Error(), now); err != nil {
				return err
			}
			continue
		}

		if err := r.Jobs.MarkBatchJobRunning(ctx, job.ID, now); err != nil {
			return err
		}
		result, err := r.Commands.RunDeferred(ctx, cmd)
		if err != nil {
			logger.Error("certificate batch job failed",
				"event", "certificate_batch_job_failed",
				"module", "community-engagement/certificate-service",
				"layer", "worker",
				"job_id", job.ID,
				"activity_id", job.ActivityID,
				"error", err.Error(),
			)
			if err := r.Jobs.MarkBatchJobFailed(ctx, job.ID, err.Error(), time.Now().UTC()); err != nil {
				return err
			}
			continue
		}
		if err := r.Jobs.MarkBatchJobDone(ctx, job.ID, result.SuccessCount, len(result.Failures), time.Now().UTC()); err != nil {
			return err
		}
		logger.Info("certificate batch job completed",
			"event", "certificate_batch_job_completed",
			"module", "community-engagement/certificate-service",
			"layer", "worker",
			"job_id", job.ID,
			"activity_id", job.ActivityID,
			"success_count", result.SuccessCount,
			"failure_count", len(result.Failures),
		)
	}
	return nil
}
