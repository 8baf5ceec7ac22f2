package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "ugnayan/contexts/community-engagement/certificate-service/application"
	"ugnayan/contexts/community-engagement/certificate-service/application/commands"
	"ugnayan/contexts/community-engagement/certificate-service/application/queries"
	"ugnayan/contexts/community-engagement/certificate-service/application/workers"
	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
	domainerrors "ugnayan/contexts/community-engagement/certificate-service/domain/errors"
	httptransport "ugnayan/contexts/community-engagement/certificate-service/transport/http"
)

type Handler struct {
	Commands commands.UseCase
	Queries  queries.UseCase
	Runner   *workers.LocalRunner
	Logger   *slog.Logger
}

// RunBatchHandler starts a certificate batch. Local mode blocks until the
// batch worker finishes and returns the archive inline; deferred mode only
// enqueues a durable job and returns its id.
func (h Handler) RunBatchHandler(
	ctx context.Context,
	activityID string,
	req httptransport.RunBatchRequest,
) (httptransport.RunBatchResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	normalizedActivityID := strings.TrimSpace(activityID)

	cmd, err := buildBatchCommand(normalizedActivityID, req)
	if err != nil {
		logger.Warn("certificate http run batch rejected",
			"event", "certificate_http_run_batch_rejected",
			"module", "community-engagement/certificate-service",
			"layer", "adapter",
			"activity_id", normalizedActivityID,
			"mode", strings.TrimSpace(req.Mode),
			"error", err.Error(),
		)
		return httptransport.RunBatchResponse{}, err
	}

	if cmd.Mode == entities.BatchModeDeferred {
		job, err := h.Commands.EnqueueDeferred(ctx, cmd)
		if err != nil {
			logger.Warn("certificate http enqueue batch failed",
				"event", "certificate_http_enqueue_batch_failed",
				"module", "community-engagement/certificate-service",
				"layer", "adapter",
				"activity_id", normalizedActivityID,
				"error", err.Error(),
			)
			return httptransport.RunBatchResponse{}, err
		}
		logger.Info("certificate http batch enqueued",
			"event", "certificate_http_batch_enqueued",
			"module", "community-engagement/certificate-service",
			"layer", "adapter",
			"activity_id", normalizedActivityID,
			"job_id", job.ID,
		)
		return httptransport.RunBatchResponse{
			ActivityID: normalizedActivityID,
			Mode:       string(entities.BatchModeDeferred),
			JobID:      job.ID,
			Status:     string(job.Status),
		}, nil
	}

	outcome, err := h.runLocal(ctx, cmd)
	if err != nil {
		logger.Warn("certificate http run batch failed",
			"event", "certificate_http_run_batch_failed",
			"module", "community-engagement/certificate-service",
			"layer", "adapter",
			"activity_id", normalizedActivityID,
			"error", err.Error(),
		)
		return httptransport.RunBatchResponse{}, err
	}
	logger.Info("certificate http batch completed",
		"event", "certificate_http_batch_completed",
		"module", "community-engagement/certificate-service",
		"layer", "adapter",
		"activity_id", normalizedActivityID,
		"success_count", outcome.Result.SuccessCount,
		"failure_count", len(outcome.Result.Failures),
	)
	return httptransport.RunBatchResponse{
		ActivityID:   normalizedActivityID,
		Mode:         string(entities.BatchModeLocal),
		SuccessCount: outcome.Result.SuccessCount,
		Failures:     mapBatchFailures(outcome.Result.Failures),
		Archive:      outcome.Archive,
	}, nil
}

func (h Handler) runLocal(ctx context.Context, cmd commands.RunBatchCommand) (commands.LocalBatchResult, error) {
	if h.Runner == nil {
		return h.Commands.RunLocal(ctx, cmd)
	}
	outcomes, err := h.Runner.Submit(cmd)
	if err != nil {
		return commands.LocalBatchResult{}, err
	}
	// The batch worker does not honor request cancellation once started; the
	// caller just stops waiting for the outcome.
	select {
	case outcome := <-outcomes:
		return outcome.Result, outcome.Err
	case <-ctx.Done():
		return commands.LocalBatchResult{}, ctx.Err()
	}
}

// DispatchHandler enqueues one delivery handoff for everything issued under
// the activity.
func (h Handler) DispatchHandler(ctx context.Context, activityID string) (httptransport.DispatchResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	normalizedActivityID := strings.TrimSpace(activityID)
	enqueued, err := h.Commands.Dispatch(ctx, normalizedActivityID)
	if err != nil {
		logger.Warn("certificate http dispatch failed",
			"event", "certificate_http_dispatch_failed",
			"module", "community-engagement/certificate-service",
			"layer", "adapter",
			"activity_id", normalizedActivityID,
			"error", err.Error(),
		)
		return httptransport.DispatchResponse{}, err
	}
	logger.Info("certificate http dispatch enqueued",
		"event", "certificate_http_dispatch_enqueued",
		"module", "community-engagement/certificate-service",
		"layer", "adapter",
		"activity_id", normalizedActivityID,
	)
	return httptransport.DispatchResponse{
		ActivityID: normalizedActivityID,
		Enqueued:   enqueued,
	}, nil
}

// VerifyHandler resolves a scanned code. An unknown identifier is a normal
// outcome and is reported as valid=false rather than an error.
func (h Handler) VerifyHandler(ctx context.Context, identifier string) (httptransport.VerificationResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	record, err := h.Queries.Verify(ctx, identifier)
	if err != nil {
		if errors.Is(err, domainerrors.ErrRecordNotFound) {
			logger.Info("certificate http verification miss",
				"event", "certificate_http_verification_miss",
				"module", "community-engagement/certificate-service",
				"layer", "adapter",
				"identifier", strings.TrimSpace(identifier),
			)
			return httptransport.VerificationResponse{Valid: false}, nil
		}
		logger.Warn("certificate http verification failed",
			"event", "certificate_http_verification_failed",
			"module", "community-engagement/certificate-service",
			"layer", "adapter",
			"identifier", strings.TrimSpace(identifier),
			"error", err.Error(),
		)
		return httptransport.VerificationResponse{}, err
	}
	dto := mapCertificateRecord(record)
	return httptransport.VerificationResponse{Valid: true, Record: &dto}, nil
}

func (h Handler) ListRecordsHandler(ctx context.Context, activityID string) (httptransport.RecordListResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	normalizedActivityID := strings.TrimSpace(activityID)
	records, err := h.Queries.ListRecords(ctx, normalizedActivityID)
	if err != nil {
		logger.Warn("certificate http list records failed",
			"event", "certificate_http_list_records_failed",
			"module", "community-engagement/certificate-service",
			"layer", "adapter",
			"activity_id", normalizedActivityID,
			"error", err.Error(),
		)
		return httptransport.RecordListResponse{}, err
	}
	dtos := make([]httptransport.CertificateRecordDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, mapCertificateRecord(record))
	}
	return httptransport.RecordListResponse{
		ActivityID: normalizedActivityID,
		Records:    dtos,
	}, nil
}

func buildBatchCommand(activityID string, req httptransport.RunBatchRequest) (commands.RunBatchCommand, error) {
	mode, err := parseBatchMode(req.Mode)
	if err != nil {
		return commands.RunBatchCommand{}, err
	}
	anchor, err := parseCodeAnchor(req.CodeAnchor)
	if err != nil {
		return commands.RunBatchCommand{}, err
	}
	layout, err := mapLayout(req.Layout)
	if err != nil {
		return commands.RunBatchCommand{}, err
	}
	recipients := make([]entities.Recipient, 0, len(req.Recipients))
	for _, recipient := range req.Recipients {
		recipients = append(recipients, entities.Recipient{
			Name:  recipient.Name,
			Email: recipient.Email,
		})
	}
	return commands.RunBatchCommand{
		ActivityID:      activityID,
		Recipients:      recipients,
		RespondentTypes: append([]string(nil), req.RespondentTypes...),
		Template:        req.Template,
		Signatures:      req.Signatures,
		Layout:          layout,
		CodeAnchor:      anchor,
		Mode:            mode,
		DeliverAfter:    req.DeliverAfter,
	}, nil
}

func parseBatchMode(raw string) (entities.BatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(entities.BatchModeLocal):
		return entities.BatchModeLocal, nil
	case string(entities.BatchModeDeferred):
		return entities.BatchModeDeferred, nil
	default:
		return "", domainerrors.ErrInvalidBatchInput
	}
}

func parseCodeAnchor(raw string) (entities.CodeAnchor, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(entities.CodeAnchorRight):
		return entities.CodeAnchorRight, nil
	case string(entities.CodeAnchorLeft):
		return entities.CodeAnchorLeft, nil
	default:
		return "", domainerrors.ErrInvalidBatchInput
	}
}

func mapLayout(dto *httptransport.LayoutDTO) (entities.LayoutConfig, error) {
	if dto == nil {
		return entities.LayoutConfig{
			Variant:  entities.LayoutVariantStandard,
			Standard: entities.DefaultStandardLayout(),
		}, nil
	}
	config := entities.LayoutConfig{
		Standard: entities.DefaultStandardLayout(),
		Cursive:  entities.DefaultCursiveBreakpoints(),
	}
	switch strings.ToLower(strings.TrimSpace(dto.Variant)) {
	case "", string(entities.LayoutVariantStandard):
		config.Variant = entities.LayoutVariantStandard
	case string(entities.LayoutVariantCursive):
		config.Variant = entities.LayoutVariantCursive
	default:
		return entities.LayoutConfig{}, domainerrors.ErrInvalidBatchInput
	}
	if dto.Standard != nil {
		config.Standard = entities.StandardLayout{
			BaseFontSize:             dto.Standard.BaseFontSize,
			MinFontSize:              dto.Standard.MinFontSize,
			BaseNameLength:           dto.Standard.BaseNameLength,
			ScaleRatio:               dto.Standard.ScaleRatio,
			VerticalBase:             dto.Standard.VerticalBase,
			VerticalAdjustmentFactor: dto.Standard.VerticalAdjustmentFactor,
		}
	}
	if len(dto.Cursive) > 0 {
		breakpoints := make([]entities.CursiveBreakpoint, 0, len(dto.Cursive))
		for _, bp := range dto.Cursive {
			breakpoints = append(breakpoints, entities.CursiveBreakpoint{
				MaxNameLength:    bp.MaxNameLength,
				FontSize:         bp.FontSize,
				VerticalPosition: bp.VerticalPosition,
			})
		}
		config.Cursive = breakpoints
	}
	return config, nil
}

func mapBatchFailures(failures []entities.BatchFailure) []httptransport.BatchFailureDTO {
	if len(failures) == 0 {
		return nil
	}
	dtos := make([]httptransport.BatchFailureDTO, 0, len(failures))
	for _, failure := range failures {
		dtos = append(dtos, httptransport.BatchFailureDTO{
			RecipientName:  failure.RecipientName,
			RecipientEmail: failure.RecipientEmail,
			Reason:         failure.Reason,
		})
	}
	return dtos
}

func mapCertificateRecord(record entities.CertificateRecord) httptransport.CertificateRecordDTO {
	return httptransport.CertificateRecordDTO{
		Identifier:     record.Identifier,
		ActivityID:     record.ActivityID,
		RecipientName:  record.RecipientName,
		RecipientEmail: record.RecipientEmail,
		StorageURL:     record.StorageURL,
		IssuedAt:       record.IssuedAt.UTC().Format(time.RFC3339),
	}
}
