package commands

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "ugnayan/contexts/community-engagement/certificate-service/application"
	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
	domainerrors "ugnayan/contexts/community-engagement/certificate-service/domain/errors"
	"ugnayan/contexts/community-engagement/certificate-service/domain/services"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

const (
	defaultItemTimeout = 30 * time.Second

	// DeliveryRequestedEventType is the bus event carrying the delivery
	// handoff payload from the dispatcher to the notification consumer.
	DeliveryRequestedEventType = "certificate.delivery.requested"

	documentContentType = "application/pdf"
)

// RunBatchCommand is one batch of certificate work for a single activity.
// Recipients, when non-empty, overrides the respondent projection lookup.
type RunBatchCommand struct {
	ActivityID      string
	Recipients      []entities.Recipient
	RespondentTypes []string
	Template        []byte
	Signatures      [][]byte
	Layout          entities.LayoutConfig
	CodeAnchor      entities.CodeAnchor
	Mode            entities.BatchMode
	DeliverAfter    bool
	ItemTimeout     time.Duration
}

// LocalBatchResult bundles the downloadable archive with the structured
// outcome so a partial archive can still be offered alongside failures.
type LocalBatchResult struct {
	Result  entities.BatchResult
	Archive []byte
}

type UseCase struct {
	Records     ports.Repository
	Respondents ports.RespondentSource
	Jobs        ports.BatchJobQueue
	Outbox      ports.OutboxWriter
	Blobs       ports.BlobStore
	Encoder     ports.CodeEncoder
	Renderer    ports.Renderer
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// RunLocal renders every recipient sequentially and accumulates the documents
// into a single zip archive, one entry per recipient. The archive is the only
// durable artifact of a local batch; record triples are bulk-inserted at the
// end for audit.
func (uc UseCase) RunLocal(ctx context.Context, cmd RunBatchCommand) (LocalBatchResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	activityID := strings.TrimSpace(cmd.ActivityID)

	recipients, err := uc.resolveRecipients(ctx, cmd)
	if err != nil {
		return LocalBatchResult{}, err
	}
	if err := validateBatchInputs(cmd, recipients); err != nil {
		logger.Warn("certificate local batch rejected",
			"event", "certificate_local_batch_rejected",
			"module", "community-engagement/certificate-service",
			"layer", "application",
			"activity_id", activityID,
			"error", err.Error(),
		)
		return LocalBatchResult{}, err
	}

	now := uc.now()
	result := entities.BatchResult{ActivityID: activityID}
	records := make([]entities.CertificateRecord, 0, len(recipients))

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)
	entryNames := make(map[string]int, len(recipients))

	for _, recipient := range recipients {
		if reason := validateRecipient(recipient); reason != "" {
			result.Failures = append(result.Failures, failureFor(recipient, reason))
			logger.Warn("certificate local recipient rejected",
				"event", "certificate_local_recipient_rejected",
				"module", "community-engagement/certificate-service",
				"layer", "application",
				"activity_id", activityID,
				"recipient_name", strings.TrimSpace(recipient.Name),
				"reason", reason,
			)
			continue
		}
		identifier, document, err := uc.renderOne(ctx, cmd, recipient)
		if err != nil {
			result.Failures = append(result.Failures, failureFor(recipient, err.Error()))
			logger.Warn("certificate local render failed",
				"event", "certificate_local_render_failed",
				"module", "community-engagement/certificate-service",
				"layer", "application",
				"activity_id", activityID,
				"recipient_name", strings.TrimSpace(recipient.Name),
				"error", err.Error(),
			)
			continue
		}
		entry, err := archive.Create(archiveEntryName(entryNames, recipient.Name))
		if err != nil {
			result.Failures = append(result.Failures, failureFor(recipient, "archive entry: "+err.Error()))
			continue
		}
		if _, err := entry.Write(document); err != nil {
			result.Failures = append(result.Failures, failureFor(recipient, "archive write: "+err.Error()))
			continue
		}
		records = append(records, entities.CertificateRecord{
			Identifier:     identifier,
			ActivityID:     activityID,
			RecipientName:  strings.TrimSpace(recipient.Name),
			RecipientEmail: strings.TrimSpace(recipient.Email),
			IssuedAt:       now,
			UpdatedAt:      now,
		})
		result.SuccessCount++
	}

	if err := archive.Close(); err != nil {
		logger.Error("certificate local archive close failed",
			"event", "certificate_local_archive_close_failed",
			"module", "community-engagement/certificate-service",
			"layer", "application",
			"activity_id", activityID,
			"error", err.Error(),
		)
		return LocalBatchResult{}, fmt.Errorf("close certificate archive: %w", err)
	}

	if len(records) > 0 {
		// The archive is already complete; an audit insert failure must not
		// destroy the caller's documents, so it is logged and not returned.
		if err := uc.Records.CreateRecords(ctx, records); err != nil {
			logger.Error("certificate local audit insert failed",
				"event", "certificate_local_audit_insert_failed",
				"module", "community-engagement/certificate-service",
				"layer", "application",
				"activity_id", activityID,
				"record_count", len(records),
				"error", err.Error(),
			)
		}
	}

	logger.Info("certificate local batch completed",
		"event", "certificate_local_batch_completed",
		"module", "community-engagement/certificate-service",
		"layer", "application",
		"activity_id", activityID,
		"success_count", result.SuccessCount,
		"failure_count", len(result.Failures),
	)
	return LocalBatchResult{Result: result, Archive: buf.Bytes()}, nil
}

// EnqueueDeferred resolves and validates the batch, snapshots it as a durable
// job row, and returns the queued job. The worker replays the payload in full.
func (uc UseCase) EnqueueDeferred(ctx context.Context, cmd RunBatchCommand) (entities.BatchJob, error) {
	logger := application.ResolveLogger(uc.Logger)
	activityID := strings.TrimSpace(cmd.ActivityID)

	recipients, err := uc.resolveRecipients(ctx, cmd)
	if err != nil {
		return entities.BatchJob{}, err
	}
	if err := validateBatchInputs(cmd, recipients); err != nil {
		logger.Warn("certificate deferred batch rejected",
			"event", "certificate_deferred_batch_rejected",
			"module", "community-engagement/certificate-service",
			"layer", "application",
			"activity_id", activityID,
			"error", err.Error(),
		)
		return entities.BatchJob{}, err
	}
	cmd.Recipients = recipients
	cmd.RespondentTypes = nil

	payload, err := EncodeBatchPayload(cmd)
	if err != nil {
		return entities.BatchJob{}, fmt.Errorf("encode batch payload: %w", err)
	}
	jobID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.BatchJob{}, err
	}

	now := uc.now()
	job := entities.BatchJob{
		ID:         jobID,
		ActivityID: activityID,
		Status:     entities.BatchJobStatusPending,
		Payload:    payload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.Jobs.EnqueueBatchJob(ctx, job); err != nil {
		logger.Error("certificate batch job enqueue failed",
			"event", "certificate_batch_job_enqueue_failed",
			"module", "community-engagement/certificate-service",
			"layer", "application",
			"activity_id", activityID,
			"job_id", jobID,
			"error", err.Error(),
		)
		return entities.BatchJob{}, err
	}

	logger.Info("certificate batch job enqueued",
		"event", "certificate_batch_job_enqueued",
		"module", "community-engagement/certificate-service",
		"layer", "application",
		"activity_id", activityID,
		"job_id", jobID,
		"recipient_count", len(recipients),
	)
	return job, nil
}

// RunDeferred executes one deferred batch: per recipient, render, upload the
// document keyed <activityID>/<identifier>.pdf with overwrite-on-conflict,
// and upsert the metadata row. A failed recipient is recorded and the loop
// continues; re-running the whole batch is safe because every write is
// idempotent by identifier.
func (uc UseCase) RunDeferred(ctx context.Context, cmd RunBatchCommand) (entities.BatchResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	activityID := strings.TrimSpace(cmd.ActivityID)

	recipients, err := uc.resolveRecipients(ctx, cmd)
	if err != nil {
		return entities.BatchResult{}, err
	}
	if err := validateBatchInputs(cmd, recipients); err != nil {
		logger.Warn("certificate deferred batch rejected",
			"event", "certificate_deferred_batch_rejected",
			"module", "community-engagement/certificate-service",
			"layer", "application",
			"activity_id", activityID,
			"error", err.Error(),
		)
		return entities.BatchResult{}, err
	}

	result := entities.BatchResult{ActivityID: activityID}
	for _, recipient := range recipients {
		if reason := validateRecipient(recipient); reason != "" {
			result.Failures = append(result.Failures, failureFor(recipient, reason))
			continue
		}
		identifier, document, err := uc.renderOne(ctx, cmd, recipient)
		if err != nil {
			result.Failures = append(result.Failures, failureFor(recipient, err.Error()))
			logger.Warn("certificate deferred render failed",
				"event", "certificate_deferred_render_failed",
				"module", "community-engagement/certificate-service",
				"layer", "application",
				"activity_id", activityID,
				"recipient_name", strings.TrimSpace(recipient.Name),
				"stage", "render",
				"error", err.Error(),
			)
			continue
		}

		uploadCtx, cancel := context.WithTimeout(ctx, uc.itemTimeout(cmd))
		storageURL, err := uc.Blobs.Put(uploadCtx, activityID+"/"+identifier+".pdf", document, documentContentType)
		cancel()
		if err != nil {
			result.Failures = append(result.Failures, failureFor(recipient, "upload: "+err.Error()))
			logger.Warn("certificate deferred upload failed",
				"event", "certificate_deferred_upload_failed",
				"module", "community-engagement/certificate-service",
				"layer", "application",
				"activity_id", activityID,
				"identifier", identifier,
				"recipient_name", strings.TrimSpace(recipient.Name),
				"stage", "upload",
				"error", err.Error(),
			)
			continue
		}

		now := uc.now()
		record := entities.CertificateRecord{
			Identifier:     identifier,
			ActivityID:     activityID,
			RecipientName:  strings.TrimSpace(recipient.Name),
			RecipientEmail: strings.TrimSpace(recipient.Email),
			StorageURL:     storageURL,
			IssuedAt:       now,
			UpdatedAt:      now,
		}
		if err := uc.Records.UpsertRecord(ctx, record); err != nil {
			result.Failures = append(result.Failures, failureFor(recipient, "persist: "+err.Error()))
			logger.Warn("certificate deferred persist failed",
				"event", "certificate_deferred_persist_failed",
				"module", "community-engagement/certificate-service",
				"layer", "application",
				"activity_id", activityID,
				"identifier", identifier,
				"recipient_name", strings.TrimSpace(recipient.Name),
				"stage", "persist",
				"error", err.Error(),
			)
			continue
		}
		result.SuccessCount++
	}

	logger.Info("certificate deferred batch completed",
		"event", "certificate_deferred_batch_completed",
		"module", "community-engagement/certificate-service",
		"layer", "application",
		"activity_id", activityID,
		"success_count", result.SuccessCount,
		"failure_count", len(result.Failures),
	)

	if cmd.DeliverAfter {
		// Dispatch failure does not invalidate the completed batch; the
		// caller can re-invoke dispatch, which only reads certificate state.
		if _, err := uc.Dispatch(ctx, activityID); err != nil {
			logger.Error("certificate post-batch dispatch failed",
				"event", "certificate_post_batch_dispatch_failed",
				"module", "community-engagement/certificate-service",
				"layer", "application",
				"activity_id", activityID,
				"error", err.Error(),
			)
		}
	}
	return result, nil
}

// Dispatch reads every record for the activity with recipient contact details
// and appends exactly one delivery handoff event to the outbox. It never
// mutates certificate state, so re-invoking it is safe.
func (uc UseCase) Dispatch(ctx context.Context, activityID string) (bool, error) {
	logger := application.ResolveLogger(uc.Logger)
	normalizedActivityID := strings.TrimSpace(activityID)

	records, err := uc.Records.ListRecordsByActivity(ctx, normalizedActivityID)
	if err != nil {
		logger.Error("certificate dispatch record listing failed",
			"event", "certificate_dispatch_list_failed",
			"module", "community-engagement/certificate-service",
			"layer", "application",
			"activity_id", normalizedActivityID,
			"error", err.Error(),
		)
		return false, err
	}

	handoff := DeliveryHandoff{ActivityID: normalizedActivityID}
	for _, record := range records {
		if strings.TrimSpace(record.RecipientName) == "" || strings.TrimSpace(record.RecipientEmail) == "" {
			continue
		}
		handoff.Recipients = append(handoff.Recipients, DeliveryRecipient{
			Name:       record.RecipientName,
			Email:      record.RecipientEmail,
			Identifier: record.Identifier,
			StorageURL: record.StorageURL,
		})
	}
	if len(handoff.Recipients) == 0 {
		logger.Warn("certificate dispatch has no deliverable recipients",
			"event", "certificate_dispatch_empty",
			"module", "community-engagement/certificate-service",
			"layer", "application",
			"activity_id", normalizedActivityID,
		)
		return false, domainerrors.ErrNoDeliverableRecipients
	}

	envelope, err := uc.deliveryEnvelope(ctx, handoff)
	if err != nil {
		return false, err
	}
	outboxID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return false, err
	}
	if err := uc.Outbox.AppendOutbox(ctx, ports.OutboxMessage{
		OutboxID:  outboxID,
		EventType: DeliveryRequestedEventType,
		Payload:   envelope,
		Status:    "pending",
		CreatedAt: uc.now(),
	}); err != nil {
		logger.Error("certificate dispatch outbox append failed",
			"event", "certificate_dispatch_outbox_failed",
			"module", "community-engagement/certificate-service",
			"layer", "application",
			"activity_id", normalizedActivityID,
			"outbox_id", outboxID,
			"error", err.Error(),
		)
		return false, err
	}

	logger.Info("certificate delivery queued",
		"event", "certificate_delivery_queued",
		"module", "community-engagement/certificate-service",
		"layer", "application",
		"activity_id", normalizedActivityID,
		"outbox_id", outboxID,
		"recipient_count", len(handoff.Recipients),
	)
	return true, nil
}

func (uc UseCase) resolveRecipients(ctx context.Context, cmd RunBatchCommand) ([]entities.Recipient, error) {
	if len(cmd.Recipients) > 0 {
		return cmd.Recipients, nil
	}
	logger := application.ResolveLogger(uc.Logger)
	recipients, err := uc.Respondents.ListRespondents(ctx, strings.TrimSpace(cmd.ActivityID), cmd.RespondentTypes)
	if err != nil {
		logger.Error("certificate respondent lookup failed",
			"event", "certificate_respondent_lookup_failed",
			"module", "community-engagement/certificate-service",
			"layer", "application",
			"activity_id", strings.TrimSpace(cmd.ActivityID),
			"error", err.Error(),
		)
		return nil, err
	}
	return recipients, nil
}

// renderOne runs the per-recipient pipeline: derive identifier, encode the
// verification code, render the document under the per-item timeout.
func (uc UseCase) renderOne(ctx context.Context, cmd RunBatchCommand, recipient entities.Recipient) (string, []byte, error) {
	identifier := services.DeriveIdentifier(
		strings.TrimSpace(cmd.ActivityID),
		recipient.Name,
		recipient.Email,
	)
	codeImage, err := uc.Encoder.Encode(identifier)
	if err != nil {
		return identifier, nil, fmt.Errorf("encode verification code: %w", err)
	}

	renderCtx, cancel := context.WithTimeout(ctx, uc.itemTimeout(cmd))
	defer cancel()
	document, err := uc.Renderer.Render(renderCtx, ports.RenderRequest{
		RecipientName: recipient.Name,
		Template:      cmd.Template,
		CodeImage:     codeImage,
		Signatures:    cmd.Signatures,
		CodeAnchor:    cmd.CodeAnchor,
		Layout:        cmd.Layout,
	})
	if err != nil {
		return identifier, nil, fmt.Errorf("render certificate: %w", err)
	}
	return identifier, document, nil
}

func (uc UseCase) itemTimeout(cmd RunBatchCommand) time.Duration {
	if cmd.ItemTimeout > 0 {
		return cmd.ItemTimeout
	}
	return defaultItemTimeout
}

func (uc UseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func validateBatchInputs(cmd RunBatchCommand, recipients []entities.Recipient) error {
	if strings.TrimSpace(cmd.ActivityID) == "" {
		return domainerrors.ErrInvalidBatchInput
	}
	if len(recipients) == 0 {
		return domainerrors.ErrEmptyRecipientList
	}
	if len(cmd.Template) == 0 {
		return domainerrors.ErrMissingTemplate
	}
	if len(cmd.Signatures) != 0 && len(cmd.Signatures) != 2 {
		return domainerrors.ErrInvalidSignatureSet
	}
	return nil
}

// validateRecipient rejects incomplete entries before any hashing happens.
func validateRecipient(recipient entities.Recipient) string {
	if strings.TrimSpace(recipient.Name) == "" {
		return "missing name"
	}
	if strings.TrimSpace(recipient.Email) == "" {
		return "missing email"
	}
	return ""
}

func failureFor(recipient entities.Recipient, reason string) entities.BatchFailure {
	return entities.BatchFailure{
		RecipientName:  strings.TrimSpace(recipient.Name),
		RecipientEmail: strings.TrimSpace(recipient.Email),
		Reason:         reason,
	}
}

// archiveEntryName sanitizes a recipient name into a unique archive entry,
// suffixing on collision so every successful recipient keeps its own entry.
func archiveEntryName(taken map[string]int, name string) string {
	base := sanitizeFileName(name)
	taken[base]++
	if taken[base] > 1 {
		return fmt.Sprintf("%s-%d.pdf", base, taken[base])
	}
	return base + ".pdf"
}

func sanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_', r == '.':
			return r
		default:
			return -1
		}
	}, strings.TrimSpace(name))
	cleaned = strings.Join(strings.Fields(cleaned), "_")
	if cleaned == "" {
		return "certificate"
	}
	return cleaned
}
