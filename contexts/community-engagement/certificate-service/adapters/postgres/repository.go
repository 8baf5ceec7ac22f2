package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
	domainerrors "ugnayan/contexts/community-engagement/certificate-service/domain/errors"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// UpsertRecord writes by identifier with on-conflict update. Concurrent
// writers for the same identifier are resolved last-writer-wins.
func (r *Repository) UpsertRecord(ctx context.Context, record entities.CertificateRecord) error {
	row := certificateRecordModelFromEntity(record)
	if row.Identifier == "" || row.ActivityID == "" {
		return domainerrors.ErrInvalidBatchInput
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identifier"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"activity_id", "recipient_name", "recipient_email", "storage_url", "updated_at",
		}),
	}).Create(&row).Error; err != nil {
		return r.logError("certificate_repo_upsert_record_failed", err,
			"identifier", row.Identifier,
			"activity_id", row.ActivityID,
		)
	}
	return nil
}

func (r *Repository) CreateRecords(ctx context.Context, records []entities.CertificateRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]certificateRecordModel, 0, len(records))
	for _, record := range records {
		rows = append(rows, certificateRecordModelFromEntity(record))
	}
	// Audit insert from local batches; an already-issued identifier keeps
	// its existing row.
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identifier"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("certificate_repo_create_records_failed", err,
			"record_count", len(rows),
		)
	}
	return nil
}

func (r *Repository) GetRecord(ctx context.Context, identifier string) (entities.CertificateRecord, error) {
	var row certificateRecordModel
	err := r.db.WithContext(ctx).
		Where("identifier = ?", strings.TrimSpace(identifier)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CertificateRecord{}, domainerrors.ErrRecordNotFound
		}
		return entities.CertificateRecord{}, r.logError("certificate_repo_get_record_failed", err,
			"identifier", strings.TrimSpace(identifier),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListRecordsByActivity(ctx context.Context, activityID string) ([]entities.CertificateRecord, error) {
	var rows []certificateRecordModel
	if err := r.db.WithContext(ctx).
		Where("activity_id = ?", strings.TrimSpace(activityID)).
		Order("recipient_name ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("certificate_repo_list_records_failed", err,
			"activity_id", strings.TrimSpace(activityID),
		)
	}
	records := make([]entities.CertificateRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toEntity())
	}
	return records, nil
}

// ListRespondents reads the respondent projection owned by the portal's CRUD
// layer. Read-only by design.
func (r *Repository) ListRespondents(ctx context.Context, activityID string, respondentTypes []string) ([]entities.Recipient, error) {
	query := r.db.WithContext(ctx).
		Model(&respondentModel{}).
		Where("activity_id = ?", strings.TrimSpace(activityID))
	if len(respondentTypes) > 0 {
		query = query.Where("respondent_type IN ?", respondentTypes)
	}
	var rows []respondentModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("certificate_repo_list_respondents_failed", err,
			"activity_id", strings.TrimSpace(activityID),
		)
	}
	recipients := make([]entities.Recipient, 0, len(rows))
	for _, row := range rows {
		recipients = append(recipients, entities.Recipient{Name: row.Name, Email: row.Email})
	}
	return recipients, nil
}

func (r *Repository) EnqueueBatchJob(ctx context.Context, job entities.BatchJob) error {
	row := certificateBatchJobModel{
		ID:           strings.TrimSpace(job.ID),
		ActivityID:   strings.TrimSpace(job.ActivityID),
		Status:       string(job.Status),
		Payload:      job.Payload,
		SuccessCount: job.SuccessCount,
		FailureCount: job.FailureCount,
		LastError:    job.LastError,
		CreatedAt:    job.CreatedAt.UTC(),
		UpdatedAt:    job.UpdatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("certificate_repo_enqueue_batch_job_failed", err,
			"job_id", row.ID,
			"activity_id", row.ActivityID,
		)
	}
	return nil
}

func (r *Repository) ListPendingBatchJobs(ctx context.Context, limit int) ([]entities.BatchJob, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []certificateBatchJobModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.BatchJobStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("certificate_repo_list_pending_jobs_failed", err,
			"limit", limit,
		)
	}
	jobs := make([]entities.BatchJob, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.toEntity())
	}
	return jobs, nil
}

func (r *Repository) MarkBatchJobRunning(ctx context.Context, jobID string, at time.Time) error {
	return r.updateJob(ctx, jobID, map[string]any{
		"status":     string(entities.BatchJobStatusRunning),
		"updated_at": at.UTC(),
	})
}

func (r *Repository) MarkBatchJobDone(ctx context.Context, jobID string, successCount, failureCount int, at time.Time) error {
	return r.updateJob(ctx, jobID, map[string]any{
		"status":        string(entities.BatchJobStatusDone),
		"success_count": successCount,
		"failure_count": failureCount,
		"last_error":    "",
		"updated_at":    at.UTC(),
	})
}

func (r *Repository) MarkBatchJobFailed(ctx context.Context, jobID string, reason string, at time.Time) error {
	return r.updateJob(ctx, jobID, map[string]any{
		"status":     string(entities.BatchJobStatusFailed),
		"last_error": reason,
		"updated_at": at.UTC(),
	})
}

func (r *Repository) updateJob(ctx context.Context, jobID string, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&certificateBatchJobModel{}).
		Where("id = ?", strings.TrimSpace(jobID)).
		Updates(updates)
	if result.Error != nil {
		return r.logError("certificate_repo_update_batch_job_failed", result.Error,
			"job_id", strings.TrimSpace(jobID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBatchJobNotFound
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	row := certificateOutboxModel{
		OutboxID:    strings.TrimSpace(message.OutboxID),
		EventType:   strings.TrimSpace(message.EventType),
		Payload:     message.Payload,
		Status:      outboxStatusPending,
		CreatedAt:   message.CreatedAt.UTC(),
		PublishedAt: nil,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("certificate_repo_append_outbox_failed", err,
			"outbox_id", row.OutboxID,
			"event_type", row.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []certificateOutboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("certificate_repo_list_pending_outbox_failed", err,
			"limit", limit,
		)
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:    row.OutboxID,
			EventType:   row.EventType,
			Payload:     row.Payload,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt.UTC(),
			PublishedAt: normalizeOptionalTime(row.PublishedAt),
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, at time.Time) error {
	published := at.UTC()
	result := r.db.WithContext(ctx).
		Model(&certificateOutboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &published,
		})
	if result.Error != nil {
		return r.logError("certificate_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "community-engagement/certificate-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("certificate repository operation failed", fields...)
	return err
}

type certificateRecordModel struct {
	Identifier     string    `gorm:"column:identifier;primaryKey"`
	ActivityID     string    `gorm:"column:activity_id"`
	RecipientName  string    `gorm:"column:recipient_name"`
	RecipientEmail string    `gorm:"column:recipient_email"`
	StorageURL     string    `gorm:"column:storage_url"`
	IssuedAt       time.Time `gorm:"column:issued_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (certificateRecordModel) TableName() string {
	return "certificate_records"
}

func certificateRecordModelFromEntity(record entities.CertificateRecord) certificateRecordModel {
	return certificateRecordModel{
		Identifier:     strings.TrimSpace(record.Identifier),
		ActivityID:     strings.TrimSpace(record.ActivityID),
		RecipientName:  strings.TrimSpace(record.RecipientName),
		RecipientEmail: strings.TrimSpace(record.RecipientEmail),
		StorageURL:     strings.TrimSpace(record.StorageURL),
		IssuedAt:       record.IssuedAt.UTC(),
		UpdatedAt:      record.UpdatedAt.UTC(),
	}
}

func (m certificateRecordModel) toEntity() entities.CertificateRecord {
	return entities.CertificateRecord{
		Identifier:     m.Identifier,
		ActivityID:     m.ActivityID,
		RecipientName:  m.RecipientName,
		RecipientEmail: m.RecipientEmail,
		StorageURL:     m.StorageURL,
		IssuedAt:       m.IssuedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type certificateBatchJobModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	ActivityID   string    `gorm:"column:activity_id"`
	Status       string    `gorm:"column:status"`
	Payload      []byte    `gorm:"column:payload"`
	SuccessCount int       `gorm:"column:success_count"`
	FailureCount int       `gorm:"column:failure_count"`
	LastError    string    `gorm:"column:last_error"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (certificateBatchJobModel) TableName() string {
	return "certificate_batch_jobs"
}

func (m certificateBatchJobModel) toEntity() entities.BatchJob {
	return entities.BatchJob{
		ID:           m.ID,
		ActivityID:   m.ActivityID,
		Status:       entities.BatchJobStatus(m.Status),
		Payload:      m.Payload,
		SuccessCount: m.SuccessCount,
		FailureCount: m.FailureCount,
		LastError:    m.LastError,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type certificateOutboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (certificateOutboxModel) TableName() string {
	return "certificate_outbox"
}

type respondentModel struct {
	ActivityID     string `gorm:"column:activity_id"`
	RespondentType string `gorm:"column:respondent_type"`
	Name           string `gorm:"column:name"`
	Email          string `gorm:"column:email"`
}

func (respondentModel) TableName() string {
	return "respondents"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	t := value.UTC()
	return &t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.RespondentSource = (*Repository)(nil)
var _ ports.BatchJobQueue = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
