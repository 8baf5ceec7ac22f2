package ports

import (
	"context"
	"encoding/json"
	"time"

	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
)

// Repository owns certificate record persistence.
type Repository interface {
	// UpsertRecord writes a record keyed by identifier, replacing any prior
	// row. Concurrent batches for the same recipient are not coordinated;
	// the last writer wins.
	UpsertRecord(ctx context.Context, record entities.CertificateRecord) error
	// CreateRecords is the local-mode bulk audit insert performed once at the
	// end of a batch.
	CreateRecords(ctx context.Context, records []entities.CertificateRecord) error
	GetRecord(ctx context.Context, identifier string) (entities.CertificateRecord, error)
	ListRecordsByActivity(ctx context.Context, activityID string) ([]entities.CertificateRecord, error)
}

// RespondentSource is read-only access to the respondent projection owned by
// the portal's CRUD layer.
type RespondentSource interface {
	ListRespondents(ctx context.Context, activityID string, respondentTypes []string) ([]entities.Recipient, error)
}

// BatchJobQueue is the durable queue backing deferred-mode batches.
type BatchJobQueue interface {
	EnqueueBatchJob(ctx context.Context, job entities.BatchJob) error
	ListPendingBatchJobs(ctx context.Context, limit int) ([]entities.BatchJob, error)
	MarkBatchJobRunning(ctx context.Context, jobID string, at time.Time) error
	MarkBatchJobDone(ctx context.Context, jobID string, successCount, failureCount int, at time.Time) error
	MarkBatchJobFailed(ctx context.Context, jobID string, reason string, at time.Time) error
}

// OutboxMessage is a pending integration event persisted alongside state.
type OutboxMessage struct {
	OutboxID    string
	EventType   string
	Payload     []byte
	Status      string // pending, published
	CreatedAt   time.Time
	PublishedAt *time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, message OutboxMessage) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, at time.Time) error
}

// BlobStore is a content-addressed document store.
type BlobStore interface {
	// Put stores data under key, replacing any existing object, and returns
	// the public URL of the stored blob. Overwrite-on-republish is what makes
	// deferred batches safely re-runnable.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// CodeEncoder turns an identifier into a scannable verification code image.
type CodeEncoder interface {
	Encode(identifier string) ([]byte, error)
}

// RenderRequest is the per-recipient unit of work consumed by the renderer.
type RenderRequest struct {
	RecipientName string
	Template      []byte
	CodeImage     []byte
	Signatures    [][]byte
	CodeAnchor    entities.CodeAnchor
	Layout        entities.LayoutConfig
}

// Renderer composites one certificate document. A corrupt asset fails that
// single render; the orchestrator decides whether to continue.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// DeliveryMessage is one outbound notification for a delivered certificate.
type DeliveryMessage struct {
	ActivityID     string
	RecipientName  string
	RecipientEmail string
	Identifier     string
	StorageURL     string
}

// Mailer is the fire-and-forget outbound transport.
type Mailer interface {
	Send(ctx context.Context, message DeliveryMessage) error
}

// EventEnvelope is the bus-level event shape for this context.
type EventEnvelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
