package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
	domainerrors "ugnayan/contexts/community-engagement/certificate-service/domain/errors"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

type blobRecord struct {
	Data        []byte
	ContentType string
}

// Store is the in-memory adapter backing every persistence-shaped port of
// the certificate service: records, respondent projection, batch job queue,
// delivery outbox, blob store, mail sink, clock, and ID generation.
type Store struct {
	mu sync.RWMutex

	records     map[string]entities.CertificateRecord
	respondents []entities.Respondent
	jobs        map[string]entities.BatchJob
	jobOrder    []string
	outbox      map[string]ports.OutboxMessage
	outboxOrder []string
	blobs       map[string]blobRecord
	sentMail    []ports.DeliveryMessage
}

func NewStore(seedRespondents []entities.Respondent) *Store {
	return &Store{
		records:     make(map[string]entities.CertificateRecord),
		respondents: append([]entities.Respondent(nil), seedRespondents...),
		jobs:        make(map[string]entities.BatchJob),
		outbox:      make(map[string]ports.OutboxMessage),
		blobs:       make(map[string]blobRecord),
	}
}

func (s *Store) UpsertRecord(_ context.Context, record entities.CertificateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Identifier] = record
	return nil
}

func (s *Store) CreateRecords(_ context.Context, records []entities.CertificateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		s.records[record.Identifier] = record
	}
	return nil
}

func (s *Store) GetRecord(_ context.Context, identifier string) (entities.CertificateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, exists := s.records[strings.TrimSpace(identifier)]
	if !exists {
		return entities.CertificateRecord{}, domainerrors.ErrRecordNotFound
	}
	return record, nil
}

func (s *Store) ListRecordsByActivity(_ context.Context, activityID string) ([]entities.CertificateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]entities.CertificateRecord, 0)
	for _, record := range s.records {
		if record.ActivityID == strings.TrimSpace(activityID) {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].RecipientName < records[j].RecipientName
	})
	return records, nil
}

func (s *Store) ListRespondents(_ context.Context, activityID string, respondentTypes []string) ([]entities.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]bool, len(respondentTypes))
	for _, t := range respondentTypes {
		wanted[strings.TrimSpace(t)] = true
	}
	recipients := make([]entities.Recipient, 0)
	for _, respondent := range s.respondents {
		if respondent.ActivityID != strings.TrimSpace(activityID) {
			continue
		}
		if len(wanted) > 0 && !wanted[respondent.RespondentType] {
			continue
		}
		recipients = append(recipients, entities.Recipient{
			Name:  respondent.Name,
			Email: respondent.Email,
		})
	}
	return recipients, nil
}

func (s *Store) EnqueueBatchJob(_ context.Context, job entities.BatchJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return domainerrors.ErrInvalidBatchInput
	}
	s.jobs[job.ID] = job
	s.jobOrder = append(s.jobOrder, job.ID)
	return nil
}

func (s *Store) ListPendingBatchJobs(_ context.Context, limit int) ([]entities.BatchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 10
	}
	jobs := make([]entities.BatchJob, 0)
	for _, id := range s.jobOrder {
		job := s.jobs[id]
		if job.Status != entities.BatchJobStatusPending {
			continue
		}
		jobs = append(jobs, job)
		if len(jobs) >= limit {
			break
		}
	}
	return jobs, nil
}

func (s *Store) MarkBatchJobRunning(_ context.Context, jobID string, at time.Time) error {
	return s.updateJob(jobID, func(job *entities.BatchJob) {
		job.Status = entities.BatchJobStatusRunning
		job.UpdatedAt = at
	})
}

func (s *Store) MarkBatchJobDone(_ context.Context, jobID string, successCount, failureCount int, at time.Time) error {
	return s.updateJob(jobID, func(job *entities.BatchJob) {
		job.Status = entities.BatchJobStatusDone
		job.SuccessCount = successCount
		job.FailureCount = failureCount
		job.LastError = ""
		job.UpdatedAt = at
	})
}

func (s *Store) MarkBatchJobFailed(_ context.Context, jobID string, reason string, at time.Time) error {
	return s.updateJob(jobID, func(job *entities.BatchJob) {
		job.Status = entities.BatchJobStatusFailed
		job.LastError = reason
		job.UpdatedAt = at
	})
}

func (s *Store) updateJob(jobID string, apply func(*entities.BatchJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return domainerrors.ErrBatchJobNotFound
	}
	apply(&job)
	s.jobs[jobID] = job
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, message ports.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox[message.OutboxID] = message
	s.outboxOrder = append(s.outboxOrder, message.OutboxID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	pending := make([]ports.OutboxMessage, 0)
	for _, id := range s.outboxOrder {
		message := s.outbox[id]
		if message.Status != "pending" {
			continue
		}
		pending = append(pending, message)
		if len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, exists := s.outbox[outboxID]
	if !exists {
		return domainerrors.ErrRecordNotFound
	}
	message.Status = "published"
	published := at
	message.PublishedAt = &published
	s.outbox[outboxID] = message
	return nil
}

// Put replaces any blob already stored under key; last writer wins.
func (s *Store) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = blobRecord{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
	}
	return "memory://" + key, nil
}

func (s *Store) Send(_ context.Context, message ports.DeliveryMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentMail = append(s.sentMail, message)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// Test seams.

func (s *Store) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) Blob(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, exists := s.blobs[key]
	if !exists {
		return nil, false
	}
	return append([]byte(nil), blob.Data...), true
}

func (s *Store) BlobCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

func (s *Store) Job(jobID string) (entities.BatchJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	return job, exists
}

func (s *Store) PendingOutboxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, message := range s.outbox {
		if message.Status == "pending" {
			count++
		}
	}
	return count
}

func (s *Store) SentMail() []ports.DeliveryMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.DeliveryMessage(nil), s.sentMail...)
}

var (
	_ ports.Repository       = (*Store)(nil)
	_ ports.RespondentSource = (*Store)(nil)
	_ ports.BatchJobQueue    = (*Store)(nil)
	_ ports.OutboxWriter     = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.BlobStore        = (*Store)(nil)
	_ ports.Mailer           = (*Store)(nil)
	_ ports.Clock            = (*Store)(nil)
	_ ports.IDGenerator      = (*Store)(nil)
)
