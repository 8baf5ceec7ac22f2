package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
	domainerrors "ugnayan/contexts/community-engagement/certificate-service/domain/errors"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

func TestUpsertRecordReplacesByIdentifier(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	first := entities.CertificateRecord{
		Identifier:     "cert-1",
		ActivityID:     "activity-1",
		RecipientName:  "Ana Reyes",
		RecipientEmail: "ana@example.com",
		StorageURL:     "memory://activity-1/cert-1.pdf",
	}
	if err := store.UpsertRecord(ctx, first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	second := first
	second.StorageURL = "memory://activity-1/cert-1-v2.pdf"
	if err := store.UpsertRecord(ctx, second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if store.RecordCount() != 1 {
		t.Fatalf("expected single record, got %d", store.RecordCount())
	}
	stored, err := store.GetRecord(ctx, "cert-1")
	if err != nil {
		t.Fatalf("get record failed: %v", err)
	}
	if stored.StorageURL != second.StorageURL {
		t.Fatalf("expected last writer to win, got %q", stored.StorageURL)
	}
}

func TestGetRecordMissing(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.GetRecord(context.Background(), "nope"); !errors.Is(err, domainerrors.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListRespondentsFiltersByType(t *testing.T) {
	store := NewStore([]entities.Respondent{
		{ActivityID: "activity-1", RespondentType: "participant", Name: "Ana Reyes", Email: "ana@example.com"},
		{ActivityID: "activity-1", RespondentType: "facilitator", Name: "Ben Santos", Email: "ben@example.com"},
		{ActivityID: "activity-2", RespondentType: "participant", Name: "Carlo Cruz", Email: "carlo@example.com"},
	})

	all, err := store.ListRespondents(context.Background(), "activity-1", nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both activity-1 respondents, got %d", len(all))
	}

	participants, err := store.ListRespondents(context.Background(), "activity-1", []string{"participant"})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(participants) != 1 || participants[0].Name != "Ana Reyes" {
		t.Fatalf("expected only the participant, got %+v", participants)
	}
}

func TestBatchJobLifecycle(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

	job := entities.BatchJob{ID: "job-1", ActivityID: "activity-1", Status: entities.BatchJobStatusPending}
	if err := store.EnqueueBatchJob(ctx, job); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := store.EnqueueBatchJob(ctx, job); err == nil {
		t.Fatalf("expected duplicate job id to be rejected")
	}

	pending, err := store.ListPendingBatchJobs(ctx, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one pending job, got %d (%v)", len(pending), err)
	}

	if err := store.MarkBatchJobRunning(ctx, "job-1", now); err != nil {
		t.Fatalf("mark running failed: %v", err)
	}
	pending, _ = store.ListPendingBatchJobs(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("running job still listed as pending")
	}

	if err := store.MarkBatchJobDone(ctx, "job-1", 3, 1, now); err != nil {
		t.Fatalf("mark done failed: %v", err)
	}
	stored, _ := store.Job("job-1")
	if stored.Status != entities.BatchJobStatusDone || stored.SuccessCount != 3 || stored.FailureCount != 1 {
		t.Fatalf("unexpected terminal job state %+v", stored)
	}

	if err := store.MarkBatchJobFailed(ctx, "missing", "boom", now); !errors.Is(err, domainerrors.ErrBatchJobNotFound) {
		t.Fatalf("expected ErrBatchJobNotFound, got %v", err)
	}
}

func TestOutboxPendingAndPublish(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

	if err := store.AppendOutbox(ctx, ports.OutboxMessage{
		OutboxID:  "out-1",
		EventType: "certificate.delivery.requested",
		Payload:   []byte(`{}`),
		Status:    "pending",
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if store.PendingOutboxCount() != 1 {
		t.Fatalf("expected one pending message")
	}

	if err := store.MarkOutboxPublished(ctx, "out-1", now); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	if store.PendingOutboxCount() != 0 {
		t.Fatalf("expected outbox drained")
	}
	pending, _ := store.ListPendingOutbox(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("published message still pending")
	}
}

func TestPutOverwritesBlob(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	url, err := store.Put(ctx, "activity-1/cert-1.pdf", []byte("v1"), "application/pdf")
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if url != "memory://activity-1/cert-1.pdf" {
		t.Fatalf("unexpected url %q", url)
	}
	if _, err := store.Put(ctx, "activity-1/cert-1.pdf", []byte("v2"), "application/pdf"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if store.BlobCount() != 1 {
		t.Fatalf("expected single blob after overwrite, got %d", store.BlobCount())
	}
	data, ok := store.Blob("activity-1/cert-1.pdf")
	if !ok || string(data) != "v2" {
		t.Fatalf("expected overwritten content, got %q", data)
	}
}
