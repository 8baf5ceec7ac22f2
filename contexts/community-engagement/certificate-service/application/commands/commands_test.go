package commands

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
	domainerrors "ugnayan/contexts/community-engagement/certificate-service/domain/errors"
	"ugnayan/contexts/community-engagement/certificate-service/domain/services"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

type testStore struct {
	records     map[string]entities.CertificateRecord
	createCalls int
	respondents []entities.Recipient
	jobs        []entities.BatchJob
	outbox      []ports.OutboxMessage
	blobs       map[string][]byte
	failUpload  bool
	uploadCalls int
}

func newTestStore() *testStore {
	return &testStore{
		records: make(map[string]entities.CertificateRecord),
		blobs:   make(map[string][]byte),
	}
}

func (s *testStore) UpsertRecord(_ context.Context, record entities.CertificateRecord) error {
	s.records[record.Identifier] = record
	return nil
}

func (s *testStore) CreateRecords(_ context.Context, records []entities.CertificateRecord) error {
	s.createCalls++
	for _, record := range records {
		if _, ok := s.records[record.Identifier]; !ok {
			s.records[record.Identifier] = record
		}
	}
	return nil
}

func (s *testStore) GetRecord(_ context.Context, identifier string) (entities.CertificateRecord, error) {
	record, ok := s.records[identifier]
	if !ok {
		return entities.CertificateRecord{}, domainerrors.ErrRecordNotFound
	}
	return record, nil
}

func (s *testStore) ListRecordsByActivity(_ context.Context, activityID string) ([]entities.CertificateRecord, error) {
	var out []entities.CertificateRecord
	for _, record := range s.records {
		if record.ActivityID == activityID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *testStore) ListRespondents(_ context.Context, _ string, _ []string) ([]entities.Recipient, error) {
	return s.respondents, nil
}

func (s *testStore) EnqueueBatchJob(_ context.Context, job entities.BatchJob) error {
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *testStore) ListPendingBatchJobs(_ context.Context, _ int) ([]entities.BatchJob, error) {
	return s.jobs, nil
}

func (s *testStore) MarkBatchJobRunning(_ context.Context, _ string, _ time.Time) error { return nil }

func (s *testStore) MarkBatchJobDone(_ context.Context, _ string, _, _ int, _ time.Time) error {
	return nil
}

func (s *testStore) MarkBatchJobFailed(_ context.Context, _ string, _ string, _ time.Time) error {
	return nil
}

func (s *testStore) AppendOutbox(_ context.Context, message ports.OutboxMessage) error {
	s.outbox = append(s.outbox, message)
	return nil
}

func (s *testStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.uploadCalls++
	if s.failUpload {
		return "", errors.New("bucket unavailable")
	}
	s.blobs[key] = data
	return "https://storage.example.org/certificates/" + key, nil
}

type stubEncoder struct{}

func (stubEncoder) Encode(identifier string) ([]byte, error) {
	return []byte("code:" + identifier), nil
}

type stubRenderer struct {
	failFor string
	calls   int
}

func (r *stubRenderer) Render(_ context.Context, req ports.RenderRequest) ([]byte, error) {
	r.calls++
	if r.failFor != "" && req.RecipientName == r.failFor {
		return nil, errors.New("corrupt template asset")
	}
	return []byte("%PDF " + req.RecipientName), nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqIDGen struct {
	next int
}

func (g *seqIDGen) NewID(_ context.Context) (string, error) {
	g.next++
	return fmt.Sprintf("id-%d", g.next), nil
}

func newTestUseCase(store *testStore, renderer *stubRenderer) UseCase {
	return UseCase{
		Records:     store,
		Respondents: store,
		Jobs:        store,
		Outbox:      store,
		Blobs:       store,
		Encoder:     stubEncoder{},
		Renderer:    renderer,
		Clock:       fixedClock{now: time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)},
		IDGen:       &seqIDGen{},
	}
}

func validCommand(mode entities.BatchMode, recipients ...entities.Recipient) RunBatchCommand {
	return RunBatchCommand{
		ActivityID: "activity-1",
		Recipients: recipients,
		Template:   []byte("template-bytes"),
		Layout: entities.LayoutConfig{
			Variant:  entities.LayoutVariantStandard,
			Standard: entities.DefaultStandardLayout(),
		},
		CodeAnchor: entities.CodeAnchorRight,
		Mode:       mode,
	}
}

func TestRunLocalRejectsEmptyRoster(t *testing.T) {
	uc := newTestUseCase(newTestStore(), &stubRenderer{})
	_, err := uc.RunLocal(context.Background(), validCommand(entities.BatchModeLocal))
	if !errors.Is(err, domainerrors.ErrEmptyRecipientList) {
		t.Fatalf("expected ErrEmptyRecipientList, got %v", err)
	}
}

func TestRunLocalRejectsMissingTemplate(t *testing.T) {
	uc := newTestUseCase(newTestStore(), &stubRenderer{})
	cmd := validCommand(entities.BatchModeLocal, entities.Recipient{Name: "Ana", Email: "ana@example.com"})
	cmd.Template = nil
	_, err := uc.RunLocal(context.Background(), cmd)
	if !errors.Is(err, domainerrors.ErrMissingTemplate) {
		t.Fatalf("expected ErrMissingTemplate, got %v", err)
	}
}

func TestRunLocalRejectsPartialSignatureSet(t *testing.T) {
	uc := newTestUseCase(newTestStore(), &stubRenderer{})
	cmd := validCommand(entities.BatchModeLocal, entities.Recipient{Name: "Ana", Email: "ana@example.com"})
	cmd.Signatures = [][]byte{[]byte("sig-1")}
	_, err := uc.RunLocal(context.Background(), cmd)
	if !errors.Is(err, domainerrors.ErrInvalidSignatureSet) {
		t.Fatalf("expected ErrInvalidSignatureSet, got %v", err)
	}
}

func TestRunLocalSkipsIncompleteRecipientWithoutRendering(t *testing.T) {
	store := newTestStore()
	renderer := &stubRenderer{}
	uc := newTestUseCase(store, renderer)

	cmd := validCommand(entities.BatchModeLocal,
		entities.Recipient{Name: "Ana Reyes", Email: "ana@example.com"},
		entities.Recipient{Name: "Ben Santos", Email: "   "},
	)
	out, err := uc.RunLocal(context.Background(), cmd)
	if err != nil {
		t.Fatalf("run local failed: %v", err)
	}
	if out.Result.SuccessCount != 1 {
		t.Fatalf("expected 1 success, got %d", out.Result.SuccessCount)
	}
	if len(out.Result.Failures) != 1 || out.Result.Failures[0].Reason != "missing email" {
		t.Fatalf("expected one missing email failure, got %+v", out.Result.Failures)
	}
	if renderer.calls != 1 {
		t.Fatalf("expected renderer skipped for incomplete recipient, got %d calls", renderer.calls)
	}
}

func TestRunLocalContinuesPastRenderFailure(t *testing.T) {
	store := newTestStore()
	renderer := &stubRenderer{failFor: "Carlo Cruz"}
	uc := newTestUseCase(store, renderer)

	cmd := validCommand(entities.BatchModeLocal,
		entities.Recipient{Name: "Ana Reyes", Email: "ana@example.com"},
		entities.Recipient{Name: "Ben Santos", Email: "ben@example.com"},
		entities.Recipient{Name: "Carlo Cruz", Email: "carlo@example.com"},
		entities.Recipient{Name: "Dana Lim", Email: "dana@example.com"},
	)
	out, err := uc.RunLocal(context.Background(), cmd)
	if err != nil {
		t.Fatalf("run local failed: %v", err)
	}
	if out.Result.SuccessCount != 3 {
		t.Fatalf("expected 3 successes, got %d", out.Result.SuccessCount)
	}
	if len(out.Result.Failures) != 1 || out.Result.Failures[0].RecipientName != "Carlo Cruz" {
		t.Fatalf("expected Carlo Cruz failure, got %+v", out.Result.Failures)
	}

	reader, err := zip.NewReader(bytes.NewReader(out.Archive), int64(len(out.Archive)))
	if err != nil {
		t.Fatalf("archive is not a valid zip: %v", err)
	}
	if len(reader.File) != 3 {
		t.Fatalf("expected 3 archive entries, got %d", len(reader.File))
	}
	if store.createCalls != 1 {
		t.Fatalf("expected one bulk audit insert, got %d", store.createCalls)
	}
	if len(store.records) != 3 {
		t.Fatalf("expected 3 audit records, got %d", len(store.records))
	}
}

func TestRunLocalSuffixesArchiveNameCollisions(t *testing.T) {
	uc := newTestUseCase(newTestStore(), &stubRenderer{})
	cmd := validCommand(entities.BatchModeLocal,
		entities.Recipient{Name: "Ana Reyes", Email: "ana@example.com"},
		entities.Recipient{Name: "Ana Reyes", Email: "ana.reyes@example.com"},
	)
	out, err := uc.RunLocal(context.Background(), cmd)
	if err != nil {
		t.Fatalf("run local failed: %v", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(out.Archive), int64(len(out.Archive)))
	if err != nil {
		t.Fatalf("archive is not a valid zip: %v", err)
	}
	names := map[string]bool{}
	for _, file := range reader.File {
		names[file.Name] = true
	}
	if !names["Ana_Reyes.pdf"] || !names["Ana_Reyes-2.pdf"] {
		t.Fatalf("expected suffixed entries, got %v", names)
	}
}

func TestEnqueueDeferredSnapshotsResolvedRoster(t *testing.T) {
	store := newTestStore()
	store.respondents = []entities.Recipient{
		{Name: "Ana Reyes", Email: "ana@example.com"},
		{Name: "Ben Santos", Email: "ben@example.com"},
	}
	uc := newTestUseCase(store, &stubRenderer{})

	cmd := validCommand(entities.BatchModeDeferred)
	cmd.RespondentTypes = []string{"participant"}
	job, err := uc.EnqueueDeferred(context.Background(), cmd)
	if err != nil {
		t.Fatalf("enqueue deferred failed: %v", err)
	}
	if job.Status != entities.BatchJobStatusPending {
		t.Fatalf("expected pending job, got %s", job.Status)
	}
	if len(store.jobs) != 1 {
		t.Fatalf("expected one durable job row, got %d", len(store.jobs))
	}

	decoded, err := DecodeBatchPayload(job.Payload)
	if err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if len(decoded.Recipients) != 2 {
		t.Fatalf("expected roster snapshot in payload, got %d recipients", len(decoded.Recipients))
	}
	if decoded.ActivityID != "activity-1" {
		t.Fatalf("unexpected activity in payload: %q", decoded.ActivityID)
	}
}

func TestRunDeferredUploadsRecordsAndIsRerunSafe(t *testing.T) {
	store := newTestStore()
	uc := newTestUseCase(store, &stubRenderer{})

	cmd := validCommand(entities.BatchModeDeferred,
		entities.Recipient{Name: "Ana Reyes", Email: "ana@example.com"},
		entities.Recipient{Name: "Ben Santos", Email: "ben@example.com"},
	)
	result, err := uc.RunDeferred(context.Background(), cmd)
	if err != nil {
		t.Fatalf("run deferred failed: %v", err)
	}
	if result.SuccessCount != 2 || len(result.Failures) != 0 {
		t.Fatalf("expected 2 clean successes, got %+v", result)
	}

	identifier := services.DeriveIdentifier("activity-1", "Ana Reyes", "ana@example.com")
	key := "activity-1/" + identifier + ".pdf"
	if _, ok := store.blobs[key]; !ok {
		t.Fatalf("expected blob at %q, have %v", key, len(store.blobs))
	}
	record, ok := store.records[identifier]
	if !ok {
		t.Fatalf("expected upserted record for %q", identifier)
	}
	if !strings.HasPrefix(record.StorageURL, "https://storage.example.org/") {
		t.Fatalf("unexpected storage url %q", record.StorageURL)
	}

	if _, err := uc.RunDeferred(context.Background(), cmd); err != nil {
		t.Fatalf("re-run failed: %v", err)
	}
	if len(store.blobs) != 2 || len(store.records) != 2 {
		t.Fatalf("expected re-run to overwrite, got %d blobs and %d records",
			len(store.blobs), len(store.records))
	}
}

func TestRunDeferredContinuesPastUploadFailure(t *testing.T) {
	store := newTestStore()
	store.failUpload = true
	uc := newTestUseCase(store, &stubRenderer{})

	cmd := validCommand(entities.BatchModeDeferred,
		entities.Recipient{Name: "Ana Reyes", Email: "ana@example.com"},
		entities.Recipient{Name: "Ben Santos", Email: "ben@example.com"},
	)
	result, err := uc.RunDeferred(context.Background(), cmd)
	if err != nil {
		t.Fatalf("run deferred failed: %v", err)
	}
	if result.SuccessCount != 0 || len(result.Failures) != 2 {
		t.Fatalf("expected every recipient to fail upload, got %+v", result)
	}
	if store.uploadCalls != 2 {
		t.Fatalf("expected upload attempted per recipient, got %d", store.uploadCalls)
	}
}

func TestRunDeferredDispatchesWhenRequested(t *testing.T) {
	store := newTestStore()
	uc := newTestUseCase(store, &stubRenderer{})

	cmd := validCommand(entities.BatchModeDeferred,
		entities.Recipient{Name: "Ana Reyes", Email: "ana@example.com"},
	)
	cmd.DeliverAfter = true
	if _, err := uc.RunDeferred(context.Background(), cmd); err != nil {
		t.Fatalf("run deferred failed: %v", err)
	}
	if len(store.outbox) != 1 {
		t.Fatalf("expected one delivery handoff in outbox, got %d", len(store.outbox))
	}
}

func TestDispatchAppendsSingleHandoff(t *testing.T) {
	store := newTestStore()
	store.records["cert-1"] = entities.CertificateRecord{
		Identifier:     "cert-1",
		ActivityID:     "activity-1",
		RecipientName:  "Ana Reyes",
		RecipientEmail: "ana@example.com",
		StorageURL:     "https://storage.example.org/certificates/activity-1/cert-1.pdf",
	}
	store.records["cert-2"] = entities.CertificateRecord{
		Identifier:    "cert-2",
		ActivityID:    "activity-1",
		RecipientName: "Walk-in Guest",
	}
	uc := newTestUseCase(store, &stubRenderer{})

	enqueued, err := uc.Dispatch(context.Background(), "activity-1")
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !enqueued {
		t.Fatalf("expected handoff to be enqueued")
	}
	if len(store.outbox) != 1 {
		t.Fatalf("expected exactly one outbox message, got %d", len(store.outbox))
	}
	message := store.outbox[0]
	if message.EventType != DeliveryRequestedEventType {
		t.Fatalf("unexpected event type %q", message.EventType)
	}
	if !bytes.Contains(message.Payload, []byte("ana@example.com")) {
		t.Fatalf("expected deliverable recipient in payload")
	}
	if bytes.Contains(message.Payload, []byte("Walk-in Guest")) {
		t.Fatalf("expected contact-less record to be filtered out")
	}
}

func TestDispatchRejectsActivityWithoutDeliverableRecipients(t *testing.T) {
	store := newTestStore()
	uc := newTestUseCase(store, &stubRenderer{})
	_, err := uc.Dispatch(context.Background(), "activity-1")
	if !errors.Is(err, domainerrors.ErrNoDeliverableRecipients) {
		t.Fatalf("expected ErrNoDeliverableRecipients, got %v", err)
	}
}
