package httpserver

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	certificateservice "ugnayan/contexts/community-engagement/certificate-service"
	"ugnayan/contexts/community-engagement/certificate-service/domain/services"
	certhttp "ugnayan/contexts/community-engagement/certificate-service/transport/http"
)

func newTestServer() *Server {
	module := certificateservice.NewInMemoryModule(nil, "certs.example.org", nil)
	return New(module, nil, ":0")
}

func templatePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 71))
	for y := 0; y < 71; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: 250, G: 246, B: 233, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode template: %v", err)
	}
	return buf.Bytes()
}

func postBatch(t *testing.T, server *Server, activityID string, payload certhttp.RunBatchRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost,
		"/api/certificates/v1/activities/"+activityID+"/batches", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func TestRunBatchRejectsInvalidJSON(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost,
		"/api/certificates/v1/activities/activity-1/batches", bytes.NewReader([]byte("{")))
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRunBatchRejectsEmptyRoster(t *testing.T) {
	server := newTestServer()
	rr := postBatch(t, server, "activity-1", certhttp.RunBatchRequest{
		Template: templatePNG(t),
		Mode:     "local",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	var errResp certhttp.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != "empty_recipient_list" {
		t.Fatalf("unexpected error code %q", errResp.Code)
	}
}

func TestRunBatchLocalReturnsArchiveAndRecords(t *testing.T) {
	server := newTestServer()
	rr := postBatch(t, server, "activity-1", certhttp.RunBatchRequest{
		Recipients: []certhttp.RecipientDTO{
			{Name: "Ana Reyes", Email: "ana@example.com"},
		},
		Template: templatePNG(t),
		Mode:     "local",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp certhttp.RunBatchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SuccessCount != 1 || len(resp.Failures) != 0 {
		t.Fatalf("expected one clean success, got %+v", resp)
	}
	if _, err := zip.NewReader(bytes.NewReader(resp.Archive), int64(len(resp.Archive))); err != nil {
		t.Fatalf("archive is not a valid zip: %v", err)
	}

	identifier := services.DeriveIdentifier("activity-1", "Ana Reyes", "ana@example.com")
	verifyReq := httptest.NewRequest(http.MethodGet, "/certs/"+identifier, nil)
	verifyRR := httptest.NewRecorder()
	server.mux.ServeHTTP(verifyRR, verifyReq)
	if verifyRR.Code != http.StatusOK {
		t.Fatalf("expected verification hit, got %d body=%s", verifyRR.Code, verifyRR.Body.String())
	}
	var verification certhttp.VerificationResponse
	if err := json.Unmarshal(verifyRR.Body.Bytes(), &verification); err != nil {
		t.Fatalf("decode verification: %v", err)
	}
	if !verification.Valid || verification.Record == nil || verification.Record.RecipientName != "Ana Reyes" {
		t.Fatalf("unexpected verification %+v", verification)
	}
}

func TestRunBatchDeferredReturnsAcceptedJob(t *testing.T) {
	server := newTestServer()
	rr := postBatch(t, server, "activity-1", certhttp.RunBatchRequest{
		Recipients: []certhttp.RecipientDTO{
			{Name: "Ana Reyes", Email: "ana@example.com"},
		},
		Template: templatePNG(t),
		Mode:     "deferred",
	})
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp certhttp.RunBatchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" || resp.Status != "pending" {
		t.Fatalf("expected pending job id, got %+v", resp)
	}
}

func TestVerifyUnknownIdentifierIsNotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/certs/not-a-real-identifier", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
	var verification certhttp.VerificationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &verification); err != nil {
		t.Fatalf("decode verification: %v", err)
	}
	if verification.Valid || verification.Record != nil {
		t.Fatalf("expected invalid verification, got %+v", verification)
	}
}

func TestDispatchWithoutIssuedCertificatesConflicts(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost,
		"/api/certificates/v1/activities/activity-1/dispatch", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestListRecordsForActivity(t *testing.T) {
	server := newTestServer()
	postBatch(t, server, "activity-1", certhttp.RunBatchRequest{
		Recipients: []certhttp.RecipientDTO{
			{Name: "Ana Reyes", Email: "ana@example.com"},
			{Name: "Ben Santos", Email: "ben@example.com"},
		},
		Template: templatePNG(t),
		Mode:     "local",
	})

	req := httptest.NewRequest(http.MethodGet,
		"/api/certificates/v1/activities/activity-1/certificates", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp certhttp.RecordListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(resp.Records))
	}
}
