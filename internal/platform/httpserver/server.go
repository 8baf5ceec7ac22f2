package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	certificateservice "ugnayan/contexts/community-engagement/certificate-service"
	certerrors "ugnayan/contexts/community-engagement/certificate-service/domain/errors"
	certhttp "ugnayan/contexts/community-engagement/certificate-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "ugnayan/internal/platform/httpserver/docs"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	certificates certificateservice.Module
}

func New(
	certificates certificateservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		addr:         addr,
		certificates: certificates,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/certificates/v1/activities/{activity_id}/batches", s.handleRunBatch)
	s.mux.HandleFunc("POST /api/certificates/v1/activities/{activity_id}/dispatch", s.handleDispatch)
	s.mux.HandleFunc("GET /api/certificates/v1/activities/{activity_id}/certificates", s.handleListRecords)
	s.mux.HandleFunc("GET /api/certificates/v1/certificates/{identifier}", s.handleVerify)

	// Public verification landing route encoded into every certificate code.
	s.mux.HandleFunc("GET /certs/{identifier}", s.handleVerify)
}

func (s *Server) handleRunBatch(w http.ResponseWriter, r *http.Request) {
	var req certhttp.RunBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCertificateError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	activityID := r.PathValue("activity_id")
	resp, err := s.certificates.Handler.RunBatchHandler(r.Context(), activityID, req)
	if err != nil {
		writeCertificateDomainError(w, err)
		return
	}
	status := http.StatusOK
	if resp.JobID != "" {
		status = http.StatusAccepted
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	activityID := r.PathValue("activity_id")
	resp, err := s.certificates.Handler.DispatchHandler(r.Context(), activityID)
	if err != nil {
		writeCertificateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	activityID := r.PathValue("activity_id")
	resp, err := s.certificates.Handler.ListRecordsHandler(r.Context(), activityID)
	if err != nil {
		writeCertificateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	identifier := r.PathValue("identifier")
	resp, err := s.certificates.Handler.VerifyHandler(r.Context(), identifier)
	if err != nil {
		writeCertificateDomainError(w, err)
		return
	}
	status := http.StatusOK
	if !resp.Valid {
		status = http.StatusNotFound
	}
	writeJSON(w, status, resp)
}

func writeCertificateDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, certerrors.ErrEmptyRecipientList):
		writeCertificateError(w, http.StatusBadRequest, "empty_recipient_list", err.Error())
	case errors.Is(err, certerrors.ErrMissingTemplate):
		writeCertificateError(w, http.StatusBadRequest, "missing_template", err.Error())
	case errors.Is(err, certerrors.ErrInvalidSignatureSet):
		writeCertificateError(w, http.StatusBadRequest, "invalid_signature_set", err.Error())
	case errors.Is(err, certerrors.ErrInvalidBatchInput):
		writeCertificateError(w, http.StatusBadRequest, "invalid_batch_input", err.Error())
	case errors.Is(err, certerrors.ErrRecordNotFound),
		errors.Is(err, certerrors.ErrBatchJobNotFound):
		writeCertificateError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, certerrors.ErrNoDeliverableRecipients):
		writeCertificateError(w, http.StatusConflict, "no_deliverable_recipients", err.Error())
	case errors.Is(err, certerrors.ErrLocalRunnerStopped):
		writeCertificateError(w, http.StatusServiceUnavailable, "batch_runner_stopped", err.Error())
	default:
		writeCertificateError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeCertificateError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, certhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
