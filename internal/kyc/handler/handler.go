package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kycgate/internal/kyc"
	"kycgate/internal/platform/metrics"
	"kycgate/internal/platform/middleware"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/httputil"
)

const maxUploadBytes = 32 << 20

// Service defines the interface for the submission orchestrator.
type Service interface {
	CreateCase(ctx context.Context, applicant kyc.Applicant, clientRef string) (kyc.Case, error)
	AttachDocuments(ctx context.Context, caseID string, docs []kyc.Document) error
	AttachSelfie(ctx context.Context, caseID string, selfie kyc.Selfie) error
	RecordConsent(ctx context.Context, caseID string, consentGiven bool) error
	MarkFaceMatched(ctx context.Context, caseID string, matched bool) error
	GetCase(ctx context.Context, caseID string) (kyc.Case, error)
	VerifyScan(ctx context.Context, caseID string) (kyc.ScanResult, error)
}

// OTPService defines the interface for the phone verification step.
type OTPService interface {
	Issue(ctx context.Context, caseID string) error
	Verify(ctx context.Context, caseID, code string) error
}

// Anchorer records a hash of a completed case on the external ledger.
type Anchorer interface {
	Anchor(ctx context.Context, c kyc.Case) error
}

// Handler handles the KYC case endpoints.
type Handler struct {
	logger    *slog.Logger
	service   Service
	otp       OTPService
	anchor    Anchorer
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a new KYC Handler. otp and anchor may be nil when those
// collaborators are not configured.
func New(
	service Service,
	otp OTPService,
	anchor Anchorer,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		otp:       otp,
		anchor:    anchor,
		metrics:   metrics,
		validator: validator,
	}
}

// Register registers the KYC routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.RequireAuth(h.validator, h.logger))

		r.Post("/kyc/details", h.handleCreateCase)
		r.Get("/kyc/{caseID}", h.handleGetCase)
		r.Post("/kyc/{caseID}/documents", h.handleAttachDocuments)
		r.Post("/kyc/{caseID}/selfie", h.handleAttachSelfie)
		r.Post("/kyc/{caseID}/consent", h.handleRecordConsent)
		r.Post("/kyc/{caseID}/face-match", h.handleRecordFaceMatch)
		r.Post("/kyc/{caseID}/verify", h.handleVerifyScan)
		r.Post("/kyc/{caseID}/otp/send", h.handleSendOTP)
		r.Post("/kyc/{caseID}/otp/verify", h.handleVerifyOTP)
	})
}

func (h *Handler) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req CreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create case request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	applicant := kyc.Applicant{
		FullName:    req.FullName,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Address:     req.Address,
		Email:       req.Email,
		State:       req.State,
		Phone:       req.Phone,
		AltPhone:    req.AltPhone,
	}
	c, err := h.service.CreateCase(ctx, applicant, req.ClientRef)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create case")
		return
	}

	h.metrics.CasesCreated.Inc()
	httputil.WriteJSON(w, http.StatusCreated, CreateCaseResponse{
		CaseID:      c.CaseID,
		SubmittedAt: c.SubmittedAt,
		ExpiryDate:  c.ExpiryDate,
		Message:     "User details saved successfully and KYC entry created",
	})
}

func (h *Handler) handleGetCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.service.GetCase(ctx, chi.URLParam(r, "caseID"))
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load case")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newCaseSummary(c))
}

func (h *Handler) handleAttachDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}
	files := r.MultipartForm.File["docs"]
	metaValues := r.MultipartForm.Value["docMeta"]

	docs, err := parseDocumentBatch(files, metaValues)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected document batch",
			"request_id", middleware.GetRequestID(ctx),
			"case_id", caseID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.AttachDocuments(ctx, caseID, docs); err != nil {
		h.writeServiceError(ctx, w, err, "failed to attach documents")
		return
	}

	h.metrics.DocumentsAttached.Add(float64(len(docs)))
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Documents uploaded successfully"})
}

func (h *Handler) handleAttachSelfie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("selfie")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "no selfie file provided"))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read selfie file"))
		return
	}

	selfie := kyc.Selfie{Image: image, ContentType: header.Header.Get("Content-Type")}
	if err := h.service.AttachSelfie(ctx, caseID, selfie); err != nil {
		h.writeServiceError(ctx, w, err, "failed to attach selfie")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Selfie uploaded successfully"})
}

func (h *Handler) handleRecordConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")

	var req ConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConsentGiven == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "consentGiven is required"))
		return
	}

	if err := h.service.RecordConsent(ctx, caseID, *req.ConsentGiven); err != nil {
		h.writeServiceError(ctx, w, err, "failed to record consent")
		return
	}

	// Anchoring is fire-and-forget: its outcome never gates the
	// user-visible confirmation.
	if h.anchor != nil && *req.ConsentGiven {
		go h.anchorCase(caseID)
	}

	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Consent recorded successfully and KYC finalized"})
}

func (h *Handler) anchorCase(caseID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c, err := h.service.GetCase(ctx, caseID)
	if err != nil {
		h.logger.Error("anchor skipped: failed to load case", "case_id", caseID, "error", err)
		return
	}
	if err := h.anchor.Anchor(ctx, c); err != nil {
		h.logger.Error("failed to anchor case", "case_id", caseID, "error", err)
	}
}

// handleRecordFaceMatch persists the face verification outcome carried
// forward by the wizard. The backend accepts matched=false: a failed match is
// stored for manual review, never rejected.
func (h *Handler) handleRecordFaceMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")

	var req FaceMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Matched == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "matched is required"))
		return
	}

	if err := h.service.MarkFaceMatched(ctx, caseID, *req.Matched); err != nil {
		h.writeServiceError(ctx, w, err, "failed to record face match result")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Face match result recorded"})
}

func (h *Handler) handleVerifyScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.VerifyScan(ctx, chi.URLParam(r, "caseID"))
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to verify case")
		return
	}
	h.metrics.ScansLogged.Inc()
	httputil.WriteJSON(w, http.StatusOK, VerifyResponse{
		State:      res.State,
		CaseID:     res.CaseID,
		ExpiryDate: res.ExpiryDate,
		Name:       res.Name,
	})
}

func (h *Handler) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	if h.otp == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "OTP verification not configured"))
		return
	}
	ctx := r.Context()
	if err := h.otp.Issue(ctx, chi.URLParam(r, "caseID")); err != nil {
		h.writeServiceError(ctx, w, err, "failed to send OTP")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "OTP sent to registered mobile number"})
}

func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	if h.otp == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "OTP verification not configured"))
		return
	}
	ctx := r.Context()

	var req OTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "code is required"))
		return
	}

	if err := h.otp.Verify(ctx, chi.URLParam(r, "caseID"), req.Code); err != nil {
		h.writeServiceError(ctx, w, err, "failed to verify OTP")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "OTP verified"})
}

// writeServiceError logs unexpected failures and translates domain errors
// into the shared envelope. Client errors log at warn without a stack.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	requestID := middleware.GetRequestID(ctx)
	switch {
	case dErrors.Is(err, dErrors.CodeBadRequest), dErrors.Is(err, dErrors.CodeNotFound):
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	default:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
