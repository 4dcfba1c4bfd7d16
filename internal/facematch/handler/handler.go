package handler

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kycgate/internal/facematch"
	"kycgate/internal/platform/middleware"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/httputil"
)

const maxUploadBytes = 32 << 20

// Engine runs the face verification procedure.
type Engine interface {
	Verify(ctx context.Context, document, selfie []byte) (facematch.Decision, error)
}

// Handler handles the face verification endpoint.
type Handler struct {
	logger    *slog.Logger
	engine    Engine
	validator middleware.TokenValidator
}

// New creates a new face verification Handler.
func New(engine Engine, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		engine:    engine,
		validator: validator,
	}
}

// Register registers the face verification routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(middleware.RequireAuth(h.validator, h.logger))

		r.Post("/verify-face", h.handleVerifyFace)
	})
}

// VerifyFaceResponse reports the outcome to the operator. A failed match is
// still success=true: the comparison ran; it just came back negative.
type VerifyFaceResponse struct {
	Success    bool    `json:"success"`
	MatchScore float64 `json:"matchScore"`
	RiskScore  float64 `json:"riskScore"`
	RiskBand   string  `json:"riskBand"`
	Passed     bool    `json:"passed"`
	Message    string  `json:"message,omitempty"`
}

func (h *Handler) handleVerifyFace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	document, err := readFormImage(r, "document")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "no document image provided"))
		return
	}
	selfie, err := readFormImage(r, "selfie")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "no selfie image provided"))
		return
	}

	decision, err := h.engine.Verify(ctx, document, selfie)
	if err != nil {
		requestID := middleware.GetRequestID(ctx)
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "rejected face verification request",
				"request_id", requestID,
				"error", err.Error(),
			)
		} else {
			h.logger.ErrorContext(ctx, "face verification failed",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	resp := VerifyFaceResponse{
		Success:    true,
		MatchScore: decision.MatchScore,
		RiskScore:  decision.RiskScore,
		RiskBand:   string(decision.RiskBand),
		Passed:     decision.Passed,
	}
	if !decision.Passed {
		resp.Message = "Face match below verification threshold"
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func readFormImage(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer func(file multipart.File) { _ = file.Close() }(file)
	return io.ReadAll(file)
}
