package facematch

import (
	"context"
	"log/slog"
	"time"

	"kycgate/internal/platform/metrics"
	dErrors "kycgate/pkg/domain-errors"
)

// Engine runs the face verification procedure: score the image pair, then
// render a pass/fail decision against the configured threshold. It is
// stateless; persisting the outcome is the caller's concern.
type Engine struct {
	scorer    Scorer
	threshold float64
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewEngine creates an Engine with the given scorer and pass threshold.
func NewEngine(scorer Scorer, threshold float64, logger *slog.Logger, metrics *metrics.Metrics) *Engine {
	return &Engine{
		scorer:    scorer,
		threshold: threshold,
		logger:    logger,
		metrics:   metrics,
	}
}

// Verify compares the document image against the selfie and returns the
// decision. Missing inputs are client errors; scorer failures surface as
// unavailable so the caller can distinguish "no answer" from "failed match".
func (e *Engine) Verify(ctx context.Context, document, selfie []byte) (Decision, error) {
	if len(document) == 0 {
		return Decision{}, dErrors.New(dErrors.CodeBadRequest, "no reference document image provided")
	}
	if len(selfie) == 0 {
		return Decision{}, dErrors.New(dErrors.CodeBadRequest, "no selfie image provided")
	}

	start := time.Now()
	result, err := e.scorer.Score(ctx, document, selfie)
	if err != nil {
		e.logger.ErrorContext(ctx, "face scoring failed", "error", err.Error())
		return Decision{}, dErrors.New(dErrors.CodeUnavailable, "face verification service unavailable")
	}

	decision := Evaluate(result, e.threshold)
	e.metrics.ObserveFaceMatch(decision.Passed, float64(time.Since(start).Milliseconds()))
	e.logger.InfoContext(ctx, "face verification completed",
		"match_score", decision.MatchScore,
		"risk_score", decision.RiskScore,
		"risk_band", string(decision.RiskBand),
		"passed", decision.Passed,
	)
	return decision, nil
}
