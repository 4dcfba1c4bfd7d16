package facematch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Scorer produces a raw comparison score for a document image and a live
// selfie.
type Scorer interface {
	Score(ctx context.Context, document, selfie []byte) (MatchResult, error)
}

// HTTPScorer calls an external face comparison service over HTTP. The service
// accepts a multipart form with the two images and returns the match and risk
// scores as JSON.
type HTTPScorer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPScorer creates a scorer against the comparison service at baseURL.
func NewHTTPScorer(baseURL string) *HTTPScorer {
	return &HTTPScorer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type scoreResponse struct {
	MatchScore float64 `json:"matchScore"`
	RiskScore  float64 `json:"riskScore"`
}

// Score submits both images and decodes the raw scores. Transport and
// non-200 failures are returned as errors; the caller decides how they map
// onto the verification outcome.
func (s *HTTPScorer) Score(ctx context.Context, document, selfie []byte) (MatchResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writeImagePart(writer, "document", "document.jpg", document); err != nil {
		return MatchResult{}, err
	}
	if err := writeImagePart(writer, "selfie", "selfie.jpg", selfie); err != nil {
		return MatchResult{}, err
	}
	if err := writer.Close(); err != nil {
		return MatchResult{}, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/compare", &body)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to create compare request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return MatchResult{}, fmt.Errorf("face comparison request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return MatchResult{}, fmt.Errorf("face comparison service returned %d: %s", resp.StatusCode, msg)
	}

	var parsed scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return MatchResult{}, fmt.Errorf("failed to decode comparison response: %w", err)
	}
	return MatchResult{MatchScore: parsed.MatchScore, RiskScore: parsed.RiskScore}, nil
}

func writeImagePart(writer *multipart.Writer, field, filename string, image []byte) error {
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to create form file %s: %w", field, err)
	}
	if _, err := part.Write(image); err != nil {
		return fmt.Errorf("failed to write form file %s: %w", field, err)
	}
	return nil
}
