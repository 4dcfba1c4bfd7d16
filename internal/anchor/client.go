package anchor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"kycgate/internal/kyc"
)

// Client records a digest of a finalized case on an external ledger service.
// The ledger only ever sees the case ID, the applicant name and a hash; no
// documents or personal detail fields leave the gateway.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates an anchor client for the ledger service at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type anchorRequest struct {
	KYCIDName string `json:"kycIdName"`
	KYCHash   string `json:"kycHash"`
	Timestamp int64  `json:"timestamp"`
}

// Anchor posts the case digest to the ledger. Callers treat failures as
// log-and-continue: anchoring never gates the submission flow.
func (c *Client) Anchor(ctx context.Context, kycCase kyc.Case) error {
	payload, err := json.Marshal(anchorRequest{
		KYCIDName: fmt.Sprintf("%s:%s", kycCase.CaseID, kycCase.Applicant.FullName),
		KYCHash:   caseHash(kycCase),
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal anchor request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/kyctochain", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create anchor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("anchor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("anchor service returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}

// caseHash digests the fields that identify the submission. Image bytes are
// included so a swapped document after the fact breaks the recorded hash.
func caseHash(c kyc.Case) string {
	h := sha256.New()
	io.WriteString(h, c.CaseID)
	io.WriteString(h, c.Applicant.FullName)
	io.WriteString(h, c.Applicant.DateOfBirth)
	io.WriteString(h, c.SubmittedAt.UTC().Format(time.RFC3339))
	for _, d := range c.Documents {
		io.WriteString(h, string(d.Type))
		h.Write(d.Image)
	}
	if c.Selfie != nil {
		h.Write(c.Selfie.Image)
	}
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
