package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"kycgate/internal/kyc"
)

// HTTPStageClient is a StageClient talking to the gateway's KYC endpoints.
type HTTPStageClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPStageClient creates a stage client for the gateway at baseURL,
// authenticating with the given bearer token.
func NewHTTPStageClient(baseURL, token string) *HTTPStageClient {
	return &HTTPStageClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type createCaseRequest struct {
	FullName    string `json:"fullName"`
	DateOfBirth string `json:"dob"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	State       string `json:"state"`
	Phone       string `json:"phone"`
	AltPhone    string `json:"altPhone,omitempty"`
	ClientRef   string `json:"clientRef,omitempty"`
}

type createCaseResponse struct {
	CaseID string `json:"caseId"`
}

func (c *HTTPStageClient) CreateCase(ctx context.Context, applicant kyc.Applicant, clientRef string) (string, error) {
	payload, err := json.Marshal(createCaseRequest{
		FullName:    applicant.FullName,
		DateOfBirth: applicant.DateOfBirth,
		Gender:      applicant.Gender,
		Address:     applicant.Address,
		Email:       applicant.Email,
		State:       applicant.State,
		Phone:       applicant.Phone,
		AltPhone:    applicant.AltPhone,
		ClientRef:   clientRef,
	})
	if err != nil {
		return "", fmt.Errorf("marshal create case request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/kyc/details", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", readAPIError(resp)
	}

	var created createCaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode create case response: %w", err)
	}
	return created.CaseID, nil
}

type documentMeta struct {
	Index          int    `json:"index"`
	Type           string `json:"type"`
	DocumentNumber string `json:"documentNumber,omitempty"`
}

// AttachDocuments uploads every captured side as its own file, paired to a
// metadata entry by positional index. A two-sided document contributes two
// files carrying the same type and number.
func (c *HTTPStageClient) AttachDocuments(ctx context.Context, caseID string, docs []SelectedDocument) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	idx := 0
	addSide := func(d SelectedDocument, side string, image []byte) error {
		filename := fmt.Sprintf("doc-%d-%s", idx, side)
		if err := writeFilePart(writer, "docs", filename, d.ContentType, image); err != nil {
			return err
		}
		meta, err := json.Marshal(documentMeta{
			Index:          idx,
			Type:           string(d.Type),
			DocumentNumber: d.DocumentNumber,
		})
		if err != nil {
			return fmt.Errorf("marshal document metadata: %w", err)
		}
		if err := writer.WriteField("docMeta", string(meta)); err != nil {
			return fmt.Errorf("write document metadata: %w", err)
		}
		idx++
		return nil
	}

	for _, d := range docs {
		if err := addSide(d, "front", d.Front); err != nil {
			return err
		}
		if len(d.Back) > 0 {
			if err := addSide(d, "back", d.Back); err != nil {
				return err
			}
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart form: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/kyc/"+caseID+"/documents", writer.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	return nil
}

func (c *HTTPStageClient) AttachSelfie(ctx context.Context, caseID string, image []byte, contentType string) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writeFilePart(writer, "selfie", "selfie", contentType, image); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart form: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/kyc/"+caseID+"/selfie", writer.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	return nil
}

func (c *HTTPStageClient) RecordFaceMatch(ctx context.Context, caseID string, matched bool) error {
	payload, err := json.Marshal(map[string]bool{"matched": matched})
	if err != nil {
		return fmt.Errorf("marshal face match request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/kyc/"+caseID+"/face-match", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	return nil
}

func (c *HTTPStageClient) RecordConsent(ctx context.Context, caseID string, consentGiven bool) error {
	payload, err := json.Marshal(map[string]bool{"consentGiven": consentGiven})
	if err != nil {
		return fmt.Errorf("marshal consent request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/kyc/"+caseID+"/consent", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	return nil
}

func (c *HTTPStageClient) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", path, err)
	}
	return resp, nil
}

func writeFilePart(writer *multipart.Writer, field, filename, contentType string, data []byte) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create form file %s: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write form file %s: %w", field, err)
	}
	return nil
}

type apiError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	var parsed apiError
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Code != "" {
		msg := parsed.Code
		if parsed.Description != "" {
			msg += ": " + parsed.Description
		}
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, msg)
	}
	return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
