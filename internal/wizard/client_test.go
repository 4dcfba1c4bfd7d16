package wizard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycgate/internal/kyc"
)

func TestHTTPStageClient_CreateCase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/kyc/details", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Asha Verma", body["fullName"])
		assert.Equal(t, "ref-1", body["clientRef"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"caseId":"KYC-REMOTE1"}`))
	}))
	defer server.Close()

	client := NewHTTPStageClient(server.URL, "test-token")
	caseID, err := client.CreateCase(context.Background(), validApplicant(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "KYC-REMOTE1", caseID)
}

func TestHTTPStageClient_CreateCase_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad_request","error_description":"missing required field: email"}`))
	}))
	defer server.Close()

	client := NewHTTPStageClient(server.URL, "test-token")
	_, err := client.CreateCase(context.Background(), kyc.Applicant{}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_request")
	assert.Contains(t, err.Error(), "missing required field")
}

// A two-sided document must upload as two files, each paired to a metadata
// entry by positional index.
func TestHTTPStageClient_AttachDocuments_PairsSidesWithMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/kyc/KYC-1/documents", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		files := r.MultipartForm.File["docs"]
		metas := r.MultipartForm.Value["docMeta"]
		require.Len(t, files, 3)
		require.Len(t, metas, 3)

		for i, raw := range metas {
			var meta struct {
				Index int    `json:"index"`
				Type  string `json:"type"`
			}
			require.NoError(t, json.Unmarshal([]byte(raw), &meta))
			assert.Equal(t, i, meta.Index)
		}

		_, _ = w.Write([]byte(`{"message":"Documents uploaded successfully"}`))
	}))
	defer server.Close()

	client := NewHTTPStageClient(server.URL, "test-token")
	docs := []SelectedDocument{
		{Type: kyc.DocumentTypeAadhaar, Front: []byte("front"), Back: []byte("back"), ContentType: "image/jpeg"},
		{Type: kyc.DocumentTypePAN, Front: []byte("pan")},
	}
	require.NoError(t, client.AttachDocuments(context.Background(), "KYC-1", docs))
}

func TestHTTPStageClient_RecordFaceMatch(t *testing.T) {
	var gotMatched *bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/kyc/KYC-1/face-match", r.URL.Path)
		var body map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		v := body["matched"]
		gotMatched = &v
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer server.Close()

	client := NewHTTPStageClient(server.URL, "test-token")
	require.NoError(t, client.RecordFaceMatch(context.Background(), "KYC-1", true))
	require.NotNil(t, gotMatched)
	assert.True(t, *gotMatched)
}

func TestHTTPStageClient_RecordConsent(t *testing.T) {
	var gotConsent *bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/kyc/KYC-1/consent", r.URL.Path)
		var body map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		v := body["consentGiven"]
		gotConsent = &v
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer server.Close()

	client := NewHTTPStageClient(server.URL, "test-token")
	require.NoError(t, client.RecordConsent(context.Background(), "KYC-1", false))
	require.NotNil(t, gotConsent)
	assert.False(t, *gotConsent)
}
