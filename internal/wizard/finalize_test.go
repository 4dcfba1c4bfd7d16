package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycgate/internal/facematch"
	"kycgate/internal/kyc"
)

type fakeStageClient struct {
	createCalls  int
	docCalls     int
	selfieCalls  int
	faceCalls    int
	consentCalls int

	seenRefs    []string
	lastSelfie  []byte
	lastMatched bool
	consentErr  error
	docErr      error
}

func (c *fakeStageClient) CreateCase(_ context.Context, _ kyc.Applicant, clientRef string) (string, error) {
	c.createCalls++
	c.seenRefs = append(c.seenRefs, clientRef)
	return "KYC-FAKE1", nil
}

func (c *fakeStageClient) AttachDocuments(_ context.Context, _ string, _ []SelectedDocument) error {
	c.docCalls++
	return c.docErr
}

func (c *fakeStageClient) AttachSelfie(_ context.Context, _ string, image []byte, _ string) error {
	c.selfieCalls++
	c.lastSelfie = image
	return nil
}

func (c *fakeStageClient) RecordFaceMatch(_ context.Context, _ string, matched bool) error {
	c.faceCalls++
	c.lastMatched = matched
	return nil
}

func (c *fakeStageClient) RecordConsent(_ context.Context, _ string, _ bool) error {
	c.consentCalls++
	return c.consentErr
}

func readyWizard(t *testing.T) *Wizard {
	t.Helper()
	w := advanceTo(t, StepReviewAndSubmit)
	w.SetConsent(true)
	return w
}

func TestSubmit_RunsStagesInOrder(t *testing.T) {
	w := readyWizard(t)
	client := &fakeStageClient{}

	require.NoError(t, w.Submit(context.Background(), client))
	assert.Equal(t, StepSubmitted, w.Step())
	assert.Equal(t, "KYC-FAKE1", w.CaseID())
	assert.Equal(t, 1, client.createCalls)
	assert.Equal(t, 1, client.docCalls)
	assert.Equal(t, 1, client.selfieCalls)
	assert.Equal(t, 1, client.faceCalls)
	assert.True(t, client.lastMatched)
	assert.Equal(t, 1, client.consentCalls)
}

func TestSubmit_OnlyFromReviewStep(t *testing.T) {
	w := advanceTo(t, StepDocumentUpload)
	err := w.Submit(context.Background(), &fakeStageClient{})
	require.Error(t, err)
}

func TestSubmit_RequiresConsent(t *testing.T) {
	w := advanceTo(t, StepReviewAndSubmit)
	client := &fakeStageClient{}
	err := w.Submit(context.Background(), client)
	require.Error(t, err)
	assert.Zero(t, client.createCalls)
}

// A failed stage keeps the wizard in ReviewAndSubmit; the retry reuses the
// same client ref and resumes from the incomplete stage rather than starting
// a fresh case.
func TestSubmit_FailureStaysRecoverable(t *testing.T) {
	w := readyWizard(t)
	client := &fakeStageClient{consentErr: errors.New("store unavailable")}

	err := w.Submit(context.Background(), client)
	require.Error(t, err)
	assert.Equal(t, StepReviewAndSubmit, w.Step())

	client.consentErr = nil
	require.NoError(t, w.Submit(context.Background(), client))
	assert.Equal(t, StepSubmitted, w.Step())

	assert.Equal(t, 1, client.createCalls, "retry must not create a second case")
	assert.Equal(t, 1, client.docCalls, "retry must not re-append documents")
	assert.Equal(t, 1, client.selfieCalls)
	assert.Equal(t, 1, client.faceCalls, "retry must not re-record the same decision")
	assert.Equal(t, 2, client.consentCalls)
	require.Len(t, client.seenRefs, 1)
	assert.Equal(t, w.ClientRef(), client.seenRefs[0])
}

func TestSubmit_EarlyFailureRetriesCreate(t *testing.T) {
	w := readyWizard(t)
	client := &fakeStageClient{docErr: errors.New("boom")}

	require.Error(t, w.Submit(context.Background(), client))
	assert.Equal(t, StepReviewAndSubmit, w.Step())

	client.docErr = nil
	require.NoError(t, w.Submit(context.Background(), client))

	assert.Equal(t, 1, client.createCalls)
	assert.Equal(t, 2, client.docCalls)
}

// A wizard with no selfie cannot normally reach review, but the submission
// path itself skips absent attachments rather than sending empty uploads.
func TestSubmit_SkipsAbsentAttachments(t *testing.T) {
	w := New()
	w.SetApplicant(validApplicant())
	w.step = StepReviewAndSubmit
	w.SetConsent(true)

	client := &fakeStageClient{}
	require.NoError(t, w.Submit(context.Background(), client))
	assert.Equal(t, 1, client.createCalls)
	assert.Zero(t, client.docCalls)
	assert.Zero(t, client.selfieCalls)
	assert.Zero(t, client.faceCalls)
	assert.Equal(t, 1, client.consentCalls)
}

// Going back and retaking the selfie after a failed submission reopens the
// selfie and face-match stages, so the retry overwrites the stale capture
// instead of skipping it.
func TestSubmit_RetakeAfterFailureReplacesStaleCapture(t *testing.T) {
	w := readyWizard(t)
	client := &fakeStageClient{consentErr: errors.New("store unavailable")}

	require.Error(t, w.Submit(context.Background(), client))
	assert.Equal(t, []byte("live"), client.lastSelfie)

	w.Previous()
	require.Equal(t, StepFaceVerification, w.Step())
	w.SetSelfie([]byte("retaken"), "image/jpeg")
	w.RecordDecision(facematch.Decision{MatchScore: 95, Passed: true})
	require.NoError(t, w.Next())

	client.consentErr = nil
	require.NoError(t, w.Submit(context.Background(), client))

	assert.Equal(t, []byte("retaken"), client.lastSelfie)
	assert.Equal(t, 2, client.selfieCalls, "the retake must reach the backend")
	assert.Equal(t, 2, client.faceCalls, "the fresh decision must reach the backend")
	assert.Equal(t, 1, client.createCalls, "retry must not create a second case")
}

// A document added after a failed submission is part of the next attempt.
func TestSubmit_LateDocumentReachesBackend(t *testing.T) {
	w := readyWizard(t)
	client := &fakeStageClient{consentErr: errors.New("store unavailable")}

	require.Error(t, w.Submit(context.Background(), client))

	w.AddDocument(SelectedDocument{Type: kyc.DocumentTypePassport, Front: []byte("passport-front")})

	client.consentErr = nil
	require.NoError(t, w.Submit(context.Background(), client))
	assert.Equal(t, 2, client.docCalls)
}
