package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycgate/internal/kyc"
	"kycgate/internal/platform/logger"
	dErrors "kycgate/pkg/domain-errors"
)

type stubCaseService struct {
	cases       map[string]kyc.Case
	otpVerified []string
}

func (s *stubCaseService) GetCase(_ context.Context, caseID string) (kyc.Case, error) {
	c, ok := s.cases[caseID]
	if !ok {
		return kyc.Case{}, dErrors.New(dErrors.CodeNotFound, "KYC ID not found")
	}
	return c, nil
}

func (s *stubCaseService) MarkOTPVerified(_ context.Context, caseID string) error {
	s.otpVerified = append(s.otpVerified, caseID)
	return nil
}

type recordingSender struct {
	to   string
	body string
	err  error
}

func (s *recordingSender) Send(_ context.Context, to, body string) error {
	if s.err != nil {
		return s.err
	}
	s.to = to
	s.body = body
	return nil
}

// recordingStore exposes the last saved code so tests can verify it without
// pulling it out of an SMS body.
type recordingStore struct {
	*InMemoryStore
	lastCode string
}

func (s *recordingStore) SaveCode(ctx context.Context, caseID, code string, ttl time.Duration) error {
	s.lastCode = code
	return s.InMemoryStore.SaveCode(ctx, caseID, code, ttl)
}

func newTestService() (*Service, *stubCaseService, *recordingStore, *recordingSender) {
	cases := &stubCaseService{cases: map[string]kyc.Case{
		"KYC-1": {CaseID: "KYC-1", Applicant: kyc.Applicant{Phone: "+919812345678"}},
	}}
	store := &recordingStore{InMemoryStore: NewInMemoryStore()}
	sender := &recordingSender{}
	svc := New(cases, store, sender, 5*time.Minute, logger.New())
	return svc, cases, store, sender
}

func TestIssue_SendsCodeToRegisteredPhone(t *testing.T) {
	svc, _, store, sender := newTestService()

	require.NoError(t, svc.Issue(context.Background(), "KYC-1"))
	assert.Len(t, store.lastCode, 6)
	assert.Equal(t, "+919812345678", sender.to)
	assert.Contains(t, sender.body, store.lastCode)
}

func TestIssue_UnknownCase(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.Issue(context.Background(), "KYC-MISSING")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestIssue_SenderFailureIsUnavailable(t *testing.T) {
	svc, _, _, sender := newTestService()
	sender.err = assert.AnError

	err := svc.Issue(context.Background(), "KYC-1")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnavailable))
}

func TestVerify_CorrectCodeMarksCase(t *testing.T) {
	svc, cases, store, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "KYC-1"))
	require.NoError(t, svc.Verify(ctx, "KYC-1", store.lastCode))
	assert.Equal(t, []string{"KYC-1"}, cases.otpVerified)
}

func TestVerify_WrongCodeConsumesIt(t *testing.T) {
	svc, cases, store, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "KYC-1"))

	err := svc.Verify(ctx, "KYC-1", "000000")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
	assert.Empty(t, cases.otpVerified)

	// Single-use: the burned code cannot be redeemed afterwards.
	err = svc.Verify(ctx, "KYC-1", store.lastCode)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestVerify_NoOutstandingCode(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.Verify(context.Background(), "KYC-1", "123456")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestVerify_ExpiredCode(t *testing.T) {
	cases := &stubCaseService{cases: map[string]kyc.Case{
		"KYC-1": {CaseID: "KYC-1", Applicant: kyc.Applicant{Phone: "+919812345678"}},
	}}
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	memory := NewInMemoryStore().WithClock(func() time.Time { return now })
	store := &recordingStore{InMemoryStore: memory}
	svc := New(cases, store, &recordingSender{}, 5*time.Minute, logger.New())
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "KYC-1"))
	now = now.Add(6 * time.Minute)

	err := svc.Verify(ctx, "KYC-1", store.lastCode)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
	assert.Empty(t, cases.otpVerified)
}

func TestIssue_ReissueReplacesCode(t *testing.T) {
	svc, cases, store, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "KYC-1"))
	first := store.lastCode
	require.NoError(t, svc.Issue(ctx, "KYC-1"))
	second := store.lastCode

	if first != second {
		err := svc.Verify(ctx, "KYC-1", first)
		require.Error(t, err, "a replaced code must not verify")
	}
	require.NoError(t, svc.Issue(ctx, "KYC-1"))
	require.NoError(t, svc.Verify(ctx, "KYC-1", store.lastCode))
	assert.Equal(t, []string{"KYC-1"}, cases.otpVerified)
}
