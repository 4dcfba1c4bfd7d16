package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"kycgate/internal/kyc"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/sentinel"
)

// CaseService is the subset of the submission orchestrator the OTP flow
// needs: resolving the registered phone number and flipping the verified flag.
type CaseService interface {
	GetCase(ctx context.Context, caseID string) (kyc.Case, error)
	MarkOTPVerified(ctx context.Context, caseID string) error
}

// Sender dispatches the code to the applicant's phone.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Service issues and verifies one-time phone verification codes.
type Service struct {
	cases  CaseService
	store  Store
	sender Sender
	ttl    time.Duration
	logger *slog.Logger
}

// New creates an OTP Service. sender may be nil when no SMS provider is
// configured; issued codes are then only logged, which is enough for
// development.
func New(cases CaseService, store Store, sender Sender, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		cases:  cases,
		store:  store,
		sender: sender,
		ttl:    ttl,
		logger: logger,
	}
}

// Issue generates a fresh 6-digit code for the case, stores it with the
// configured TTL and dispatches it to the applicant's registered phone.
// Reissuing replaces any outstanding code.
func (s *Service) Issue(ctx context.Context, caseID string) error {
	c, err := s.cases.GetCase(ctx, caseID)
	if err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate otp code: %w", err)
	}
	if err := s.store.SaveCode(ctx, caseID, code, s.ttl); err != nil {
		return dErrors.New(dErrors.CodeUnavailable, "failed to store verification code")
	}

	if s.sender == nil {
		s.logger.InfoContext(ctx, "sms sender not configured, code not dispatched",
			"case_id", caseID,
			"code", code,
		)
		return nil
	}
	body := fmt.Sprintf("Your KYC verification code is %s. It expires in %d minutes.",
		code, int(s.ttl.Minutes()))
	if err := s.sender.Send(ctx, c.Applicant.Phone, body); err != nil {
		s.logger.ErrorContext(ctx, "failed to send otp sms",
			"case_id", caseID,
			"error", err.Error(),
		)
		return dErrors.New(dErrors.CodeUnavailable, "failed to send verification code")
	}
	return nil
}

// Verify consumes the outstanding code for the case and, on a match, sets the
// OTP-verified flag. Codes are single-use: any attempt consumes the code, so
// a wrong guess forces a reissue.
func (s *Service) Verify(ctx context.Context, caseID, code string) error {
	if _, err := s.cases.GetCase(ctx, caseID); err != nil {
		return err
	}

	stored, err := s.store.ConsumeCode(ctx, caseID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeBadRequest, "no verification code outstanding")
	}
	if err != nil {
		return dErrors.New(dErrors.CodeUnavailable, "failed to check verification code")
	}
	if stored != code {
		return dErrors.New(dErrors.CodeBadRequest, "invalid verification code")
	}
	return s.cases.MarkOTPVerified(ctx, caseID)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
