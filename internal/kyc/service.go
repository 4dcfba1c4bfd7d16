package kyc

import (
	"context"
	"errors"
	"time"

	"kycgate/internal/scanlog"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/sentinel"
)

// ScanLogger appends an audit record each time a completed case is looked up
// for verification display. It never mutates the case it references.
type ScanLogger interface {
	Record(ctx context.Context, rec scanlog.Record) error
}

// Service is the submission orchestrator. The four stage operations are
// independent and individually retriable: there is no cross-stage
// transaction, and recovery from partial failure is forward-only. A client
// inspects the case by ID and resumes from the next incomplete stage.
type Service struct {
	store    Store
	scans    ScanLogger
	validity time.Duration
	clock    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewService(store Store, scans ScanLogger, validity time.Duration, opts ...Option) *Service {
	s := &Service{
		store:    store,
		scans:    scans,
		validity: validity,
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateCase allocates a fresh case ID and persists the case with empty
// attachments and consentGiven=false. The expiry date is always derived here,
// never client-supplied. A non-empty clientRef makes the call idempotent:
// repeating it returns the case created by the first call.
func (s *Service) CreateCase(ctx context.Context, applicant Applicant, clientRef string) (Case, error) {
	if err := applicant.Validate(); err != nil {
		return Case{}, err
	}

	if clientRef != "" {
		existing, err := s.store.FindByClientRef(ctx, clientRef)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return Case{}, dErrors.New(dErrors.CodeInternal, "failed to look up client ref")
		}
	}

	now := s.clock()
	c := Case{
		CaseID:      NewCaseID(),
		Applicant:   applicant,
		ClientRef:   clientRef,
		SubmittedAt: now,
		ExpiryDate:  now.Add(s.validity),
	}
	if err := s.store.Create(ctx, c); err != nil {
		if clientRef != "" && errors.Is(err, sentinel.ErrConflict) {
			// Lost a creation race on the same ref; the winner's case is
			// the canonical one.
			existing, ferr := s.store.FindByClientRef(ctx, clientRef)
			if ferr == nil {
				return existing, nil
			}
		}
		return Case{}, dErrors.New(dErrors.CodeInternal, "failed to save user details")
	}
	return c, nil
}

// AttachDocuments appends a validated batch to the case's documents.
// Append-only semantics make re-running this stage safe: a retry adds, never
// replaces. The whole batch is rejected on any invalid entry.
func (s *Service) AttachDocuments(ctx context.Context, caseID string, docs []Document) error {
	if len(docs) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "no documents provided")
	}
	for _, d := range docs {
		if !documentTypes[d.Type] {
			return dErrors.New(dErrors.CodeBadRequest, "unknown document type: "+string(d.Type))
		}
		if len(d.Image) == 0 {
			return dErrors.New(dErrors.CodeBadRequest, "document image must not be empty")
		}
	}
	if _, err := s.findCase(ctx, caseID); err != nil {
		return err
	}
	if err := s.store.AppendDocuments(ctx, caseID, docs); err != nil {
		return s.storeErr(err, "failed to process documents")
	}
	return nil
}

// AttachSelfie replaces the selfie wholesale. Identical retries converge to
// the same state; a differing call is an explicit retake.
func (s *Service) AttachSelfie(ctx context.Context, caseID string, selfie Selfie) error {
	if len(selfie.Image) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "no selfie file provided")
	}
	if _, err := s.findCase(ctx, caseID); err != nil {
		return err
	}
	if err := s.store.SetSelfie(ctx, caseID, selfie); err != nil {
		return s.storeErr(err, "failed to upload selfie")
	}
	return nil
}

// RecordConsent sets consentGiven unconditionally to the supplied value.
// Explicit refusal (false) is a valid terminal state, not an error.
func (s *Service) RecordConsent(ctx context.Context, caseID string, consentGiven bool) error {
	if _, err := s.findCase(ctx, caseID); err != nil {
		return err
	}
	if err := s.store.SetConsent(ctx, caseID, consentGiven); err != nil {
		return s.storeErr(err, "failed to record consent")
	}
	return nil
}

// MarkOTPVerified flips the OTP flag after a successful code check.
func (s *Service) MarkOTPVerified(ctx context.Context, caseID string) error {
	if err := s.store.SetOTPVerified(ctx, caseID, true); err != nil {
		return s.storeErr(err, "failed to record OTP verification")
	}
	return nil
}

// MarkFaceMatched records the face verification outcome. A failed match is a
// valid value: the case proceeds to manual review rather than being rejected.
func (s *Service) MarkFaceMatched(ctx context.Context, caseID string, matched bool) error {
	if err := s.store.SetFaceMatched(ctx, caseID, matched); err != nil {
		return s.storeErr(err, "failed to record face match result")
	}
	return nil
}

// GetCase returns the case so a client recovering from a partial submission
// can inspect which stages completed.
func (s *Service) GetCase(ctx context.Context, caseID string) (Case, error) {
	return s.findCase(ctx, caseID)
}

// ScanResult is the verification display payload.
type ScanResult struct {
	CaseID     string
	Name       string
	State      string
	ExpiryDate time.Time
}

// VerifyScan looks up a case for verification display and appends a scan
// audit record as a side effect. The scan record never mutates the case.
func (s *Service) VerifyScan(ctx context.Context, caseID string) (ScanResult, error) {
	c, err := s.findCase(ctx, caseID)
	if err != nil {
		return ScanResult{}, err
	}
	rec := scanlog.Record{
		CaseID:        c.CaseID,
		ApplicantName: c.Applicant.FullName,
		State:         c.Applicant.State,
		ExpiryDate:    c.ExpiryDate,
		ScannedAt:     s.clock(),
	}
	if err := s.scans.Record(ctx, rec); err != nil {
		return ScanResult{}, dErrors.New(dErrors.CodeInternal, "failed to log verification scan")
	}
	return ScanResult{
		CaseID:     c.CaseID,
		Name:       c.Applicant.FullName,
		State:      c.Applicant.State,
		ExpiryDate: c.ExpiryDate,
	}, nil
}

func (s *Service) findCase(ctx context.Context, caseID string) (Case, error) {
	c, err := s.store.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Case{}, dErrors.New(dErrors.CodeNotFound, "KYC ID not found")
		}
		return Case{}, dErrors.New(dErrors.CodeInternal, "failed to load case")
	}
	return c, nil
}

func (s *Service) storeErr(err error, message string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "KYC ID not found")
	}
	return dErrors.New(dErrors.CodeInternal, message)
}
