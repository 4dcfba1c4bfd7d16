package kyc

import (
	"context"
	"time"
)

// Store persists cases. Mutations are scoped to the sub-field they own so a
// document append can never clobber a concurrently attached selfie: stores
// must not write the whole record back from a stale in-memory copy.
type Store interface {
	// Create persists a new case. Returns sentinel.ErrConflict when the
	// case ID or a non-empty client ref already exists.
	Create(ctx context.Context, c Case) error

	// FindByID returns the full case including attachments, or
	// sentinel.ErrNotFound.
	FindByID(ctx context.Context, caseID string) (Case, error)

	// FindByClientRef returns the case created with the given idempotency
	// ref, or sentinel.ErrNotFound.
	FindByClientRef(ctx context.Context, clientRef string) (Case, error)

	// AppendDocuments appends the batch to the case's document list.
	// All-or-nothing: no partial append.
	AppendDocuments(ctx context.Context, caseID string, docs []Document) error

	// SetSelfie replaces the selfie wholesale. Last write wins.
	SetSelfie(ctx context.Context, caseID string, selfie Selfie) error

	// SetConsent sets consentGiven unconditionally, including to false.
	SetConsent(ctx context.Context, caseID string, consentGiven bool) error

	// SetOTPVerified flips only the OTP verification flag.
	SetOTPVerified(ctx context.Context, caseID string, verified bool) error

	// SetFaceMatched flips only the face-match flag.
	SetFaceMatched(ctx context.Context, caseID string, matched bool) error

	// ListStale returns cases created before cutoff that never progressed
	// past creation (no documents, no selfie, no consent). Input for an
	// external reaper; this service never deletes cases itself.
	ListStale(ctx context.Context, cutoff time.Time) ([]Case, error)
}
