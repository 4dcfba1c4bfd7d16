package wizard

import (
	"context"
	"fmt"

	"kycgate/internal/kyc"
)

// StageClient executes the backend submission stages. The wizard drives them
// in sequence; each stage is independently retryable.
type StageClient interface {
	CreateCase(ctx context.Context, applicant kyc.Applicant, clientRef string) (string, error)
	AttachDocuments(ctx context.Context, caseID string, docs []SelectedDocument) error
	AttachSelfie(ctx context.Context, caseID string, image []byte, contentType string) error
	RecordFaceMatch(ctx context.Context, caseID string, matched bool) error
	RecordConsent(ctx context.Context, caseID string, consentGiven bool) error
}

// Submit runs the staged submission from ReviewAndSubmit. Any stage failure
// leaves the wizard in ReviewAndSubmit with all accumulated data intact;
// calling Submit again resumes with the same clientRef, so the backend
// resolves the retry to the already-created case instead of allocating a
// duplicate.
func (w *Wizard) Submit(ctx context.Context, client StageClient) error {
	if w.step != StepReviewAndSubmit {
		return fmt.Errorf("cannot submit from %s", w.step)
	}
	if ok, reason := w.CanAdvance(); !ok {
		return fmt.Errorf("cannot submit: %s", reason)
	}

	if w.caseID == "" {
		caseID, err := client.CreateCase(ctx, w.applicant, w.clientRef)
		if err != nil {
			return fmt.Errorf("create case: %w", err)
		}
		w.caseID = caseID
	}

	if len(w.documents) > 0 && !w.docsAttached {
		if err := client.AttachDocuments(ctx, w.caseID, w.documents); err != nil {
			return fmt.Errorf("attach documents: %w", err)
		}
		w.docsAttached = true
	}
	if len(w.selfie) > 0 && !w.selfieAttached {
		if err := client.AttachSelfie(ctx, w.caseID, w.selfie, w.selfieType); err != nil {
			return fmt.Errorf("attach selfie: %w", err)
		}
		w.selfieAttached = true
	}
	if w.decision != nil && !w.faceRecorded {
		if err := client.RecordFaceMatch(ctx, w.caseID, w.decision.Passed); err != nil {
			return fmt.Errorf("record face match: %w", err)
		}
		w.faceRecorded = true
	}
	if err := client.RecordConsent(ctx, w.caseID, w.consent); err != nil {
		return fmt.Errorf("record consent: %w", err)
	}

	w.step = StepSubmitted
	return nil
}
