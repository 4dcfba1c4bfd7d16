package wizard

import (
	"fmt"

	"github.com/google/uuid"

	"kycgate/internal/facematch"
	"kycgate/internal/kyc"
)

// Step identifies the active step of the intake wizard. Steps are linear;
// exactly one is active at a time.
type Step string

const (
	StepUserDetails      Step = "user_details"
	StepDocumentUpload   Step = "document_upload"
	StepKYCVerification  Step = "kyc_verification"
	StepFaceVerification Step = "face_verification"
	StepReviewAndSubmit  Step = "review_and_submit"
	StepSubmitted        Step = "submitted"
)

var stepOrder = []Step{
	StepUserDetails,
	StepDocumentUpload,
	StepKYCVerification,
	StepFaceVerification,
	StepReviewAndSubmit,
	StepSubmitted,
}

// SelectedDocument is one identity document accumulated in the wizard. Back
// is required only for document types that carry data on both sides.
type SelectedDocument struct {
	Type           kyc.DocumentType
	Front          []byte
	Back           []byte
	ContentType    string
	DocumentNumber string
}

// Wizard is the intake form controller. It accumulates all applicant data
// locally and talks to the backend only at the face verification step and at
// final submission. Moving backward never discards accumulated state.
type Wizard struct {
	step Step

	applicant   kyc.Applicant
	documents   []SelectedDocument
	selfie      []byte
	selfieType  string
	decision    *facematch.Decision
	otpVerified bool
	consent     bool

	// clientRef is fixed for the lifetime of the wizard so a retried
	// submission resolves to the same backend case.
	clientRef string
	caseID    string

	// Stage completion flags let a retried Submit resume from the next
	// incomplete stage instead of re-appending documents.
	docsAttached   bool
	selfieAttached bool
	faceRecorded   bool
}

// New creates a wizard positioned at the first step.
func New() *Wizard {
	return &Wizard{
		step:      StepUserDetails,
		clientRef: uuid.NewString(),
	}
}

// Step returns the active step.
func (w *Wizard) Step() Step { return w.step }

// ClientRef returns the idempotency key used for submission.
func (w *Wizard) ClientRef() string { return w.clientRef }

// CaseID returns the backend case identifier once submission has created one.
func (w *Wizard) CaseID() string { return w.caseID }

// SetApplicant records the applicant details entered at the first step.
func (w *Wizard) SetApplicant(a kyc.Applicant) { w.applicant = a }

// AddDocument appends a selected document. Documents added after a partial
// submit must reach the backend on the next attempt, so the stage is
// reopened.
func (w *Wizard) AddDocument(d SelectedDocument) {
	w.documents = append(w.documents, d)
	w.docsAttached = false
}

// RemoveDocument drops the document at index i, if present.
func (w *Wizard) RemoveDocument(i int) {
	if i < 0 || i >= len(w.documents) {
		return
	}
	w.documents = append(w.documents[:i], w.documents[i+1:]...)
}

// Documents returns the accumulated documents in selection order.
func (w *Wizard) Documents() []SelectedDocument { return w.documents }

// SetSelfie records a captured selfie. Retaking replaces the previous capture
// and invalidates any earlier match decision. The selfie stage is reopened so
// a retake after a partial submit overwrites the stale capture on retry
// instead of being skipped.
func (w *Wizard) SetSelfie(image []byte, contentType string) {
	w.selfie = image
	w.selfieType = contentType
	w.decision = nil
	w.selfieAttached = false
	w.faceRecorded = false
}

// RecordDecision stores the engine's latest verdict for the current selfie.
// A fresh verdict supersedes whatever the backend already saw, so the
// face-match stage is reopened too.
func (w *Wizard) RecordDecision(d facematch.Decision) {
	w.decision = &d
	w.faceRecorded = false
}

// Decision returns the latest match decision, or nil if none was recorded.
func (w *Wizard) Decision() *facematch.Decision { return w.decision }

// MarkOTPVerified records that the optional phone verification succeeded.
func (w *Wizard) MarkOTPVerified() { w.otpVerified = true }

// SetConsent records the consent checkbox state.
func (w *Wizard) SetConsent(given bool) { w.consent = given }

// CanAdvance reports whether the active step's exit predicate holds,
// evaluated purely from accumulated local data. The second return value names
// the unmet requirement.
func (w *Wizard) CanAdvance() (bool, string) {
	switch w.step {
	case StepUserDetails:
		if err := w.applicant.Validate(); err != nil {
			return false, err.Error()
		}
		return true, ""
	case StepDocumentUpload:
		if len(w.documents) == 0 {
			return false, "at least one document is required"
		}
		for _, d := range w.documents {
			if len(d.Front) == 0 {
				return false, fmt.Sprintf("%s: front image is required", d.Type)
			}
			if kyc.RequiresBackImage(d.Type) && len(d.Back) == 0 {
				return false, fmt.Sprintf("%s: back image is required", d.Type)
			}
		}
		return true, ""
	case StepKYCVerification:
		// Phone verification is optional; the step never blocks.
		return true, ""
	case StepFaceVerification:
		if len(w.selfie) == 0 {
			return false, "a selfie must be captured"
		}
		if w.decision == nil || !w.decision.Passed {
			return false, "face verification must pass"
		}
		return true, ""
	case StepReviewAndSubmit:
		if !w.consent {
			return false, "consent must be given"
		}
		return true, ""
	default:
		return false, "no further steps"
	}
}

// Next advances to the following step if the exit predicate holds.
// ReviewAndSubmit is left via Submit, not Next.
func (w *Wizard) Next() error {
	if w.step == StepReviewAndSubmit || w.step == StepSubmitted {
		return fmt.Errorf("cannot advance from %s", w.step)
	}
	ok, reason := w.CanAdvance()
	if !ok {
		return fmt.Errorf("cannot leave %s: %s", w.step, reason)
	}
	w.step = stepOrder[stepIndex(w.step)+1]
	return nil
}

// Previous moves back one step. Always permitted; accumulated state is kept
// so re-entering a step shows previously entered values.
func (w *Wizard) Previous() {
	idx := stepIndex(w.step)
	if idx <= 0 || w.step == StepSubmitted {
		return
	}
	w.step = stepOrder[idx-1]
}

func stepIndex(s Step) int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}
