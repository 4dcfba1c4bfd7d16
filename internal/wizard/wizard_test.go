package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycgate/internal/facematch"
	"kycgate/internal/kyc"
)

func validApplicant() kyc.Applicant {
	return kyc.Applicant{
		FullName:    "Asha Verma",
		DateOfBirth: "1991-07-22",
		Gender:      "female",
		Address:     "14 MG Road, Pune",
		Email:       "asha.verma@example.com",
		State:       "Maharashtra",
		Phone:       "+919812345678",
	}
}

func panDocument() SelectedDocument {
	return SelectedDocument{Type: kyc.DocumentTypePAN, Front: []byte("pan-front"), DocumentNumber: "ABCDE1234F"}
}

// advanceTo walks a wizard to the given step with valid data at each stage.
func advanceTo(t *testing.T, target Step) *Wizard {
	t.Helper()
	w := New()
	w.SetApplicant(validApplicant())
	for w.Step() != target {
		switch w.Step() {
		case StepDocumentUpload:
			if len(w.Documents()) == 0 {
				w.AddDocument(panDocument())
			}
		case StepFaceVerification:
			if w.Decision() == nil {
				w.SetSelfie([]byte("live"), "image/jpeg")
				w.RecordDecision(facematch.Decision{MatchScore: 90, Passed: true})
			}
		}
		require.NoError(t, w.Next())
	}
	return w
}

func TestNew_StartsAtUserDetails(t *testing.T) {
	w := New()
	assert.Equal(t, StepUserDetails, w.Step())
	assert.NotEmpty(t, w.ClientRef())
}

func TestUserDetails_RequiresAllFields(t *testing.T) {
	w := New()
	incomplete := validApplicant()
	incomplete.Phone = ""
	w.SetApplicant(incomplete)

	ok, reason := w.CanAdvance()
	assert.False(t, ok)
	assert.Contains(t, reason, "phone")
	require.Error(t, w.Next())
	assert.Equal(t, StepUserDetails, w.Step())

	w.SetApplicant(validApplicant())
	require.NoError(t, w.Next())
	assert.Equal(t, StepDocumentUpload, w.Step())
}

func TestDocumentUpload_Gating(t *testing.T) {
	t.Run("requires at least one document", func(t *testing.T) {
		w := advanceTo(t, StepDocumentUpload)
		ok, _ := w.CanAdvance()
		assert.False(t, ok)
	})

	t.Run("front-only is enough for single-sided types", func(t *testing.T) {
		w := advanceTo(t, StepDocumentUpload)
		w.AddDocument(panDocument())
		ok, _ := w.CanAdvance()
		assert.True(t, ok)
	})

	t.Run("two-sided types require a back image", func(t *testing.T) {
		w := advanceTo(t, StepDocumentUpload)
		w.AddDocument(SelectedDocument{Type: kyc.DocumentTypeAadhaar, Front: []byte("front")})
		ok, reason := w.CanAdvance()
		assert.False(t, ok)
		assert.Contains(t, reason, "back image")

		w.RemoveDocument(0)
		w.AddDocument(SelectedDocument{
			Type:  kyc.DocumentTypeAadhaar,
			Front: []byte("front"),
			Back:  []byte("back"),
		})
		ok, _ = w.CanAdvance()
		assert.True(t, ok)
	})
}

func TestKYCVerification_OTPIsOptional(t *testing.T) {
	w := advanceTo(t, StepKYCVerification)
	ok, _ := w.CanAdvance()
	assert.True(t, ok, "phone verification never blocks the wizard")
}

func TestFaceVerification_Gating(t *testing.T) {
	t.Run("requires a selfie", func(t *testing.T) {
		w := advanceTo(t, StepFaceVerification)
		w.SetSelfie(nil, "")
		ok, _ := w.CanAdvance()
		assert.False(t, ok)
	})

	t.Run("blocks on failed match even though the backend would accept it", func(t *testing.T) {
		w := advanceTo(t, StepFaceVerification)
		w.SetSelfie([]byte("live"), "image/jpeg")
		w.RecordDecision(facematch.Decision{MatchScore: 40, Passed: false})
		ok, reason := w.CanAdvance()
		assert.False(t, ok)
		assert.Contains(t, reason, "face verification")
	})

	t.Run("retake invalidates the previous decision", func(t *testing.T) {
		w := advanceTo(t, StepFaceVerification)
		w.SetSelfie([]byte("live"), "image/jpeg")
		w.RecordDecision(facematch.Decision{MatchScore: 90, Passed: true})
		w.SetSelfie([]byte("retake"), "image/jpeg")
		ok, _ := w.CanAdvance()
		assert.False(t, ok, "a fresh capture must be re-scored")
	})

	t.Run("passes with selfie and passing decision", func(t *testing.T) {
		w := advanceTo(t, StepFaceVerification)
		w.SetSelfie([]byte("live"), "image/jpeg")
		w.RecordDecision(facematch.Decision{MatchScore: 90, Passed: true})
		require.NoError(t, w.Next())
		assert.Equal(t, StepReviewAndSubmit, w.Step())
	})
}

func TestReviewAndSubmit_RequiresConsent(t *testing.T) {
	w := advanceTo(t, StepReviewAndSubmit)
	ok, reason := w.CanAdvance()
	assert.False(t, ok)
	assert.Contains(t, reason, "consent")

	w.SetConsent(true)
	ok, _ = w.CanAdvance()
	assert.True(t, ok)
}

func TestPrevious_IsAlwaysNonDestructive(t *testing.T) {
	w := advanceTo(t, StepReviewAndSubmit)
	w.SetConsent(true)

	w.Previous()
	assert.Equal(t, StepFaceVerification, w.Step())
	w.Previous()
	assert.Equal(t, StepKYCVerification, w.Step())
	w.Previous()
	assert.Equal(t, StepDocumentUpload, w.Step())
	w.Previous()
	assert.Equal(t, StepUserDetails, w.Step())
	w.Previous()
	assert.Equal(t, StepUserDetails, w.Step(), "Previous at the first step is a no-op")

	// Everything entered earlier is still there.
	assert.Len(t, w.Documents(), 1)
	require.NotNil(t, w.Decision())
	assert.True(t, w.Decision().Passed)

	// Walking forward again needs no re-entry.
	for w.Step() != StepReviewAndSubmit {
		require.NoError(t, w.Next())
	}
	ok, _ := w.CanAdvance()
	assert.True(t, ok, "consent survived the round trip")
}
