package handler

import (
	"time"

	"kycgate/internal/kyc"
)

// CreateCaseResponse returns the server-generated identifiers for stage one.
type CreateCaseResponse struct {
	CaseID      string    `json:"caseId"`
	SubmittedAt time.Time `json:"submittedAt"`
	ExpiryDate  time.Time `json:"expiryDate"`
	Message     string    `json:"message"`
}

// MessageResponse acknowledges a stage write.
type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyResponse is the verification display payload.
type VerifyResponse struct {
	State      string    `json:"state"`
	CaseID     string    `json:"caseId"`
	ExpiryDate time.Time `json:"expiryDate"`
	Name       string    `json:"name"`
}

// CaseSummaryResponse lets a recovering client inspect which stages
// completed without shipping image bytes back over the wire.
type CaseSummaryResponse struct {
	CaseID        string                `json:"caseId"`
	Applicant     kyc.Applicant         `json:"applicant"`
	DocumentTypes []string              `json:"documentTypes"`
	DocumentCount int                   `json:"documentCount"`
	HasSelfie     bool                  `json:"hasSelfie"`
	Verified      kyc.VerificationFlags `json:"verified"`
	ConsentGiven  bool                  `json:"consentGiven"`
	SubmittedAt   time.Time             `json:"submittedAt"`
	ExpiryDate    time.Time             `json:"expiryDate"`
}

func newCaseSummary(c kyc.Case) CaseSummaryResponse {
	types := make([]string, 0, len(c.Documents))
	for _, d := range c.Documents {
		types = append(types, string(d.Type))
	}
	return CaseSummaryResponse{
		CaseID:        c.CaseID,
		Applicant:     c.Applicant,
		DocumentTypes: types,
		DocumentCount: len(c.Documents),
		HasSelfie:     c.Selfie != nil,
		Verified:      c.Verified,
		ConsentGiven:  c.ConsentGiven,
		SubmittedAt:   c.SubmittedAt,
		ExpiryDate:    c.ExpiryDate,
	}
}
