package kyc

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "kycgate/pkg/domain-errors"
)

// DocumentType enumerates the identity documents accepted for KYC.
type DocumentType string

const (
	DocumentTypeAadhaar        DocumentType = "Aadhaar"
	DocumentTypePAN            DocumentType = "PAN"
	DocumentTypePassport       DocumentType = "Passport"
	DocumentTypeDrivingLicense DocumentType = "Driving License"
	DocumentTypeVoterID        DocumentType = "Voter ID"
)

var documentTypes = map[DocumentType]bool{
	DocumentTypeAadhaar:        true,
	DocumentTypePAN:            true,
	DocumentTypePassport:       true,
	DocumentTypeDrivingLicense: true,
	DocumentTypeVoterID:        true,
}

// wire aliases used by upload clients; the canonical value is the enum above.
var documentTypeAliases = map[string]DocumentType{
	"aadhaar":         DocumentTypeAadhaar,
	"pan":             DocumentTypePAN,
	"passport":        DocumentTypePassport,
	"driving_license": DocumentTypeDrivingLicense,
	"drivinglicense":  DocumentTypeDrivingLicense,
	"voter_id":        DocumentTypeVoterID,
	"voterid":         DocumentTypeVoterID,
}

// ParseDocumentType resolves a wire value to a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	if documentTypes[DocumentType(s)] {
		return DocumentType(s), nil
	}
	if dt, ok := documentTypeAliases[strings.ToLower(s)]; ok {
		return dt, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown document type: "+s)
}

// RequiresBackImage reports whether a document type needs a back-side image
// for the upload to be considered complete. Encoded per type, not globally.
func RequiresBackImage(dt DocumentType) bool {
	switch dt {
	case DocumentTypeAadhaar, DocumentTypeDrivingLicense, DocumentTypeVoterID:
		return true
	}
	return false
}

// Applicant holds the personal details captured at case creation.
type Applicant struct {
	FullName    string `json:"fullName"`
	DateOfBirth string `json:"dob"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	State       string `json:"state"`
	Phone       string `json:"phone"`
	AltPhone    string `json:"altPhone,omitempty"`
}

// Validate enforces that all required fields are present. AltPhone is the
// only optional field.
func (a Applicant) Validate() error {
	missing := ""
	switch {
	case a.FullName == "":
		missing = "fullName"
	case a.DateOfBirth == "":
		missing = "dob"
	case a.Gender == "":
		missing = "gender"
	case a.Address == "":
		missing = "address"
	case a.Email == "":
		missing = "email"
	case a.State == "":
		missing = "state"
	case a.Phone == "":
		missing = "phone"
	}
	if missing != "" {
		return dErrors.New(dErrors.CodeBadRequest, "missing required field: "+missing)
	}
	return nil
}

// Document is one identity document image attached to a case. Documents are
// append-only: once attached, never removed or mutated.
type Document struct {
	Type           DocumentType
	Image          []byte
	ContentType    string
	DocumentNumber string
}

// Selfie is the live capture attached at the biometric stage. Replaced
// wholesale on retake, never merged.
type Selfie struct {
	Image       []byte
	ContentType string
}

// VerificationFlags are derived flags set independently by their respective
// verification stages.
type VerificationFlags struct {
	OTPVerified bool `json:"otpVerified"`
	FaceMatched bool `json:"faceMatched"`
}

// Case is one applicant's KYC record. The CaseID is server-generated at
// creation and immutable; every later stage references it.
type Case struct {
	CaseID       string
	Applicant    Applicant
	Documents    []Document
	Selfie       *Selfie
	Verified     VerificationFlags
	ConsentGiven bool
	// ClientRef is an optional caller-supplied idempotency key. Creation
	// with a ref already seen returns the original case instead of a new one.
	ClientRef   string
	SubmittedAt time.Time
	ExpiryDate  time.Time
}

// NewCaseID allocates a fresh opaque case identifier.
func NewCaseID() string {
	return "KYC-" + strings.ToUpper(uuid.NewString()[:13])
}
