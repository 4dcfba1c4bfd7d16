package handler

// CreateCaseRequest carries the applicant details for stage one. ClientRef is
// an optional idempotency key: a wizard retrying a failed submission sends
// the same ref so the backend returns the already-created case.
type CreateCaseRequest struct {
	FullName    string `json:"fullName"`
	DateOfBirth string `json:"dob"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	State       string `json:"state"`
	Phone       string `json:"phone"`
	AltPhone    string `json:"altPhone"`
	ClientRef   string `json:"clientRef"`
}

// DocumentMeta is the typed per-file metadata entry sent alongside uploads.
// Index maps the entry to its file positionally; the whole batch is rejected
// when any entry is malformed or the counts disagree.
type DocumentMeta struct {
	Index          *int   `json:"index"`
	Type           string `json:"type"`
	DocumentNumber string `json:"documentNumber,omitempty"`
}

// ConsentRequest records the applicant's decision. The field is required so
// an explicit refusal (false) is distinguishable from an empty body.
type ConsentRequest struct {
	ConsentGiven *bool `json:"consentGiven"`
}

// FaceMatchRequest records the face verification outcome for a case. The
// field is required so an explicit failed match (false) is distinguishable
// from an empty body.
type FaceMatchRequest struct {
	Matched *bool `json:"matched"`
}

// OTPVerifyRequest carries the code entered by the applicant.
type OTPVerifyRequest struct {
	Code string `json:"code"`
}
