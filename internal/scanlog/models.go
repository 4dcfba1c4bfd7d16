package scanlog

import "time"

// Record is one verification-scan audit entry: appended whenever a completed
// case is looked up for verification display, never updated or deleted.
// Keep it transport-agnostic so stores and sinks can fan out.
type Record struct {
	CaseID        string
	ApplicantName string
	State         string
	ExpiryDate    time.Time
	ScannedAt     time.Time
}
