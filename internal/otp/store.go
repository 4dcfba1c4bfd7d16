package otp

import (
	"context"
	"time"
)

// Store persists one-time codes keyed by case ID. A code lives until its TTL
// elapses or it is consumed, whichever comes first.
type Store interface {
	// SaveCode stores the code for the case, replacing any outstanding one.
	SaveCode(ctx context.Context, caseID, code string, ttl time.Duration) error

	// ConsumeCode atomically fetches and deletes the code for the case.
	// Returns sentinel.ErrNotFound when no code is outstanding.
	ConsumeCode(ctx context.Context, caseID string) (string, error)
}
