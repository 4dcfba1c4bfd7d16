package scanlog

import "context"

// Store is an append-only sink for scan records, insertion-ordered by
// ScannedAt. No uniqueness constraint: every lookup appends a new row.
type Store interface {
	Append(ctx context.Context, rec Record) error
	ListByCase(ctx context.Context, caseID string) ([]Record, error)
}
