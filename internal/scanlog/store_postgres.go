package scanlog

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists scan records in PostgreSQL. Insert-only; rows are
// never updated or deleted.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verification_scans (case_id, applicant_name, state, expiry_date, scanned_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.CaseID, rec.ApplicantName, rec.State, rec.ExpiryDate, rec.ScannedAt)
	if err != nil {
		return fmt.Errorf("append scan record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCase(ctx context.Context, caseID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT case_id, applicant_name, state, expiry_date, scanned_at
		FROM verification_scans WHERE case_id = $1 ORDER BY scanned_at
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list scan records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.CaseID, &rec.ApplicantName, &rec.State, &rec.ExpiryDate, &rec.ScannedAt); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
