package kyc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"kycgate/pkg/platform/sentinel"
)

// PostgresStore persists cases in PostgreSQL. Every mutation touches only the
// columns owned by its stage, so concurrent stage writes cannot tear each
// other (see Store contract).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c Case) error {
	query := `
		INSERT INTO kyc_cases (
			case_id, client_ref, full_name, dob, gender, address, email,
			state, phone, alt_phone, consent_given, otp_verified,
			face_matched, submitted_at, expiry_date
		) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.CaseID, c.ClientRef,
		c.Applicant.FullName, c.Applicant.DateOfBirth, c.Applicant.Gender,
		c.Applicant.Address, c.Applicant.Email, c.Applicant.State,
		c.Applicant.Phone, c.Applicant.AltPhone,
		c.ConsentGiven, c.Verified.OTPVerified, c.Verified.FaceMatched,
		c.SubmittedAt, c.ExpiryDate,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create case: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, caseID string) (Case, error) {
	return s.findBy(ctx, `case_id = $1`, caseID)
}

func (s *PostgresStore) FindByClientRef(ctx context.Context, clientRef string) (Case, error) {
	return s.findBy(ctx, `client_ref = $1`, clientRef)
}

func (s *PostgresStore) findBy(ctx context.Context, where string, arg any) (Case, error) {
	query := `
		SELECT case_id, COALESCE(client_ref, ''), full_name, dob, gender,
		       address, email, state, phone, alt_phone, consent_given,
		       otp_verified, face_matched, selfie, selfie_content_type,
		       submitted_at, expiry_date
		FROM kyc_cases WHERE ` + where
	var (
		c                 Case
		selfieImage       []byte
		selfieContentType sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&c.CaseID, &c.ClientRef,
		&c.Applicant.FullName, &c.Applicant.DateOfBirth, &c.Applicant.Gender,
		&c.Applicant.Address, &c.Applicant.Email, &c.Applicant.State,
		&c.Applicant.Phone, &c.Applicant.AltPhone,
		&c.ConsentGiven, &c.Verified.OTPVerified, &c.Verified.FaceMatched,
		&selfieImage, &selfieContentType,
		&c.SubmittedAt, &c.ExpiryDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Case{}, sentinel.ErrNotFound
		}
		return Case{}, fmt.Errorf("find case: %w", err)
	}
	if len(selfieImage) > 0 {
		c.Selfie = &Selfie{Image: selfieImage, ContentType: selfieContentType.String}
	}
	docs, err := s.documentsFor(ctx, c.CaseID)
	if err != nil {
		return Case{}, err
	}
	c.Documents = docs
	return c, nil
}

func (s *PostgresStore) documentsFor(ctx context.Context, caseID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_type, image, content_type, COALESCE(document_number, '')
		FROM kyc_documents WHERE case_id = $1 ORDER BY id
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Type, &d.Image, &d.ContentType, &d.DocumentNumber); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) AppendDocuments(ctx context.Context, caseID string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := s.ensureExists(ctx, caseID); err != nil {
		return err
	}

	// Single transaction keeps the batch all-or-nothing.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append documents: %w", err)
	}
	defer tx.Rollback()

	for _, d := range docs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kyc_documents (case_id, doc_type, image, content_type, document_number)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		`, caseID, string(d.Type), d.Image, d.ContentType, d.DocumentNumber)
		if err != nil {
			return fmt.Errorf("append document: %w", err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) SetSelfie(ctx context.Context, caseID string, selfie Selfie) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE kyc_cases SET selfie = $2, selfie_content_type = $3 WHERE case_id = $1
	`, caseID, selfie.Image, selfie.ContentType)
	if err != nil {
		return fmt.Errorf("set selfie: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) SetConsent(ctx context.Context, caseID string, consentGiven bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE kyc_cases SET consent_given = $2 WHERE case_id = $1
	`, caseID, consentGiven)
	if err != nil {
		return fmt.Errorf("set consent: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) SetOTPVerified(ctx context.Context, caseID string, verified bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE kyc_cases SET otp_verified = $2 WHERE case_id = $1
	`, caseID, verified)
	if err != nil {
		return fmt.Errorf("set otp verified: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) SetFaceMatched(ctx context.Context, caseID string, matched bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE kyc_cases SET face_matched = $2 WHERE case_id = $1
	`, caseID, matched)
	if err != nil {
		return fmt.Errorf("set face matched: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) ListStale(ctx context.Context, cutoff time.Time) ([]Case, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.case_id
		FROM kyc_cases c
		LEFT JOIN kyc_documents d ON d.case_id = c.case_id
		WHERE c.submitted_at < $1
		  AND c.selfie IS NULL
		  AND NOT c.consent_given
		  AND d.id IS NULL
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale cases: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stale case: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var stale []Case
	for _, id := range ids {
		c, err := s.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		stale = append(stale, c)
	}
	return stale, nil
}

func (s *PostgresStore) ensureExists(ctx context.Context, caseID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM kyc_cases WHERE case_id = $1`, caseID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check case exists: %w", err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
