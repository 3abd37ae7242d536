package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patlytics/patlytics/internal/domain/report"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// ReportRepository persists completed infringement assessments.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a ReportRepository backed by the given pool.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

var _ report.Repository = (*ReportRepository)(nil)

// Save writes the report in a single transaction: the company reference is
// resolved by name and the row inserted together, so no report row can ever
// point at a company that was concurrently removed.  Any failure is a
// persistence failure; the caller's in-memory report is unaffected.
func (r *ReportRepository) Save(ctx context.Context, rec *report.StoredReport) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodePersistenceFailure, "encoding report payload")
	}

	err = withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var companyID *uuid.UUID
		const lookup = `SELECT id FROM companies WHERE name = $1`
		var cid uuid.UUID
		switch err := tx.QueryRow(ctx, lookup, rec.CompanyName).Scan(&cid); {
		case err == nil:
			companyID = &cid
		case isNoRows(err):
			// The company directory may be served from files or a fresher
			// index generation; the report still saves with a null
			// reference.
		default:
			return apperrors.Wrap(err, apperrors.ErrCodePersistenceFailure, "resolving company reference")
		}

		const insert = `
			INSERT INTO reports (id, user_id, company_id, patent_id, company_name, input_company, payload)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at`
		err := tx.QueryRow(ctx, insert,
			rec.ID, rec.UserID, companyID, rec.PatentID, rec.CompanyName, rec.InputCompany, payload).
			Scan(&rec.CreatedAt)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodePersistenceFailure, "inserting report")
		}
		return nil
	})
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeDatabaseError {
			return apperrors.Wrap(err, apperrors.ErrCodePersistenceFailure, "saving report")
		}
		return err
	}
	return nil
}

// ListByUser returns the user's saved reports, newest first.
func (r *ReportRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]report.StoredReport, error) {
	const q = `
		SELECT id, user_id, patent_id, company_name, input_company, payload, created_at
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "listing reports")
	}
	defer rows.Close()

	var out []report.StoredReport
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterating reports")
	}
	return out, nil
}

// GetByID returns a single saved report.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*report.StoredReport, error) {
	const q = `
		SELECT id, user_id, patent_id, company_name, input_company, payload, created_at
		FROM reports WHERE id = $1`
	rec, err := scanReport(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.Newf(apperrors.ErrCodeReportNotFound, "report %s not found", id)
		}
		return nil, err
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanReport scans one report row.  pgx.ErrNoRows passes through unwrapped
// so callers can translate it per operation.
func scanReport(row rowScanner) (*report.StoredReport, error) {
	var rec report.StoredReport
	var payload []byte
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.PatentID, &rec.CompanyName, &rec.InputCompany, &payload, &rec.CreatedAt); err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scanning report")
	}
	if err := json.Unmarshal(payload, &rec.Payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decoding report payload")
	}
	return &rec, nil
}
