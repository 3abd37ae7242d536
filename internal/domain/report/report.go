// Package report defines the persisted assessment record and its repository
// contract.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/patlytics/patlytics/internal/domain/analysis"
)

// StoredReport is one saved infringement assessment.  Saved reports are
// immutable: there is no update path, only create and read.
type StoredReport struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	// PatentID and CompanyName duplicate the payload's identifying fields
	// so listings can avoid unmarshaling every payload.
	PatentID    string `json:"patent_id"`
	CompanyName string `json:"company_name"`
	// InputCompany is the name exactly as the caller supplied it, before
	// fuzzy resolution.
	InputCompany string `json:"input_company"`
	// Payload is the full ranked report as it was returned to the caller.
	Payload   analysis.InfringementReport `json:"payload"`
	CreatedAt time.Time                   `json:"created_at"`
}

// Repository is the persistence contract for stored reports.
type Repository interface {
	// Save persists the report atomically, including the company reference
	// lookup, and fills in the generated ID and CreatedAt.
	Save(ctx context.Context, rec *StoredReport) error

	// ListByUser returns the user's reports, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]StoredReport, error)

	// GetByID returns a single report.  Ownership checks belong to the
	// caller.
	GetByID(ctx context.Context, id uuid.UUID) (*StoredReport, error)
}
