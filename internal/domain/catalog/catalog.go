// Package catalog defines the reference datasets the assessment pipeline
// reads from: the patent corpus and the company-product directory.  The
// Catalog interface abstracts over the OpenSearch-backed and file-backed
// implementations in internal/infrastructure.
package catalog

import "context"

// PatentRecord is a single patent as the assessment pipeline consumes it.
type PatentRecord struct {
	// PatentID is the caller-facing identifier, e.g. "12345".
	PatentID string `json:"patent_id"`
	// PublicationNumber is the official publication identifier when the
	// dataset carries one; it may be empty.
	PublicationNumber string `json:"publication_number,omitempty"`
	Title             string `json:"title"`
	// Claims is the ordered list of claim texts.  Order is preserved from
	// the source dataset because claim numbering is positional.
	Claims []string `json:"claims"`
}

// Product is a single product offered by a company.
type Product struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompanyProfile is a company and its product portfolio.
type CompanyProfile struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// Catalog provides exact lookups into the patent and company datasets.
//
// Lookups distinguish absence from unavailability: a missing record yields a
// not-found error while an unreachable backing store yields an
// unavailability error.  Callers must not treat the two interchangeably.
type Catalog interface {
	// GetPatent returns the patent with the given identifier.
	GetPatent(ctx context.Context, patentID string) (*PatentRecord, error)

	// GetCompany returns the company whose name matches exactly,
	// case-sensitively.  Fuzzy matching is the resolver's job, not the
	// catalog's.
	GetCompany(ctx context.Context, name string) (*CompanyProfile, error)

	// ListCompanyNames returns every company name in the directory.  The
	// local resolution tier scores candidates against this list.
	ListCompanyNames(ctx context.Context) ([]string, error)
}
