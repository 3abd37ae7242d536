package opensearch

import (
	"context"

	"github.com/patlytics/patlytics/internal/domain/catalog"
)

// Catalog adapts the Searcher to the domain Catalog interface, serving exact
// patent and company lookups from the OpenSearch indices.
type Catalog struct {
	searcher *Searcher
}

// NewCatalog returns a Catalog backed by the given searcher.
func NewCatalog(searcher *Searcher) *Catalog {
	return &Catalog{searcher: searcher}
}

var _ catalog.Catalog = (*Catalog)(nil)

func (c *Catalog) GetPatent(ctx context.Context, patentID string) (*catalog.PatentRecord, error) {
	return c.searcher.GetPatentByID(ctx, patentID)
}

func (c *Catalog) GetCompany(ctx context.Context, name string) (*catalog.CompanyProfile, error) {
	return c.searcher.GetCompanyByName(ctx, name)
}

func (c *Catalog) ListCompanyNames(ctx context.Context) ([]string, error) {
	return c.searcher.ListCompanyNames(ctx)
}
