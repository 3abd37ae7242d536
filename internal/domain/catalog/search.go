package catalog

import "context"

// ScoredCompany is a company profile paired with the relevance score the
// search engine assigned it.
type ScoredCompany struct {
	Profile CompanyProfile
	Score   float64
}

// CompanySearcher is the fuzzy-search contract the resolution layer uses for
// its primary tier.  Implementations return hits in descending relevance
// order; hits below the engine's minimum score are already filtered out.
type CompanySearcher interface {
	FuzzySearchCompanies(ctx context.Context, name string, size int) ([]ScoredCompany, error)
}
