// Package resolver turns free-form company names into catalog entries using
// a two-tier strategy: a fuzzy search against the company index first, then
// a local string-similarity scan over the full company directory when the
// index yields nothing or is unreachable.
package resolver

import (
	"context"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/domain/analysis"
	"github.com/patlytics/patlytics/internal/domain/catalog"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// Tier identifies which resolution tier produced a match.
type Tier string

const (
	TierIndex Tier = "index"
	TierLocal Tier = "local"
)

// Result is the outcome of a successful resolution.
type Result struct {
	// Company is the selected catalog entry.
	Company catalog.CompanyProfile
	// Match carries the selected candidate's score and score kind.
	Match analysis.MatchCandidate
	// Alternatives holds up to the configured number of runner-up
	// candidates.  Only the index tier produces alternatives; their scores
	// share the Match's score kind, never a mixed scale.
	Alternatives []analysis.MatchCandidate
	// Tier records which tier selected the match.
	Tier Tier
}

// FuzzyResolver implements the two-tier strategy.
type FuzzyResolver struct {
	searcher catalog.CompanySearcher
	catalog  catalog.Catalog
	cfg      config.ResolverConfig
	logger   logging.Logger
}

// NewFuzzyResolver builds a resolver over the given search tier and catalog.
func NewFuzzyResolver(searcher catalog.CompanySearcher, cat catalog.Catalog, cfg config.ResolverConfig, logger logging.Logger) *FuzzyResolver {
	return &FuzzyResolver{
		searcher: searcher,
		catalog:  cat,
		cfg:      cfg,
		logger:   logger.Named("resolver"),
	}
}

// Resolve finds the catalog company best matching name.
//
// The index tier runs first.  When it returns hits, the top hit is the
// match and the next hits become alternatives.  The local tier runs only
// when the index returns no hits or is unreachable; it scans every company
// name, scores a case-insensitive similarity ratio, and selects the highest
// ratio at or above the threshold.  Ties keep the earlier directory entry.
// The local tier never produces alternatives because its ratios are not
// comparable with index relevance scores.
//
// A name no tier can match yields ErrCodeNoMatch.  When the index is down
// and the directory cannot be listed either, the error is
// ErrCodeResolutionUnavailable, never a silent no-match.
func (r *FuzzyResolver) Resolve(ctx context.Context, name string) (*Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "company name is required")
	}

	size := 1 + r.cfg.MaxAlternatives
	hits, err := r.searcher.FuzzySearchCompanies(ctx, name, size)
	switch {
	case err == nil && len(hits) > 0:
		return r.fromIndexHits(hits), nil
	case err == nil:
		// Index reachable but nothing scored above the minimum; fall
		// through to the local tier.
	case apperrors.IsUnavailable(err):
		r.logger.Warn("company index unreachable, falling back to local matching",
			logging.String("name", name), logging.Err(err))
	default:
		return nil, err
	}

	return r.resolveLocal(ctx, name, err != nil)
}

func (r *FuzzyResolver) fromIndexHits(hits []catalog.ScoredCompany) *Result {
	res := &Result{
		Company: hits[0].Profile,
		Match: analysis.MatchCandidate{
			Name:  hits[0].Profile.Name,
			Score: hits[0].Score,
			Kind:  analysis.ScoreIndexRelevance,
		},
		Tier: TierIndex,
	}
	for _, h := range hits[1:] {
		res.Alternatives = append(res.Alternatives, analysis.MatchCandidate{
			Name:  h.Profile.Name,
			Score: h.Score,
			Kind:  analysis.ScoreIndexRelevance,
		})
	}
	return res
}

// resolveLocal scans the company directory with a similarity ratio.
// indexDown records whether this tier is running because the index was
// unreachable, which determines how a directory failure is classified.
func (r *FuzzyResolver) resolveLocal(ctx context.Context, name string, indexDown bool) (*Result, error) {
	names, err := r.catalog.ListCompanyNames(ctx)
	if err != nil {
		if indexDown {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeResolutionUnavailable,
				"both resolution tiers unavailable")
		}
		return nil, err
	}

	bestRatio := -1
	bestName := ""
	for _, candidate := range names {
		ratio := SimilarityRatio(name, candidate)
		if ratio > bestRatio {
			bestRatio = ratio
			bestName = candidate
		}
	}
	if bestRatio < r.cfg.LocalRatioThreshold || bestName == "" {
		return nil, apperrors.Newf(apperrors.ErrCodeNoMatch,
			"no company matching %q", name)
	}

	profile, err := r.catalog.GetCompany(ctx, bestName)
	if err != nil {
		return nil, err
	}
	return &Result{
		Company: *profile,
		Match: analysis.MatchCandidate{
			Name:  bestName,
			Score: float64(bestRatio),
			Kind:  analysis.ScoreLocalRatio,
		},
		Tier: TierLocal,
	}, nil
}

// NoIndexSearcher is a CompanySearcher for deployments without a search
// cluster.  It reports the index tier unavailable so every resolution goes
// through the local tier.
type NoIndexSearcher struct{}

var _ catalog.CompanySearcher = NoIndexSearcher{}

func (NoIndexSearcher) FuzzySearchCompanies(context.Context, string, int) ([]catalog.ScoredCompany, error) {
	return nil, apperrors.New(apperrors.ErrCodeResolutionUnavailable, "no company index configured")
}

// SimilarityRatio computes a case-insensitive similarity ratio in [0, 100]
// from the Levenshtein distance: 100 means identical ignoring case, 0 means
// nothing in common.
func SimilarityRatio(a, b string) int {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	if la == lb {
		return 100
	}
	longest := len([]rune(la))
	if n := len([]rune(lb)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(la, lb)
	return (longest - dist) * 100 / longest
}
