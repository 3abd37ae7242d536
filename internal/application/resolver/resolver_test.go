package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/domain/analysis"
	"github.com/patlytics/patlytics/internal/domain/catalog"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patlytics/internal/testutil"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) FuzzySearchCompanies(ctx context.Context, name string, size int) ([]catalog.ScoredCompany, error) {
	args := m.Called(ctx, name, size)
	if hits := args.Get(0); hits != nil {
		return hits.([]catalog.ScoredCompany), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetPatent(ctx context.Context, id string) (*catalog.PatentRecord, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*catalog.PatentRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalog) GetCompany(ctx context.Context, name string) (*catalog.CompanyProfile, error) {
	args := m.Called(ctx, name)
	if c := args.Get(0); c != nil {
		return c.(*catalog.CompanyProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalog) ListCompanyNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if names := args.Get(0); names != nil {
		return names.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func testConfig() config.ResolverConfig {
	return config.ResolverConfig{
		MinScore:            5.0,
		Fuzziness:           2,
		PrefixLength:        2,
		MaxAlternatives:     2,
		LocalRatioThreshold: 80,
	}
}

func newResolver(searcher catalog.CompanySearcher, cat catalog.Catalog) *FuzzyResolver {
	return NewFuzzyResolver(searcher, cat, testConfig(), logging.NewNop())
}

func TestResolveIndexTierSelectsTopHit(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("FuzzySearchCompanies", mock.Anything, "Test Compny", 3).Return([]catalog.ScoredCompany{
		{Profile: *testutil.Company(), Score: 9.4},
		{Profile: *testutil.CompanyNamed("Test Corporation"), Score: 6.1},
		{Profile: *testutil.CompanyNamed("Testing Co"), Score: 5.2},
	}, nil)

	res, err := newResolver(searcher, &mockCatalog{}).Resolve(context.Background(), "Test Compny")
	require.NoError(t, err)

	assert.Equal(t, "Test Company", res.Company.Name)
	assert.Equal(t, TierIndex, res.Tier)
	assert.Equal(t, analysis.ScoreIndexRelevance, res.Match.Kind)
	assert.Equal(t, 9.4, res.Match.Score)

	require.Len(t, res.Alternatives, 2)
	assert.Equal(t, "Test Corporation", res.Alternatives[0].Name)
	assert.Equal(t, "Testing Co", res.Alternatives[1].Name)
	for _, alt := range res.Alternatives {
		assert.Equal(t, analysis.ScoreIndexRelevance, alt.Kind)
	}
}

func TestResolveLocalTierWhenIndexEmpty(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("FuzzySearchCompanies", mock.Anything, mock.Anything, mock.Anything).
		Return([]catalog.ScoredCompany{}, nil)

	cat := &mockCatalog{}
	cat.On("ListCompanyNames", mock.Anything).Return([]string{"Acme Widgets", "Test Company"}, nil)
	cat.On("GetCompany", mock.Anything, "Test Company").Return(testutil.Company(), nil)

	res, err := newResolver(searcher, cat).Resolve(context.Background(), "test company")
	require.NoError(t, err)

	assert.Equal(t, TierLocal, res.Tier)
	assert.Equal(t, analysis.ScoreLocalRatio, res.Match.Kind)
	assert.Equal(t, float64(100), res.Match.Score)
	assert.Empty(t, res.Alternatives)
}

func TestResolveLocalTierWhenIndexUnavailable(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("FuzzySearchCompanies", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.ErrCodeResolutionUnavailable, "index down"))

	cat := &mockCatalog{}
	cat.On("ListCompanyNames", mock.Anything).Return([]string{"Test Company"}, nil)
	cat.On("GetCompany", mock.Anything, "Test Company").Return(testutil.Company(), nil)

	res, err := newResolver(searcher, cat).Resolve(context.Background(), "Test Company")
	require.NoError(t, err)
	assert.Equal(t, TierLocal, res.Tier)
}

func TestResolveNoMatchBelowThreshold(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("FuzzySearchCompanies", mock.Anything, mock.Anything, mock.Anything).
		Return([]catalog.ScoredCompany{}, nil)

	cat := &mockCatalog{}
	cat.On("ListCompanyNames", mock.Anything).Return([]string{"Quantum Foundry", "Orbital Dynamics"}, nil)

	_, err := newResolver(searcher, cat).Resolve(context.Background(), "Test Company")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoMatch))
	cat.AssertNotCalled(t, "GetCompany", mock.Anything, mock.Anything)
}

func TestResolveBothTiersDown(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("FuzzySearchCompanies", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.ErrCodeResolutionUnavailable, "index down"))

	cat := &mockCatalog{}
	cat.On("ListCompanyNames", mock.Anything).
		Return(nil, apperrors.New(apperrors.ErrCodeCatalogUnavailable, "directory down"))

	_, err := newResolver(searcher, cat).Resolve(context.Background(), "Test Company")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeResolutionUnavailable))
	assert.False(t, apperrors.IsCode(err, apperrors.ErrCodeNoMatch))
}

func TestResolveEmptyName(t *testing.T) {
	_, err := newResolver(&mockSearcher{}, &mockCatalog{}).Resolve(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestResolveLocalTieKeepsEarlierEntry(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("FuzzySearchCompanies", mock.Anything, mock.Anything, mock.Anything).
		Return([]catalog.ScoredCompany{}, nil)

	// Both names are the same distance from the query; the earlier entry
	// wins.
	cat := &mockCatalog{}
	cat.On("ListCompanyNames", mock.Anything).Return([]string{"Test Compani", "Test Companu"}, nil)
	cat.On("GetCompany", mock.Anything, "Test Compani").Return(testutil.CompanyNamed("Test Compani"), nil)

	res, err := newResolver(searcher, cat).Resolve(context.Background(), "Test Company")
	require.NoError(t, err)
	assert.Equal(t, "Test Compani", res.Company.Name)
}

func TestSimilarityRatio(t *testing.T) {
	assert.Equal(t, 100, SimilarityRatio("Test Company", "test company"))
	assert.Equal(t, 100, SimilarityRatio("", ""))
	assert.Equal(t, 0, SimilarityRatio("abc", "xyz"))

	// One substitution in a 12-rune name.
	ratio := SimilarityRatio("Test Company", "Test Compani")
	assert.Equal(t, 91, ratio)

	assert.Less(t, SimilarityRatio("Test Company", "Quantum Foundry"), 80)
}
