package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patlytics/patlytics/internal/application/infringement"
	"github.com/patlytics/patlytics/internal/application/resolver"
	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/domain/catalog"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patlytics/internal/testutil"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

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

type staticGenerator struct {
	response string
	err      error
}

func (g staticGenerator) Generate(context.Context, string, string) (string, error) {
	return g.response, g.err
}

type nopMetrics struct{}

func (nopMetrics) RecordAssessment(string, time.Duration) {}
func (nopMetrics) RecordResolution(string)                {}
func (nopMetrics) RecordReportSaved()                     {}

func newHandler(cat *mockCatalog, searcher *mockSearcher, gen infringement.TextGenerator) *InfringementHandler {
	res := resolver.NewFuzzyResolver(searcher, cat, config.ResolverConfig{
		MinScore:            5.0,
		Fuzziness:           2,
		PrefixLength:        2,
		MaxAlternatives:     2,
		LocalRatioThreshold: 80,
	}, logging.NewNop())
	svc := infringement.NewService(cat, res, gen, nil, nopMetrics{}, logging.NewNop(), time.Second)
	return NewInfringementHandler(svc, res, cat)
}

func TestAssessEndpoint(t *testing.T) {
	cat := &mockCatalog{}
	cat.On("GetPatent", mock.Anything, "12345").Return(testutil.Patent(), nil)

	searcher := &mockSearcher{}
	searcher.On("FuzzySearchCompanies", mock.Anything, "Test Company", 3).
		Return([]catalog.ScoredCompany{{Profile: *testutil.Company(), Score: 8.8}}, nil)

	gen := staticGenerator{response: `{"analyses":[{"product_name":"PowerMax Charger","infringement_likelihood":"High","claims_at_issue":["1"],"explanation":"Overlap."}]}`}

	h := newHandler(cat, searcher, gen)
	body := `{"patent_id":"12345","company_name":"Test Company"}`
	rec := httptest.NewRecorder()
	h.Assess(rec, httptest.NewRequest(http.MethodPost, "/api/v1/infringements", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"patent_id":"12345"`)
	assert.Contains(t, rec.Body.String(), "PowerMax Charger")
	assert.Contains(t, rec.Body.String(), `"kind":"index_relevance"`)
}

func TestAssessEndpointValidation(t *testing.T) {
	h := newHandler(&mockCatalog{}, &mockSearcher{}, staticGenerator{})

	rec := httptest.NewRecorder()
	h.Assess(rec, httptest.NewRequest(http.MethodPost, "/api/v1/infringements",
		strings.NewReader(`{"patent_id":"","company_name":""}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	h.Assess(rec, httptest.NewRequest(http.MethodPost, "/api/v1/infringements",
		strings.NewReader(`{"unknown_field":1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssessEndpointUnknownPatent(t *testing.T) {
	cat := &mockCatalog{}
	cat.On("GetPatent", mock.Anything, "99999").
		Return(nil, apperrors.Newf(apperrors.ErrCodePatentNotFound, "patent 99999 not found"))

	searcher := &mockSearcher{}
	searcher.On("FuzzySearchCompanies", mock.Anything, "Test Company", 3).
		Return([]catalog.ScoredCompany{{Profile: *testutil.Company(), Score: 8.8}}, nil)

	h := newHandler(cat, searcher, staticGenerator{})
	rec := httptest.NewRecorder()
	h.Assess(rec, httptest.NewRequest(http.MethodPost, "/api/v1/infringements",
		strings.NewReader(`{"patent_id":"99999","company_name":"Test Company"}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "CAT_001")
}

func TestResolveEndpoint(t *testing.T) {
	cat := &mockCatalog{}
	searcher := &mockSearcher{}
	searcher.On("FuzzySearchCompanies", mock.Anything, "Test Compny", 3).
		Return([]catalog.ScoredCompany{{Profile: *testutil.Company(), Score: 7.5}}, nil)

	h := newHandler(cat, searcher, staticGenerator{})
	rec := httptest.NewRecorder()
	h.ResolveCompany(rec, httptest.NewRequest(http.MethodGet, "/api/v1/companies/resolve?name=Test+Compny", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Test Company"`)
	assert.Contains(t, rec.Body.String(), `"tier":"index"`)
}

func TestListCompaniesEndpoint(t *testing.T) {
	cat := &mockCatalog{}
	cat.On("ListCompanyNames", mock.Anything).Return([]string{"Test Company", "Quantum Foundry"}, nil)

	h := newHandler(cat, &mockSearcher{}, staticGenerator{})
	rec := httptest.NewRecorder()
	h.ListCompanies(rec, httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Quantum Foundry")
}
