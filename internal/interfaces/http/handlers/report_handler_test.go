package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patlytics/patlytics/internal/domain/analysis"
	"github.com/patlytics/patlytics/internal/domain/report"
	"github.com/patlytics/patlytics/internal/interfaces/http/middleware"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

type mockReports struct {
	mock.Mock
}

func (m *mockReports) Save(ctx context.Context, rec *report.StoredReport) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockReports) ListByUser(ctx context.Context, userID uuid.UUID) ([]report.StoredReport, error) {
	args := m.Called(ctx, userID)
	if recs := args.Get(0); recs != nil {
		return recs.([]report.StoredReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReports) GetByID(ctx context.Context, id uuid.UUID) (*report.StoredReport, error) {
	args := m.Called(ctx, id)
	if rec := args.Get(0); rec != nil {
		return rec.(*report.StoredReport), args.Error(1)
	}
	return nil, args.Error(1)
}

// authedRouter routes /reports with the given user injected, mirroring what
// the auth middleware does in production.
func authedRouter(h *ReportHandler, userID uuid.UUID) chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID)))
		})
	})
	r.Get("/reports", h.List)
	r.Get("/reports/{id}", h.Get)
	return r
}

func storedReport(userID uuid.UUID) *report.StoredReport {
	return &report.StoredReport{
		ID:          uuid.New(),
		UserID:      userID,
		PatentID:    "12345",
		CompanyName: "Test Company",
		Payload: analysis.InfringementReport{
			PatentID:    "12345",
			PatentTitle: "Adaptive Battery Charging System",
			CompanyName: "Test Company",
		},
		CreatedAt: time.Now(),
	}
}

func TestListReturnsOwnReports(t *testing.T) {
	userID := uuid.New()
	repo := &mockReports{}
	repo.On("ListByUser", mock.Anything, userID).
		Return([]report.StoredReport{*storedReport(userID)}, nil)

	router := authedRouter(NewReportHandler(repo), userID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Test Company")
}

func TestListEmptyIsNotNull(t *testing.T) {
	userID := uuid.New()
	repo := &mockReports{}
	repo.On("ListByUser", mock.Anything, userID).Return(nil, nil)

	router := authedRouter(NewReportHandler(repo), userID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reports":[]`)
}

func TestGetOwnReport(t *testing.T) {
	userID := uuid.New()
	rep := storedReport(userID)
	repo := &mockReports{}
	repo.On("GetByID", mock.Anything, rep.ID).Return(rep, nil)

	router := authedRouter(NewReportHandler(repo), userID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+rep.ID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), rep.ID.String())
}

func TestGetForeignReportIsNotFound(t *testing.T) {
	owner := uuid.New()
	caller := uuid.New()
	rep := storedReport(owner)
	repo := &mockReports{}
	repo.On("GetByID", mock.Anything, rep.ID).Return(rep, nil)

	router := authedRouter(NewReportHandler(repo), caller)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+rep.ID.String(), nil))

	// Not forbidden: ids must not be probeable.
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUnknownReport(t *testing.T) {
	userID := uuid.New()
	unknown := uuid.New()
	repo := &mockReports{}
	repo.On("GetByID", mock.Anything, unknown).
		Return(nil, apperrors.Newf(apperrors.ErrCodeReportNotFound, "report %s not found", unknown))

	router := authedRouter(NewReportHandler(repo), userID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+unknown.String(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInvalidID(t *testing.T) {
	userID := uuid.New()
	router := authedRouter(NewReportHandler(&mockReports{}), userID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
