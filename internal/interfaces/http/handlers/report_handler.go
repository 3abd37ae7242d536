package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/patlytics/patlytics/internal/domain/report"
	"github.com/patlytics/patlytics/internal/interfaces/http/middleware"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// ReportHandler serves saved reports.  Every route requires authentication
// and only returns the caller's own reports.
type ReportHandler struct {
	reports report.Repository
}

// NewReportHandler returns a ReportHandler over the given repository.
func NewReportHandler(reports report.Repository) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// List handles GET /api/v1/reports.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeAppError(w, apperrors.New(apperrors.ErrCodeUnauthorized, "authentication required"))
		return
	}
	reports, err := h.reports.ListByUser(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if reports == nil {
		reports = []report.StoredReport{}
	}
	writeJSON(w, http.StatusOK, map[string][]report.StoredReport{"reports": reports})
}

// Get handles GET /api/v1/reports/{id}.  Reports belonging to another user
// report not-found rather than forbidden, so report ids cannot be probed.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeAppError(w, apperrors.New(apperrors.ErrCodeUnauthorized, "authentication required"))
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, apperrors.New(apperrors.ErrCodeBadRequest, "invalid report id"))
		return
	}
	rec, err := h.reports.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if rec.UserID != userID {
		writeAppError(w, apperrors.Newf(apperrors.ErrCodeReportNotFound, "report %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]*report.StoredReport{"report": rec})
}
