package handlers

import (
	"net/http"

	"github.com/patlytics/patlytics/internal/application/infringement"
	"github.com/patlytics/patlytics/internal/application/resolver"
	"github.com/patlytics/patlytics/internal/domain/catalog"
	"github.com/patlytics/patlytics/internal/interfaces/http/middleware"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// InfringementHandler serves the assessment pipeline and the company
// directory endpoints.
type InfringementHandler struct {
	service  *infringement.Service
	resolver *resolver.FuzzyResolver
	catalog  catalog.Catalog
}

// NewInfringementHandler returns an InfringementHandler.
func NewInfringementHandler(service *infringement.Service, res *resolver.FuzzyResolver, cat catalog.Catalog) *InfringementHandler {
	return &InfringementHandler{service: service, resolver: res, catalog: cat}
}

type assessRequest struct {
	PatentID    string `json:"patent_id"`
	CompanyName string `json:"company_name"`
}

// Assess handles POST /api/v1/infringements.  Authenticated callers get
// their report persisted; anonymous callers get the report only.
func (h *InfringementHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if req.PatentID == "" || req.CompanyName == "" {
		writeAppError(w, apperrors.New(apperrors.ErrCodeValidation,
			"patent_id and company_name are required"))
		return
	}

	svcReq := infringement.Request{
		PatentID:    req.PatentID,
		CompanyName: req.CompanyName,
	}
	if userID, ok := middleware.UserID(r.Context()); ok {
		svcReq.UserID = &userID
	}

	resp, err := h.service.Assess(r.Context(), svcReq)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListCompanies handles GET /api/v1/companies.
func (h *InfringementHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalog.ListCompanyNames(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"companies": names})
}

// ResolveCompany handles GET /api/v1/companies/resolve?name=.  It exposes
// the resolution step on its own so callers can confirm a match before
// spending a model invocation.
func (h *InfringementHandler) ResolveCompany(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeAppError(w, apperrors.New(apperrors.ErrCodeValidation, "name query parameter is required"))
		return
	}
	result, err := h.resolver.Resolve(r.Context(), name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"match":        result.Match,
		"alternatives": result.Alternatives,
		"tier":         result.Tier,
		"products":     result.Company.Products,
	})
}
