package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/patlytics/patlytics/internal/application/auth"
	"github.com/patlytics/patlytics/internal/domain/account"
	"github.com/patlytics/patlytics/internal/domain/report"
	"github.com/patlytics/patlytics/internal/interfaces/http/middleware"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// AuthHandler serves registration, login, token refresh, and the current
// account.
type AuthHandler struct {
	service *auth.Service
	reports report.Repository
}

// NewAuthHandler returns an AuthHandler.  reports may be nil when report
// persistence is not configured; /me then omits the report summaries.
func NewAuthHandler(service *auth.Service, reports report.Repository) *AuthHandler {
	return &AuthHandler{service: service, reports: reports}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	User   *account.User   `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	user, tokens, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	user, tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*auth.TokenPair{"tokens": tokens})
}

type reportSummary struct {
	ID          uuid.UUID `json:"id"`
	PatentID    string    `json:"patent_id"`
	CompanyName string    `json:"company_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type meResponse struct {
	User    *account.User   `json:"user"`
	Reports []reportSummary `json:"reports"`
}

// Me handles GET /api/v1/auth/me.  The response carries the account plus
// summaries of its saved reports.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeAppError(w, apperrors.New(apperrors.ErrCodeUnauthorized, "authentication required"))
		return
	}
	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	summaries := []reportSummary{}
	if h.reports != nil {
		owned, err := h.reports.ListByUser(r.Context(), userID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		for _, rec := range owned {
			summaries = append(summaries, reportSummary{
				ID:          rec.ID,
				PatentID:    rec.PatentID,
				CompanyName: rec.CompanyName,
				CreatedAt:   rec.CreatedAt,
			})
		}
	}
	writeJSON(w, http.StatusOK, meResponse{User: user, Reports: summaries})
}
