// Package middleware contains the HTTP middleware chain: authentication,
// request logging, and CORS.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenVerifier validates an access token and returns the authenticated
// user id.  The auth service implements it.
type TokenVerifier interface {
	VerifyAccess(token string) (uuid.UUID, error)
}

// UserID extracts the authenticated user id from the request context.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// Auth builds the authentication middleware pair.
type Auth struct {
	verifier TokenVerifier
}

// NewAuth returns authentication middleware over the given verifier.
func NewAuth(verifier TokenVerifier) *Auth {
	return &Auth{verifier: verifier}
}

// Required rejects requests without a valid bearer token.
func (a *Auth) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.authenticate(r)
		if err != nil {
			writeUnauthorized(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// Optional authenticates when a bearer token is present and passes the
// request through anonymously when it is not.  A token that is present but
// invalid is still rejected, so callers cannot silently lose persistence by
// sending an expired token.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := a.authenticate(r)
		if err != nil {
			writeUnauthorized(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (a *Auth) authenticate(r *http.Request) (uuid.UUID, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return uuid.Nil, apperrors.New(apperrors.ErrCodeUnauthorized, "missing bearer token")
	}
	return a.verifier.VerifyAccess(strings.TrimPrefix(header, prefix))
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if apperrors.HTTPStatusForCode(code) != http.StatusUnauthorized {
		code = apperrors.ErrCodeUnauthorized
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"` + code.String() + `","message":"` +
		apperrors.DefaultMessageForCode(code) + `"}}`))
}
