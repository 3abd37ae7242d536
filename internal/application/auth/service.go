// Package auth implements account registration, login, and JWT token
// issuance.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/domain/account"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// Token types embedded in the JWT "type" claim so a refresh token can never
// pass as an access token.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service implements registration, login, and token lifecycle.
type Service struct {
	users  account.Repository
	cfg    config.AuthConfig
	logger logging.Logger
	now    func() time.Time
}

// NewService returns an auth service over the given user repository.
func NewService(users account.Repository, cfg config.AuthConfig, logger logging.Logger) *Service {
	return &Service{
		users:  users,
		cfg:    cfg,
		logger: logger.Named("auth"),
		now:    time.Now,
	}
}

// Register creates a new account and returns it with a fresh token pair.
// A duplicate email is a conflict.
func (s *Service) Register(ctx context.Context, email, password string) (*account.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, apperrors.New(apperrors.ErrCodeValidation, "a valid email is required")
	}
	if len(password) < 8 {
		return nil, nil, apperrors.New(apperrors.ErrCodeValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "hashing password")
	}

	user := &account.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}
	s.logger.Info("user registered", logging.String("user_id", user.ID.String()))

	pair, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies credentials and returns the account with a fresh token
// pair.  Unknown emails and wrong passwords report the same error so the
// response does not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*account.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil, apperrors.New(apperrors.ErrCodeInvalidCredentials, "invalid email or password")
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.New(apperrors.ErrCodeInvalidCredentials, "invalid email or password")
	}

	pair, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh validates a refresh token and issues a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.verify(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	// The account must still exist for the refresh to succeed.
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.New(apperrors.ErrCodeTokenInvalid, "account no longer exists")
		}
		return nil, err
	}
	return s.issueTokens(userID)
}

// VerifyAccess validates an access token and returns the authenticated user
// id.
func (s *Service) VerifyAccess(token string) (uuid.UUID, error) {
	return s.verify(token, tokenTypeAccess)
}

// GetUser returns the account for an authenticated user id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*account.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) issueTokens(userID uuid.UUID) (*TokenPair, error) {
	access, err := s.sign(userID, tokenTypeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userID, tokenTypeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) sign(userID uuid.UUID, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"type": tokenType,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "signing token")
	}
	return signed, nil
}

func (s *Service) verify(tokenString, wantType string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Newf(apperrors.ErrCodeTokenInvalid,
				"unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return uuid.Nil, apperrors.Wrap(err, apperrors.ErrCodeTokenInvalid, "parsing token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, apperrors.New(apperrors.ErrCodeTokenInvalid, "invalid token claims")
	}
	if typ, _ := claims["type"].(string); typ != wantType {
		return uuid.Nil, apperrors.Newf(apperrors.ErrCodeTokenInvalid,
			"expected %s token", wantType)
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperrors.New(apperrors.ErrCodeTokenInvalid, "invalid subject claim")
	}
	return userID, nil
}
