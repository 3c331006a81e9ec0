package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Token types carried in the "typ" claim. A refresh token must never
// be accepted where an access token is expected, and vice versa.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// SessionClaims is the signed claim bundle inside both portal tokens.
// Subject carries the user id.
type SessionClaims struct {
	Email     string `json:"email"`
	CompanyID string `json:"companyId,omitempty"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// MintAccessToken signs a short-lived access token for the identity.
// Exported because the company-switch flow re-mints an access token
// with a different companyId claim without re-authenticating.
func (s *AuthService) MintAccessToken(id domain.Identity) (string, error) {
	return s.mint(id, tokenTypeAccess, s.accessTTL)
}

func (s *AuthService) mintRefreshToken(id domain.Identity) (string, error) {
	return s.mint(id, tokenTypeRefresh, s.refreshTTL)
}

func (s *AuthService) mint(id domain.Identity, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email:     id.Email,
		CompanyID: id.CompanyID,
		Role:      string(id.Role),
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(tokenString, wantType string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("token type %q, want %q", claims.TokenType, wantType)
	}
	return claims, nil
}

// ValidateAccessToken verifies an access token and returns the caller
// identity from its claims. Signature, expiry and token-type failures
// all collapse into one 401 so the client learns nothing about which
// check failed.
func (s *AuthService) ValidateAccessToken(tokenString string) (*domain.Identity, error) {
	claims, err := s.parseToken(tokenString, tokenTypeAccess)
	if err != nil {
		return nil, &domain.ErrAuthentication{
			Code:    domain.CodeTokenInvalid,
			Message: "invalid or expired session token",
		}
	}
	return &domain.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		CompanyID: claims.CompanyID,
		Role:      domain.Role(claims.Role),
	}, nil
}

// ============================================================
// Refresh — POST /v1/auth/refresh
// ============================================================

// Refresh exchanges a valid refresh token for a new access token. The
// new token's identity claims are taken verbatim from the refresh
// token, so a refresh can never escalate role or hop companies. An
// invalid or expired refresh token is a 403, distinct from the 401 the
// handler emits when no token was presented at all.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.RefreshResponse, error) {
	_, span := authTracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	claims, err := s.parseToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		s.metrics.IncrRefresh("failure")
		return nil, &domain.ErrAuthorization{
			Code:    domain.CodeRefreshTokenInvalid,
			Message: "invalid or expired refresh token",
		}
	}

	identity := domain.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		CompanyID: claims.CompanyID,
		Role:      domain.Role(claims.Role),
	}
	accessToken, err := s.MintAccessToken(identity)
	if err != nil {
		s.metrics.IncrRefresh("failure")
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	// A refresh counts as activity: a client that keeps refreshing is
	// a client that is still around.
	s.activity.Touch(identity.UserID)

	s.metrics.IncrRefresh("success")
	s.logger.Debug("access token refreshed", zap.String("user_id", identity.UserID))

	return &domain.RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.accessTTL.Seconds()),
	}, nil
}
