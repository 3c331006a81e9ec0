// Package service — AuthService is the session and authorization
// broker core: it exchanges user credentials for an upstream token,
// keeps that token out of the browser, and issues the portal's own
// short-lived session token pair.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
	"github.com/boddenberg/buyer-portal-bff-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const bcryptCost = bcrypt.DefaultCost

// AuthService orchestrates authentication flows.
type AuthService struct {
	verifier    port.CredentialVerifier
	users       port.UserStore
	tokens      port.TokenStore
	activity    port.ActivityTracker
	resetTokens port.Cache[string]
	metrics     *observability.Metrics
	logger      *zap.Logger

	jwtSecret   []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	upstreamTTL time.Duration
}

// NewAuthService creates a new auth service.
func NewAuthService(
	verifier port.CredentialVerifier,
	users port.UserStore,
	tokens port.TokenStore,
	activity port.ActivityTracker,
	resetTokens port.Cache[string],
	metrics *observability.Metrics,
	logger *zap.Logger,
	jwtSecret string,
	accessTTL, refreshTTL, upstreamTTL time.Duration,
) *AuthService {
	return &AuthService{
		verifier:    verifier,
		users:       users,
		tokens:      tokens,
		activity:    activity,
		resetTokens: resetTokens,
		metrics:     metrics,
		logger:      logger,
		jwtSecret:   []byte(jwtSecret),
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		upstreamTTL: upstreamTTL,
	}
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if req.Email == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email and password are required"}
	}

	// Verify raw credentials against the upstream platform. Invalid
	// credentials come back as one generic failure; an unreachable
	// upstream surfaces as 5xx, never as "not found".
	sess, err := s.verifier.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.metrics.IncrLogin("failure")
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", sess.UserID))

	user, err := s.syncLocalUser(ctx, sess, req.Password)
	if err != nil {
		s.metrics.IncrLogin("failure")
		return nil, err
	}
	if user.Status != domain.UserActive {
		s.metrics.IncrLogin("failure")
		s.logger.Warn("login: inactive user", zap.String("user_id", user.ID))
		return nil, &domain.ErrAuthentication{Code: domain.CodeBadLogin, Message: "invalid email or password"}
	}

	// Upstream verification and token persistence are one logical
	// unit: if the record cannot be stored, the login did not happen.
	if err := s.tokens.Set(domain.UpstreamTokenRecord{
		UserID:    user.ID,
		Token:     sess.Token,
		CompanyID: user.CompanyID,
		ExpiresAt: time.Now().Add(s.upstreamTTL),
	}); err != nil {
		s.metrics.IncrLogin("failure")
		return nil, fmt.Errorf("store upstream token: %w", err)
	}
	s.activity.Touch(user.ID)

	identity := domain.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	}

	accessToken, err := s.MintAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.mintRefreshToken(identity)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	s.metrics.IncrLogin("success")
	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("company_id", user.CompanyID),
		zap.String("role", string(user.Role)),
	)

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
		User: domain.UserSummary{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			CompanyID: user.CompanyID,
		},
	}, nil
}

// syncLocalUser creates the local user record on first login and keeps
// its company membership aligned with what upstream reports — upstream
// is the source of truth for company membership. The bcrypt hash is
// refreshed so the reset-password flow has a credential to verify.
func (s *AuthService) syncLocalUser(ctx context.Context, sess *domain.UpstreamSession, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, sess.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if user == nil {
		id := sess.UserID
		if id == "" {
			id = uuid.New().String()
		}
		user = &domain.User{
			ID:           id,
			Email:        sess.Email,
			Name:         sess.Name,
			PasswordHash: string(hash),
			Role:         domain.RoleBuyer,
			CompanyID:    sess.CompanyID,
			Status:       domain.UserActive,
			CreatedAt:    time.Now(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.logger.Info("local user created on first login", zap.String("user_id", user.ID))
		return user, nil
	}

	if user.CompanyID != sess.CompanyID {
		s.logger.Info("company membership re-synced from upstream",
			zap.String("user_id", user.ID),
			zap.String("old_company_id", user.CompanyID),
			zap.String("new_company_id", sess.CompanyID),
		)
		user.CompanyID = sess.CompanyID
	}
	if user.Name == "" && sess.Name != "" {
		user.Name = sess.Name
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ============================================================
// Logout — POST /v1/auth/logout
// ============================================================

// Logout is synchronous and best-effort: an upstream-side failure must
// never leave the user stuck "logged in" locally, so local cleanup
// always proceeds.
func (s *AuthService) Logout(ctx context.Context, caller domain.Identity) {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if rec, ok := s.tokens.Get(caller.UserID); ok {
		if err := s.verifier.Logout(ctx, rec.Token); err != nil {
			s.logger.Warn("upstream logout failed, proceeding with local cleanup",
				zap.String("user_id", caller.UserID),
				zap.Error(err),
			)
		}
	}

	s.tokens.Clear(caller.UserID)
	s.activity.Remove(caller.UserID)

	s.logger.Info("user logged out", zap.String("user_id", caller.UserID))
}

// ============================================================
// Register — POST /v1/auth/register
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if req.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email is required"}
	}
	if len(req.Password) < 8 {
		return nil, &domain.ErrValidation{Field: "password", Message: "password must be at least 8 characters"}
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: "an account already exists for this email"}
	}

	sess, err := s.verifier.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	user, err := s.syncLocalUser(ctx, sess, req.Password)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Set(domain.UpstreamTokenRecord{
		UserID:    user.ID,
		Token:     sess.Token,
		CompanyID: user.CompanyID,
		ExpiresAt: time.Now().Add(s.upstreamTTL),
	}); err != nil {
		return nil, fmt.Errorf("store upstream token: %w", err)
	}
	s.activity.Touch(user.ID)

	identity := domain.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	}
	accessToken, err := s.MintAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.mintRefreshToken(identity)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
		User: domain.UserSummary{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			CompanyID: user.CompanyID,
		},
	}, nil
}

// ============================================================
// Me — GET /v1/auth/me
// ============================================================

func (s *AuthService) Me(ctx context.Context, caller domain.Identity) (*domain.UserSummary, error) {
	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		// Valid token but no local record (broker restart with a
		// persistent-store swap pending). Fall back to the claims.
		return &domain.UserSummary{
			ID:        caller.UserID,
			Email:     caller.Email,
			Role:      caller.Role,
			CompanyID: caller.CompanyID,
		}, nil
	}
	return &domain.UserSummary{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	}, nil
}

// ============================================================
// Role management — PUT /v1/company/users/{userId}/role
// ============================================================

// UpdateUserRole changes a local user's role. The caller must manage
// the same company unless privileged. Only a superadmin may grant the
// superadmin role.
func (s *AuthService) UpdateUserRole(ctx context.Context, caller domain.Identity, userID, newRole string) (*domain.UserSummary, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.UpdateUserRole")
	defer span.End()

	if !domain.ValidRole(newRole) {
		return nil, &domain.ErrValidation{Field: "role", Message: "unknown role"}
	}
	if domain.Role(newRole) == domain.RoleSuperAdmin && caller.Role != domain.RoleSuperAdmin {
		return nil, &domain.ErrAuthorization{
			Code:    domain.CodeCapabilityRequired,
			Message: "only a superadmin may grant the superadmin role",
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	if !caller.Role.Privileged() && user.CompanyID != caller.CompanyID {
		s.metrics.IncrTenantDenial("company_user")
		return nil, &domain.ErrAuthorization{
			Code:    domain.CodeTenantForbidden,
			Message: "user belongs to another company",
		}
	}

	user.Role = domain.Role(newRole)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user role updated",
		zap.String("user_id", user.ID),
		zap.String("role", newRole),
		zap.String("by", caller.UserID),
	)

	return &domain.UserSummary{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	}, nil
}
