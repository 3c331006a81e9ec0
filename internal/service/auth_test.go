package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"

	"go.uber.org/zap"
)

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)

	resp, err := f.svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "alice@acme.test",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens in the response")
	}
	if resp.User.CompanyID != "c1" || resp.User.Role != domain.RoleBuyer {
		t.Errorf("unexpected user summary: %+v", resp.User)
	}

	// The upstream token is custodied, never returned.
	rec, ok := f.tokens.Get("u1")
	if !ok || rec.Token != "up-token-1" {
		t.Fatalf("expected stored upstream token, got %+v ok=%v", rec, ok)
	}
	if resp.AccessToken == rec.Token || resp.RefreshToken == rec.Token {
		t.Error("upstream token must not be issued to the client")
	}

	// First login creates the local user record.
	user, _ := f.users.GetByEmail(context.Background(), "alice@acme.test")
	if user == nil {
		t.Fatal("expected local user to be created")
	}
	if user.PasswordHash == "" {
		t.Error("expected bcrypt hash to be stored")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)
	f.verifier.loginErr = &domain.ErrAuthentication{
		Code:    domain.CodeBadLogin,
		Message: "invalid email or password",
	}

	_, err := f.svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "alice@acme.test",
		Password: "wrong",
	})

	var authErr *domain.ErrAuthentication
	if !errors.As(err, &authErr) || authErr.Code != domain.CodeBadLogin {
		t.Fatalf("expected invalid_credentials, got %v", err)
	}
	if _, ok := f.tokens.Get("u1"); ok {
		t.Error("no upstream token may be stored on failed login")
	}
}

func TestLogin_TokenStoreFailureFailsLogin(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)
	svc := NewAuthService(
		f.verifier, f.users, failingTokenStore{}, f.activity, f.resets,
		observability.NewMetrics(), zap.NewNop(),
		testSecret, 15*time.Minute, 24*time.Hour, 24*time.Hour,
	)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "alice@acme.test",
		Password: "hunter22",
	})
	if err == nil {
		t.Fatal("login must fail when the token record cannot be stored")
	}
}

func TestLogin_CompanyResyncFromUpstream(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, &domain.LoginRequest{Email: "alice@acme.test", Password: "pw123456"}); err != nil {
		t.Fatalf("first login failed: %v", err)
	}

	// Upstream moved the user to another company.
	f.verifier.sess.CompanyID = "c9"
	resp, err := f.svc.Login(ctx, &domain.LoginRequest{Email: "alice@acme.test", Password: "pw123456"})
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if resp.User.CompanyID != "c9" {
		t.Errorf("expected company re-synced to c9, got %s", resp.User.CompanyID)
	}
}

func TestValidateAccessToken_RoundTrip(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)

	token, err := f.svc.MintAccessToken(buyer("c1"))
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	id, err := f.svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if id.UserID != "u1" || id.CompanyID != "c1" || id.Role != domain.RoleBuyer {
		t.Errorf("claims mismatch: %+v", id)
	}
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)

	refresh, err := f.svc.mintRefreshToken(buyer("c1"))
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	_, err = f.svc.ValidateAccessToken(refresh)
	var authErr *domain.ErrAuthentication
	if !errors.As(err, &authErr) || authErr.Code != domain.CodeTokenInvalid {
		t.Fatalf("a refresh token must not pass as access token, got %v", err)
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	f := newAuthFixture(-time.Minute)

	token, _ := f.svc.MintAccessToken(buyer("c1"))
	if _, err := f.svc.ValidateAccessToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestRefresh_PreservesIdentityClaims(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, &domain.LoginRequest{Email: "alice@acme.test", Password: "pw123456"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	resp, err := f.svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	id, err := f.svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("refreshed token invalid: %v", err)
	}
	if id.UserID != "u1" || id.CompanyID != "c1" || id.Role != domain.RoleBuyer {
		t.Errorf("refreshed claims must match the original session: %+v", id)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)

	_, err := f.svc.Refresh(context.Background(), "not-a-jwt")
	var authzErr *domain.ErrAuthorization
	if !errors.As(err, &authzErr) || authzErr.Code != domain.CodeRefreshTokenInvalid {
		t.Fatalf("expected refresh_token_invalid, got %v", err)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)

	access, _ := f.svc.MintAccessToken(buyer("c1"))
	if _, err := f.svc.Refresh(context.Background(), access); err == nil {
		t.Fatal("an access token must not be accepted for refresh")
	}
}

func TestLogout_ClearsLocalStateDespiteUpstreamFailure(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, &domain.LoginRequest{Email: "alice@acme.test", Password: "pw123456"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	f.verifier.logoutErr = errors.New("upstream down")

	f.svc.Logout(ctx, buyer("c1"))

	if _, ok := f.tokens.Get("u1"); ok {
		t.Error("upstream token must be cleared on logout")
	}
	if _, ok := f.activity.LastActivity("u1"); ok {
		t.Error("activity record must be removed on logout")
	}
	if len(f.verifier.loggedOut) != 1 {
		t.Error("upstream logout should have been attempted")
	}
}

func TestResetPassword_SingleUseAndSessionInvalidation(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, &domain.LoginRequest{Email: "alice@acme.test", Password: "old-pass1"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	f.resets.Set("reset-tok", "u1")
	err := f.svc.ResetPassword(ctx, &domain.ResetPasswordRequest{
		Token:       "reset-tok",
		NewPassword: "new-pass1",
	})
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if _, ok := f.tokens.Get("u1"); ok {
		t.Error("existing sessions must be invalidated on reset")
	}

	// Second use of the same token must fail.
	err = f.svc.ResetPassword(ctx, &domain.ResetPasswordRequest{
		Token:       "reset-tok",
		NewPassword: "another-1",
	})
	var authzErr *domain.ErrAuthorization
	if !errors.As(err, &authzErr) || authzErr.Code != domain.CodeResetTokenInvalid {
		t.Fatalf("expected reset token to be single use, got %v", err)
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, &domain.LoginRequest{Email: "alice@acme.test", Password: "right-pw1"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	err := f.svc.ChangePassword(ctx, buyer("c1"), &domain.ChangePasswordRequest{
		CurrentPassword: "wrong-pw1",
		NewPassword:     "brand-new1",
	})
	var authErr *domain.ErrAuthentication
	if !errors.As(err, &authErr) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestUpdateUserRole(t *testing.T) {
	f := newAuthFixture(15 * time.Minute)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, &domain.LoginRequest{Email: "alice@acme.test", Password: "pw123456"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Admin of the same company promotes the buyer to manager.
	updated, err := f.svc.UpdateUserRole(ctx, admin("c1"), "u1", "manager")
	if err != nil {
		t.Fatalf("UpdateUserRole failed: %v", err)
	}
	if updated.Role != domain.RoleManager {
		t.Errorf("expected manager, got %s", updated.Role)
	}

	// An admin of another company is denied.
	_, err = f.svc.UpdateUserRole(ctx, domain.Identity{UserID: "x", CompanyID: "c9", Role: domain.RoleManager}, "u1", "buyer")
	if err == nil {
		t.Fatal("expected denial for non-admin caller in the service guard")
	}

	// Only superadmin may grant superadmin.
	_, err = f.svc.UpdateUserRole(ctx, admin("c1"), "u1", "superadmin")
	var authzErr *domain.ErrAuthorization
	if !errors.As(err, &authzErr) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}
