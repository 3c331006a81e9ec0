package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/service"

	"go.uber.org/zap"
)

// refreshCookieName is the HTTP-only cookie used when the client opts
// into rememberMe. Scoped to the auth routes so it only travels on
// refresh and logout.
const refreshCookieName = "refreshToken"

const refreshCookiePath = "/v1/auth"

// AuthHandler handles the authentication endpoints.
type AuthHandler struct {
	auth       *service.AuthService
	logger     *zap.Logger
	refreshTTL time.Duration
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService, logger *zap.Logger, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger, refreshTTL: refreshTTL}
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	// With rememberMe the refresh token moves into an HTTP-only cookie
	// and out of the JSON body, keeping it away from page scripts.
	if req.RememberMe {
		h.setRefreshCookie(w, r, resp.RefreshToken)
		resp.RefreshToken = ""
	}

	writeJSON(w, http.StatusOK, resp)
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Logout handles POST /v1/auth/logout. Requires auth.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.CodeTokenMissing, "authentication required")
		return
	}

	h.auth.Logout(r.Context(), identity)
	h.clearRefreshCookie(w, r)

	writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "logged out"})
}

// Refresh handles POST /v1/auth/refresh. The refresh token arrives in
// the body or in the rememberMe cookie. No token at all is a 401; a
// present but invalid token is a 403.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if r.ContentLength > 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	token := req.RefreshToken
	if token == "" {
		if c, err := r.Cookie(refreshCookieName); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, domain.CodeTokenMissing, "refresh token required")
		return
	}

	resp, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me handles GET /v1/auth/me. Requires auth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.CodeTokenMissing, "authentication required")
		return
	}

	user, err := h.auth.Me(r.Context(), identity)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ForgotPassword handles POST /v1/auth/forgot-password. Always the
// same acknowledgement, whether or not the account exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.auth.ForgotPassword(r.Context(), req.Email)
	writeJSON(w, http.StatusOK, domain.SuccessResponse{
		Message: "if an account exists for this email, a reset link has been sent",
	})
}

// ResetPassword handles POST /v1/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), &req); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "password has been reset"})
}

// ChangePassword handles PUT /v1/auth/password. Requires auth.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.CodeTokenMissing, "authentication required")
		return
	}

	var req domain.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ChangePassword(r.Context(), identity, &req); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "password changed"})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}
