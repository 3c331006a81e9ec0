package domain

// ============================================================
// Auth — Request / Response types (matches portal API contract)
// ============================================================

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// UserSummary is the user payload returned alongside tokens.
type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	CompanyID string `json:"companyId"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
// RefreshToken is omitted when rememberMe put it in an HTTP-only cookie.
type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	ExpiresIn    int         `json:"expiresIn"`
	User         UserSummary `json:"user"`
}

// RegisterRequest is the body for POST /v1/auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName,omitempty"`
}

// RefreshRequest is the body for POST /v1/auth/refresh. The token may
// instead arrive in the refresh cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// RefreshResponse is the body for 200 from POST /v1/auth/refresh.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// ForgotPasswordRequest is the body for POST /v1/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body for POST /v1/auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ChangePasswordRequest is the body for PUT /v1/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// SwitchCompanyRequest is the body for POST /v1/company/switch.
type SwitchCompanyRequest struct {
	CompanyID string `json:"companyId"`
}

// SwitchCompanyResponse carries the re-minted access token with the
// new active company. The old token stays valid until its own expiry.
type SwitchCompanyResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
	CompanyID   string `json:"companyId"`
}

// UpdateUserRoleRequest is the body for PUT /v1/company/users/{userId}/role.
type UpdateUserRoleRequest struct {
	Role string `json:"role"`
}

// SuccessResponse is a generic acknowledgement body.
type SuccessResponse struct {
	Message string `json:"message"`
}
