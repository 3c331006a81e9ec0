package handler

import (
	"net/http"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CompanyHandler handles the company hierarchy, switching, roster and
// dashboard endpoints. All routes require auth.
type CompanyHandler struct {
	company *service.CompanyService
	auth    *service.AuthService
	logger  *zap.Logger
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(company *service.CompanyService, auth *service.AuthService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{company: company, auth: auth, logger: logger}
}

// Get handles GET /v1/company.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	company, err := h.company.Get(r.Context(), identity)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// Hierarchy handles GET /v1/company/hierarchy: the companies the
// caller may switch into.
func (h *CompanyHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	set, err := h.company.AccessibleSet(r.Context(), identity)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// Switch handles POST /v1/company/switch. Requires switch_companies.
func (h *CompanyHandler) Switch(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req domain.SwitchCompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.company.SwitchCompany(r.Context(), identity, req.CompanyID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListUsers handles GET /v1/company/users. Requires manage_users.
func (h *CompanyHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	users, err := h.company.ListUsers(r.Context(), identity)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateUserRole handles PUT /v1/company/users/{userId}/role.
// Requires manage_users.
func (h *CompanyHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	userID := chi.URLParam(r, "userId")

	var req domain.UpdateUserRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.auth.UpdateUserRole(r.Context(), identity, userID, req.Role)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Dashboard handles GET /v1/company/dashboard.
func (h *CompanyHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	dash, err := h.company.Dashboard(r.Context(), identity)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}
