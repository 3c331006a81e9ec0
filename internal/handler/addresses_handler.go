package handler

import (
	"net/http"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddressesHandler handles the company address book. Reads require
// auth; mutations additionally require manage_addresses.
type AddressesHandler struct {
	addresses *service.AddressesService
	logger    *zap.Logger
}

// NewAddressesHandler creates a new addresses handler.
func NewAddressesHandler(addresses *service.AddressesService, logger *zap.Logger) *AddressesHandler {
	return &AddressesHandler{addresses: addresses, logger: logger}
}

// List handles GET /v1/addresses.
func (h *AddressesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	rows, err := h.addresses.List(r.Context(), identity, parseListQuery(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Get handles GET /v1/addresses/{addressId}.
func (h *AddressesHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	addr, err := h.addresses.Get(r.Context(), identity, chi.URLParam(r, "addressId"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

// Create handles POST /v1/addresses.
func (h *AddressesHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var addr domain.Address
	if !decodeJSON(w, r, &addr) {
		return
	}

	created, err := h.addresses.Create(r.Context(), identity, &addr)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /v1/addresses/{addressId}.
func (h *AddressesHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var addr domain.Address
	if !decodeJSON(w, r, &addr) {
		return
	}

	updated, err := h.addresses.Update(r.Context(), identity, chi.URLParam(r, "addressId"), &addr)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /v1/addresses/{addressId}.
func (h *AddressesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	if err := h.addresses.Delete(r.Context(), identity, chi.URLParam(r, "addressId")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "address deleted"})
}
