// Package handler contains the HTTP layer: routing, middleware and the
// translation between transport and service errors.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20 // 1 MB

// errorResponse is the uniform error body: a human message plus a
// machine code so the SPA can tell "refresh and retry" from "go back
// to the login page".
type errorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code"`
	Required []string `json:"requiredCapabilities,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// parseListQuery extracts the collection query parameters forwarded to
// the upstream platform.
func parseListQuery(r *http.Request) domain.ListQuery {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	return domain.ListQuery{
		Search: q.Get("search"),
		Status: q.Get("status"),
		SortBy: q.Get("sortBy"),
		Limit:  limit,
	}
}

// handleServiceError maps the domain error taxonomy onto HTTP statuses.
// Anything unrecognized is a 500 with no internals leaked.
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		authnErr    *domain.ErrAuthentication
		authzErr    *domain.ErrAuthorization
		notFoundErr *domain.ErrNotFound
		conflictErr *domain.ErrConflict
		validErr    *domain.ErrValidation
		expiredErr  *domain.ErrUpstreamSessionExpired
		upstreamErr *domain.ErrUpstream
		circuitErr  *domain.ErrCircuitOpen
		timeoutErr  *domain.ErrTimeout
	)

	switch {
	case errors.As(err, &authnErr):
		writeError(w, http.StatusUnauthorized, authnErr.Code, authnErr.Error())
	case errors.As(err, &authzErr):
		resp := errorResponse{Error: authzErr.Error(), Code: authzErr.Code}
		for _, c := range authzErr.Required {
			resp.Required = append(resp.Required, string(c))
		}
		writeJSON(w, http.StatusForbidden, resp)
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, "not_found", notFoundErr.Error())
	case errors.As(err, &conflictErr):
		writeError(w, http.StatusConflict, "duplicate_account", conflictErr.Error())
	case errors.As(err, &validErr):
		writeError(w, http.StatusBadRequest, "invalid_request", validErr.Error())
	case errors.As(err, &expiredErr):
		// The internal session may still be valid; the upstream one is
		// gone. 502 with a dedicated code so the SPA forces a re-login
		// instead of retrying.
		writeError(w, http.StatusBadGateway, domain.CodeUpstreamSessionExpired, expiredErr.Error())
	case errors.As(err, &circuitErr):
		writeError(w, http.StatusServiceUnavailable, domain.CodeUpstreamUnavailable, "upstream temporarily unavailable")
	case errors.As(err, &timeoutErr):
		writeError(w, http.StatusGatewayTimeout, "upstream_timeout", "upstream request timed out")
	case errors.As(err, &upstreamErr):
		logger.Error("upstream failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, domain.CodeUpstreamUnavailable, "upstream request failed")
	default:
		logger.Error("unhandled service error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
