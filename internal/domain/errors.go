package domain

import (
	"fmt"
	"strings"
)

// Error taxonomy for the broker. Every error carries a machine-readable
// code so the client can distinguish "silently refresh" from "force
// re-login" without parsing messages.

// Authentication error codes (401).
const (
	CodeTokenMissing = "token_missing"
	CodeTokenInvalid = "token_invalid"
	CodeIdleTimeout  = "session_idle_timeout"
	CodeBadLogin     = "invalid_credentials"
)

// Authorization error codes (403).
const (
	CodeCapabilityRequired  = "capability_required"
	CodeTenantForbidden     = "tenant_forbidden"
	CodeRefreshTokenInvalid = "refresh_token_invalid"
	CodeResetTokenInvalid   = "reset_token_invalid"
)

// Upstream error codes (5xx).
const (
	CodeUpstreamUnavailable    = "upstream_unavailable"
	CodeUpstreamSessionExpired = "upstream_session_expired"
)

// ErrAuthentication indicates a missing, invalid or idle-expired
// session (→ 401). Code distinguishes idle timeout from a bad token.
type ErrAuthentication struct {
	Code    string
	Message string
}

func (e *ErrAuthentication) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "authentication required"
}

// ErrAuthorization indicates a correctly identified caller who is
// correctly denied (→ 403): insufficient role, cross-tenant access,
// or an invalid refresh token.
type ErrAuthorization struct {
	Code     string
	Message  string
	Required []Capability
}

func (e *ErrAuthorization) Error() string {
	if len(e.Required) > 0 {
		names := make([]string, len(e.Required))
		for i, c := range e.Required {
			names[i] = string(c)
		}
		return fmt.Sprintf("%s (requires: %s)", e.Message, strings.Join(names, ", "))
	}
	if e.Message != "" {
		return e.Message
	}
	return "forbidden"
}

// ErrNotFound indicates a resource genuinely does not exist (→ 404).
// Never used for upstream outages or cross-tenant denials.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrConflict indicates a duplicate resource (→ 409).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string { return e.Message }

// ErrValidation indicates bad input (→ 400).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUpstream indicates a failure talking to the upstream platform
// (→ 502), explicitly distinct from ErrNotFound so a transient outage
// is never reported as "this order doesn't exist".
type ErrUpstream struct {
	Operation string
	Err       error
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream error [%s]: %v", e.Operation, e.Err)
}

func (e *ErrUpstream) Unwrap() error { return e.Err }

// ErrUpstreamSessionExpired indicates the broker no longer holds an
// upstream token for the caller (expired or lost on restart) even
// though their internal session token is still valid. The user must
// log in again (→ 502 with a re-login code).
type ErrUpstreamSessionExpired struct {
	UserID string
}

func (e *ErrUpstreamSessionExpired) Error() string {
	return "upstream session expired, re-login required"
}

// ErrCircuitOpen indicates the upstream circuit breaker is open (→ 503).
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrTimeout indicates an operation exceeded its deadline (→ 504).
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}
