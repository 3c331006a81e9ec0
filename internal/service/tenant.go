package service

import (
	"strings"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
)

// Tenant isolation. Upstream list endpoints can return rows from other
// companies, so the broker re-filters every upstream response against
// the caller's company before it leaves the process. Privileged roles
// (admin, superadmin) see everything.

// normalizeID prepares ids for comparison. Upstream ids arrive as JSON
// numbers or strings depending on endpoint; FlexID already folds both
// into strings, this trims the whitespace variants seen in fixtures.
func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

// resourceTenantID extracts the owning company id from a resource. Each
// resource kind declares which field carries ownership; when that field
// is empty the other one is consulted, so a row missing its mapped
// field is still attributed rather than leaking through as ownerless.
func resourceTenantID(kind domain.ResourceKind, res domain.TenantScoped) string {
	companyID, customerID := res.TenantIDs()
	var primary, fallback string
	if domain.OwnershipField(kind) == domain.OwnerCustomerID {
		primary, fallback = customerID, companyID
	} else {
		primary, fallback = companyID, customerID
	}
	if v := normalizeID(primary); v != "" {
		return v
	}
	return normalizeID(fallback)
}

// OwnsResource reports whether the caller's tenant may see the
// resource. Callers without a company id own nothing unless privileged.
func OwnsResource(caller domain.Identity, kind domain.ResourceKind, res domain.TenantScoped) bool {
	if caller.Role.Privileged() {
		return true
	}
	callerCompany := normalizeID(caller.CompanyID)
	if callerCompany == "" {
		return false
	}
	return resourceTenantID(kind, res) == callerCompany
}

// FilterTenant returns only the rows the caller's tenant owns. The
// result is never nil so handlers marshal an empty array, not null.
func FilterTenant[T domain.TenantScoped](caller domain.Identity, kind domain.ResourceKind, items []T) []T {
	if caller.Role.Privileged() {
		if items == nil {
			return []T{}
		}
		return items
	}

	filtered := make([]T, 0, len(items))
	if normalizeID(caller.CompanyID) == "" {
		return filtered
	}
	for _, item := range items {
		if OwnsResource(caller, kind, item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
