package domain

// Role is a flat enumeration — there is no inheritance between roles,
// only a static capability table.
type Role string

const (
	RoleBuyer      Role = "buyer"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Capability names an action a role may perform.
type Capability string

const (
	CapViewOrders      Capability = "view_orders"
	CapViewQuotes      Capability = "view_quotes"
	CapViewInvoices    Capability = "view_invoices"
	CapManageAddresses Capability = "manage_addresses"
	CapManageUsers     Capability = "manage_users"
	CapSwitchCompanies Capability = "switch_companies"
	CapViewAllTenants  Capability = "view_all_tenants"
)

// rolePermissions is the static role → capability table. Read-only
// reference data; never mutated at runtime.
var rolePermissions = map[Role][]Capability{
	RoleBuyer: {
		CapViewOrders,
		CapViewQuotes,
		CapViewInvoices,
	},
	RoleManager: {
		CapViewOrders,
		CapViewQuotes,
		CapViewInvoices,
		CapManageAddresses,
		CapSwitchCompanies,
	},
	RoleAdmin: {
		CapViewOrders,
		CapViewQuotes,
		CapViewInvoices,
		CapManageAddresses,
		CapManageUsers,
		CapSwitchCompanies,
		CapViewAllTenants,
	},
	RoleSuperAdmin: {
		CapViewOrders,
		CapViewQuotes,
		CapViewInvoices,
		CapManageAddresses,
		CapManageUsers,
		CapSwitchCompanies,
		CapViewAllTenants,
	},
}

// HasCapability reports whether role is allowed to perform cap.
// Unknown roles have no capabilities.
func HasCapability(role Role, cap Capability) bool {
	for _, c := range rolePermissions[role] {
		if c == cap {
			return true
		}
	}
	return false
}

// Capabilities returns the capability set of a role (copy).
func Capabilities(role Role) []Capability {
	caps := rolePermissions[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Privileged reports whether the role bypasses tenant filtering.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleBuyer, RoleManager, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// ============================================================
// Resource-kind → ownership-field mapping
// ============================================================

// ResourceKind names a tenant-scoped upstream resource type.
type ResourceKind string

const (
	KindOrder       ResourceKind = "order"
	KindQuote       ResourceKind = "quote"
	KindInvoice     ResourceKind = "invoice"
	KindAddress     ResourceKind = "address"
	KindCompanyUser ResourceKind = "company_user"
)

// OwnerField selects which id on a resource identifies its tenant.
type OwnerField string

const (
	OwnerCompanyID  OwnerField = "companyId"
	OwnerCustomerID OwnerField = "customerId"
)

// ownershipFields makes the ownership comparison explicit per resource
// kind. Orders and invoices report the buying company as customerId
// upstream; everything else carries a plain companyId. A new resource
// kind must be added here before it can be tenant-filtered.
var ownershipFields = map[ResourceKind]OwnerField{
	KindOrder:       OwnerCustomerID,
	KindQuote:       OwnerCompanyID,
	KindInvoice:     OwnerCustomerID,
	KindAddress:     OwnerCompanyID,
	KindCompanyUser: OwnerCompanyID,
}

// OwnershipField returns the tenant id field for a resource kind.
// Unknown kinds fall back to companyId, the stricter comparison.
func OwnershipField(kind ResourceKind) OwnerField {
	if f, ok := ownershipFields[kind]; ok {
		return f
	}
	return OwnerCompanyID
}
