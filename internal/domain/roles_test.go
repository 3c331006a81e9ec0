package domain

import "testing"

func TestHasCapability(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleBuyer, CapViewOrders, true},
		{RoleBuyer, CapManageAddresses, false},
		{RoleBuyer, CapManageUsers, false},
		{RoleManager, CapManageAddresses, true},
		{RoleManager, CapSwitchCompanies, true},
		{RoleManager, CapManageUsers, false},
		{RoleAdmin, CapManageUsers, true},
		{RoleAdmin, CapViewAllTenants, true},
		{RoleSuperAdmin, CapViewAllTenants, true},
		{Role("intern"), CapViewOrders, false},
	}
	for _, tt := range tests {
		if got := HasCapability(tt.role, tt.cap); got != tt.want {
			t.Errorf("HasCapability(%s, %s) = %v, want %v", tt.role, tt.cap, got, tt.want)
		}
	}
}

func TestPrivileged(t *testing.T) {
	if RoleBuyer.Privileged() || RoleManager.Privileged() {
		t.Error("buyer and manager must not be privileged")
	}
	if !RoleAdmin.Privileged() || !RoleSuperAdmin.Privileged() {
		t.Error("admin and superadmin must be privileged")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{"buyer", "manager", "admin", "superadmin"} {
		if !ValidRole(r) {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if ValidRole("root") || ValidRole("") {
		t.Error("unknown roles must be invalid")
	}
}

func TestOwnershipField(t *testing.T) {
	// Orders and invoices carry the buying company under customerId.
	if OwnershipField(KindOrder) != OwnerCustomerID {
		t.Error("orders should be owned via customerId")
	}
	if OwnershipField(KindInvoice) != OwnerCustomerID {
		t.Error("invoices should be owned via customerId")
	}
	if OwnershipField(KindQuote) != OwnerCompanyID {
		t.Error("quotes should be owned via companyId")
	}
	// Unknown kinds fall back to companyId.
	if OwnershipField(ResourceKind("shipment")) != OwnerCompanyID {
		t.Error("unknown kinds should fall back to companyId")
	}
}

func TestCapabilitiesReturnsCopy(t *testing.T) {
	caps := Capabilities(RoleBuyer)
	if len(caps) == 0 {
		t.Fatal("buyer should have capabilities")
	}
	caps[0] = Capability("tampered")
	if !HasCapability(RoleBuyer, CapViewOrders) {
		t.Error("mutating the returned slice must not affect the table")
	}
}
