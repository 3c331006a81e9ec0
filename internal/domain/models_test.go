package domain

import (
	"encoding/json"
	"testing"
)

func TestFlexID_UnmarshalString(t *testing.T) {
	var f FlexID
	if err := json.Unmarshal([]byte(`"42"`), &f); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if f.String() != "42" {
		t.Errorf("expected 42, got %q", f)
	}
}

func TestFlexID_UnmarshalNumber(t *testing.T) {
	var f FlexID
	if err := json.Unmarshal([]byte(`42`), &f); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if f.String() != "42" {
		t.Errorf("expected 42, got %q", f)
	}
}

func TestFlexID_UnmarshalNull(t *testing.T) {
	var f FlexID = "stale"
	if err := json.Unmarshal([]byte(`null`), &f); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !f.IsZero() {
		t.Errorf("expected zero FlexID, got %q", f)
	}
}

func TestFlexID_MixedDocument(t *testing.T) {
	// Upstream mixes representations within one payload.
	raw := []byte(`[{"id": 7, "companyId": "7"}, {"id": "8", "customerId": 9}]`)

	var orders []Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if orders[0].ID != "7" || orders[0].CompanyID != "7" {
		t.Errorf("row 0 ids wrong: %+v", orders[0])
	}
	if orders[1].ID != "8" || orders[1].CustomerID != "9" {
		t.Errorf("row 1 ids wrong: %+v", orders[1])
	}
}

func TestTenantIDs(t *testing.T) {
	o := Order{CompanyID: "c1", CustomerID: "cust1"}
	companyID, customerID := o.TenantIDs()
	if companyID != "c1" || customerID != "cust1" {
		t.Errorf("order TenantIDs = %q, %q", companyID, customerID)
	}

	a := Address{CompanyID: "c2"}
	companyID, customerID = a.TenantIDs()
	if companyID != "c2" || customerID != "" {
		t.Errorf("address TenantIDs = %q, %q", companyID, customerID)
	}
}
