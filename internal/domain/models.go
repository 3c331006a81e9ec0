// Package domain contains the core types of the buyer portal broker:
// users, companies, session records, and the resource shapes mirrored
// from the upstream commerce platform.
package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ============================================================
// Identity & session
// ============================================================

// UserStatus marks whether a local user record is active.
// Users are never hard-deleted, only flipped to inactive.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User is the broker's local record for a portal user. The upstream
// platform is the source of truth for company membership; CompanyID is
// re-synced on every login.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	CompanyID    string     `json:"companyId"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Identity is the authenticated caller attached to the request context
// by the authorization middleware.
type Identity struct {
	UserID    string
	Email     string
	CompanyID string
	Role      Role
}

// UpstreamSession is what the upstream platform returns from a
// successful login or registration.
type UpstreamSession struct {
	Token       string
	UserID      string
	Email       string
	Name        string
	CompanyID   string
	CompanyName string
	ExpiresAt   time.Time
}

// UpstreamTokenRecord keeps an upstream token out of the browser's
// reach. Lifetime matches the upstream platform (~24h).
type UpstreamTokenRecord struct {
	UserID    string
	Token     string
	CompanyID string
	ExpiresAt time.Time
}

// SessionActivity tracks the last authenticated request per user,
// driving idle timeout independently of token expiry.
type SessionActivity struct {
	UserID         string
	LastActivityAt time.Time
}

// ============================================================
// Company hierarchy
// ============================================================

// Company forms an optional two-level tree (parent → subsidiaries).
type Company struct {
	ID              FlexID `json:"id"`
	Name            string `json:"name"`
	ParentCompanyID FlexID `json:"parentCompanyId,omitempty"`
	HierarchyLevel  int    `json:"hierarchyLevel"`
	Status          string `json:"status,omitempty"`
}

// CompanyUser is a portal user as reported by the upstream company
// roster, used for user management within a company.
type CompanyUser struct {
	ID        FlexID `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID FlexID `json:"companyId"`
}

// ============================================================
// Upstream resources (orders, quotes, invoices, addresses)
// ============================================================

// FlexID is an id that the upstream platform may serialize as either a
// JSON number or a JSON string. It always normalizes to a string.
type FlexID string

// UnmarshalJSON accepts "42", 42 and null.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// IsZero reports whether no id was present upstream.
func (f FlexID) IsZero() bool { return f == "" }

// Order mirrors the upstream order shape. Upstream reports the buying
// company under customerId for orders.
type Order struct {
	ID         FlexID  `json:"id"`
	CompanyID  FlexID  `json:"companyId,omitempty"`
	CustomerID FlexID  `json:"customerId,omitempty"`
	Status     string  `json:"status"`
	Total      float64 `json:"totalIncTax"`
	Currency   string  `json:"currencyCode"`
	ItemCount  int     `json:"itemsTotal"`
	CreatedAt  string  `json:"dateCreated"`
	PONumber   string  `json:"poNumber,omitempty"`
}

// Quote mirrors the upstream quote shape.
type Quote struct {
	ID         FlexID  `json:"id"`
	CompanyID  FlexID  `json:"companyId"`
	CustomerID FlexID  `json:"customerId,omitempty"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	Subtotal   float64 `json:"subtotal"`
	Currency   string  `json:"currencyCode"`
	ExpiresAt  string  `json:"expiredAt,omitempty"`
	CreatedAt  string  `json:"createdAt"`
}

// Invoice mirrors the upstream invoice shape. Like orders, invoices
// carry the buying company under customerId.
type Invoice struct {
	ID         FlexID  `json:"id"`
	CompanyID  FlexID  `json:"companyId,omitempty"`
	CustomerID FlexID  `json:"customerId,omitempty"`
	OrderID    FlexID  `json:"orderId,omitempty"`
	Status     string  `json:"status"`
	Total      float64 `json:"totalAmount"`
	OpenAmount float64 `json:"openAmount"`
	Currency   string  `json:"currencyCode"`
	DueDate    string  `json:"dueDate,omitempty"`
	CreatedAt  string  `json:"createdAt"`
}

// Address is a company shipping/billing address.
type Address struct {
	ID        FlexID `json:"id"`
	CompanyID FlexID `json:"companyId"`
	Label     string `json:"label,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Street    string `json:"addressLine1"`
	Street2   string `json:"addressLine2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phoneNumber,omitempty"`
	IsBilling bool   `json:"isBilling"`
}

// TenantScoped is implemented by every upstream resource subject to
// tenant filtering. The ownership field actually compared is selected
// per resource kind (see OwnershipField in roles.go).
type TenantScoped interface {
	TenantIDs() (companyID, customerID string)
}

func (o Order) TenantIDs() (companyID, customerID string) {
	return o.CompanyID.String(), o.CustomerID.String()
}

func (q Quote) TenantIDs() (companyID, customerID string) {
	return q.CompanyID.String(), q.CustomerID.String()
}

func (i Invoice) TenantIDs() (companyID, customerID string) {
	return i.CompanyID.String(), i.CustomerID.String()
}

func (a Address) TenantIDs() (companyID, customerID string) {
	return a.CompanyID.String(), ""
}

func (u CompanyUser) TenantIDs() (companyID, customerID string) {
	return u.CompanyID.String(), ""
}

// ListQuery carries collection query parameters that are forwarded to
// the upstream platform verbatim, never interpreted by the broker.
type ListQuery struct {
	Search string
	Status string
	SortBy string
	Limit  int
}

// CompanyDashboard aggregates per-company counts for the portal
// landing page.
type CompanyDashboard struct {
	CompanyID    string  `json:"companyId"`
	OrderCount   int     `json:"orderCount"`
	QuoteCount   int     `json:"quoteCount"`
	InvoiceCount int     `json:"invoiceCount"`
	OpenInvoices float64 `json:"openInvoiceAmount"`
}
