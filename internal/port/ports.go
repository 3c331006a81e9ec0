// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations — in particular so the in-memory
// session stores can be swapped for a persistent, replicated backend
// without touching call sites.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
)

// CredentialVerifier exchanges raw credentials for an upstream session.
type CredentialVerifier interface {
	Login(ctx context.Context, email, password string) (*domain.UpstreamSession, error)
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.UpstreamSession, error)
	Logout(ctx context.Context, upstreamToken string) error
}

// TokenStore hides upstream tokens from the browser. Get must treat an
// expired record as absent and evict it. Set overwrites any prior
// record for the user (single active upstream session per user).
// Clear is idempotent.
type TokenStore interface {
	Get(userID string) (*domain.UpstreamTokenRecord, bool)
	Set(rec domain.UpstreamTokenRecord) error
	Clear(userID string)
}

// ActivityTracker records last-activity timestamps per user for idle
// timeout, independent of token expiry.
type ActivityTracker interface {
	LastActivity(userID string) (time.Time, bool)
	Touch(userID string)
	Remove(userID string)
}

// UserStore is the broker's local user directory.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
}

// OrdersFetcher retrieves orders from the upstream platform on behalf
// of a user, authenticated with their stored upstream token.
type OrdersFetcher interface {
	ListOrders(ctx context.Context, upstreamToken string, q domain.ListQuery) ([]domain.Order, error)
	GetOrder(ctx context.Context, upstreamToken, orderID string) (*domain.Order, error)
}

// QuotesFetcher retrieves quotes from the upstream platform.
type QuotesFetcher interface {
	ListQuotes(ctx context.Context, upstreamToken string, q domain.ListQuery) ([]domain.Quote, error)
	GetQuote(ctx context.Context, upstreamToken, quoteID string) (*domain.Quote, error)
}

// InvoicesFetcher retrieves invoices from the upstream platform.
type InvoicesFetcher interface {
	ListInvoices(ctx context.Context, upstreamToken string, q domain.ListQuery) ([]domain.Invoice, error)
	GetInvoice(ctx context.Context, upstreamToken, invoiceID string) (*domain.Invoice, error)
}

// AddressBook manages company addresses on the upstream platform.
type AddressBook interface {
	ListAddresses(ctx context.Context, upstreamToken string, q domain.ListQuery) ([]domain.Address, error)
	GetAddress(ctx context.Context, upstreamToken, addressID string) (*domain.Address, error)
	CreateAddress(ctx context.Context, upstreamToken string, a *domain.Address) (*domain.Address, error)
	UpdateAddress(ctx context.Context, upstreamToken string, a *domain.Address) (*domain.Address, error)
	DeleteAddress(ctx context.Context, upstreamToken, addressID string) error
}

// CompanyDirectory exposes the upstream company hierarchy and roster.
type CompanyDirectory interface {
	GetCompany(ctx context.Context, upstreamToken, companyID string) (*domain.Company, error)
	ListSubsidiaries(ctx context.Context, upstreamToken, companyID string) ([]domain.Company, error)
	ListCompanyUsers(ctx context.Context, upstreamToken, companyID string) ([]domain.CompanyUser, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
