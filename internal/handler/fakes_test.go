package handler

import (
	"context"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/cache"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/directory"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/session"
	"github.com/boddenberg/buyer-portal-bff-go/internal/service"

	"go.uber.org/zap"
)

// Fakes standing in for the upstream platform; the stores, services
// and router under test are the real ones.

type fakeUpstream struct {
	sess     *domain.UpstreamSession
	loginErr error
	orders   []domain.Order
	order    *domain.Order
}

func (f *fakeUpstream) Login(ctx context.Context, email, password string) (*domain.UpstreamSession, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.sess, nil
}

func (f *fakeUpstream) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.UpstreamSession, error) {
	return f.sess, nil
}

func (f *fakeUpstream) Logout(ctx context.Context, upstreamToken string) error { return nil }

func (f *fakeUpstream) ListOrders(ctx context.Context, token string, q domain.ListQuery) ([]domain.Order, error) {
	return f.orders, nil
}

func (f *fakeUpstream) GetOrder(ctx context.Context, token, orderID string) (*domain.Order, error) {
	if f.order == nil {
		return nil, &domain.ErrNotFound{Resource: "order", ID: orderID}
	}
	return f.order, nil
}

func (f *fakeUpstream) ListQuotes(ctx context.Context, token string, q domain.ListQuery) ([]domain.Quote, error) {
	return []domain.Quote{}, nil
}

func (f *fakeUpstream) GetQuote(ctx context.Context, token, quoteID string) (*domain.Quote, error) {
	return nil, &domain.ErrNotFound{Resource: "quote", ID: quoteID}
}

func (f *fakeUpstream) ListInvoices(ctx context.Context, token string, q domain.ListQuery) ([]domain.Invoice, error) {
	return []domain.Invoice{}, nil
}

func (f *fakeUpstream) GetInvoice(ctx context.Context, token, invoiceID string) (*domain.Invoice, error) {
	return nil, &domain.ErrNotFound{Resource: "invoice", ID: invoiceID}
}

func (f *fakeUpstream) ListAddresses(ctx context.Context, token string, q domain.ListQuery) ([]domain.Address, error) {
	return []domain.Address{}, nil
}

func (f *fakeUpstream) GetAddress(ctx context.Context, token, addressID string) (*domain.Address, error) {
	return nil, &domain.ErrNotFound{Resource: "address", ID: addressID}
}

func (f *fakeUpstream) CreateAddress(ctx context.Context, token string, a *domain.Address) (*domain.Address, error) {
	a.ID = "addr-1"
	return a, nil
}

func (f *fakeUpstream) UpdateAddress(ctx context.Context, token string, a *domain.Address) (*domain.Address, error) {
	return a, nil
}

func (f *fakeUpstream) DeleteAddress(ctx context.Context, token, addressID string) error {
	return nil
}

func (f *fakeUpstream) GetCompany(ctx context.Context, token, companyID string) (*domain.Company, error) {
	return &domain.Company{ID: domain.FlexID(companyID), Name: "Acme"}, nil
}

func (f *fakeUpstream) ListSubsidiaries(ctx context.Context, token, companyID string) ([]domain.Company, error) {
	return []domain.Company{}, nil
}

func (f *fakeUpstream) ListCompanyUsers(ctx context.Context, token, companyID string) ([]domain.CompanyUser, error) {
	return []domain.CompanyUser{}, nil
}

type routerFixture struct {
	upstream *fakeUpstream
	tokens   *session.TokenStore
	users    *directory.Store
	auth     *service.AuthService
}

func newRouterFixture(idleTimeout time.Duration) (*routerFixture, RouterDeps) {
	up := &fakeUpstream{
		sess: &domain.UpstreamSession{
			Token:     "up-token-1",
			UserID:    "u1",
			Email:     "alice@acme.test",
			Name:      "Alice",
			CompanyID: "c1",
		},
	}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	tokens := session.NewTokenStore(0)
	activity := session.NewActivityTracker()
	users := directory.NewStore()

	auth := service.NewAuthService(
		up, users, tokens, activity,
		cache.New[string](time.Minute),
		metrics, logger,
		"router-test-secret",
		15*time.Minute, 24*time.Hour, 24*time.Hour,
	)
	sessions := service.NewSessionService(activity, idleTimeout, metrics, logger)
	company := service.NewCompanyService(
		up, tokens, up, up, up, auth,
		cache.New[[]domain.Company](time.Minute),
		metrics, logger, 900,
	)

	deps := RouterDeps{
		Auth:           auth,
		Sessions:       sessions,
		Company:        company,
		Orders:         service.NewOrdersService(tokens, up, metrics, logger),
		Quotes:         service.NewQuotesService(tokens, up, metrics, logger),
		Invoices:       service.NewInvoicesService(tokens, up, metrics, logger),
		Addresses:      service.NewAddressesService(tokens, up, metrics, logger),
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: []string{"http://localhost:3000"},
		RefreshTTL:     24 * time.Hour,
	}

	return &routerFixture{upstream: up, tokens: tokens, users: users, auth: auth}, deps
}
