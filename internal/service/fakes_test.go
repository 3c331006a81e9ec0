package service

import (
	"context"
	"errors"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/cache"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/directory"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/session"

	"go.uber.org/zap"
)

// ------------------------------------------------------------
// Fakes for the upstream-facing ports
// ------------------------------------------------------------

type fakeVerifier struct {
	sess      *domain.UpstreamSession
	loginErr  error
	logoutErr error
	loggedOut []string
}

func (f *fakeVerifier) Login(ctx context.Context, email, password string) (*domain.UpstreamSession, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.sess, nil
}

func (f *fakeVerifier) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.UpstreamSession, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.sess, nil
}

func (f *fakeVerifier) Logout(ctx context.Context, upstreamToken string) error {
	f.loggedOut = append(f.loggedOut, upstreamToken)
	return f.logoutErr
}

type failingTokenStore struct{}

func (failingTokenStore) Get(string) (*domain.UpstreamTokenRecord, bool) { return nil, false }
func (failingTokenStore) Set(domain.UpstreamTokenRecord) error {
	return errors.New("store unavailable")
}
func (failingTokenStore) Clear(string) {}

// fakeActivity allows tests to plant arbitrary last-activity times.
type fakeActivity struct {
	last    map[string]time.Time
	touched []string
	removed []string
}

func newFakeActivity() *fakeActivity {
	return &fakeActivity{last: make(map[string]time.Time)}
}

func (f *fakeActivity) LastActivity(userID string) (time.Time, bool) {
	ts, ok := f.last[userID]
	return ts, ok
}

func (f *fakeActivity) Touch(userID string) {
	f.last[userID] = time.Now()
	f.touched = append(f.touched, userID)
}

func (f *fakeActivity) Remove(userID string) {
	delete(f.last, userID)
	f.removed = append(f.removed, userID)
}

type fakeOrders struct {
	rows []domain.Order
	one  *domain.Order
	err  error
}

func (f *fakeOrders) ListOrders(ctx context.Context, token string, q domain.ListQuery) ([]domain.Order, error) {
	return f.rows, f.err
}

func (f *fakeOrders) GetOrder(ctx context.Context, token, orderID string) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.one, nil
}

type fakeQuotes struct {
	rows []domain.Quote
	err  error
}

func (f *fakeQuotes) ListQuotes(ctx context.Context, token string, q domain.ListQuery) ([]domain.Quote, error) {
	return f.rows, f.err
}

func (f *fakeQuotes) GetQuote(ctx context.Context, token, quoteID string) (*domain.Quote, error) {
	return nil, f.err
}

type fakeInvoices struct {
	rows []domain.Invoice
	err  error
}

func (f *fakeInvoices) ListInvoices(ctx context.Context, token string, q domain.ListQuery) ([]domain.Invoice, error) {
	return f.rows, f.err
}

func (f *fakeInvoices) GetInvoice(ctx context.Context, token, invoiceID string) (*domain.Invoice, error) {
	return nil, f.err
}

type fakeDirectory struct {
	companies map[string]domain.Company
	subs      map[string][]domain.Company
	users     []domain.CompanyUser
	err       error
}

func (f *fakeDirectory) GetCompany(ctx context.Context, token, companyID string) (*domain.Company, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.companies[companyID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "company", ID: companyID}
	}
	return &c, nil
}

func (f *fakeDirectory) ListSubsidiaries(ctx context.Context, token, companyID string) ([]domain.Company, error) {
	return f.subs[companyID], f.err
}

func (f *fakeDirectory) ListCompanyUsers(ctx context.Context, token, companyID string) ([]domain.CompanyUser, error) {
	return f.users, f.err
}

// ------------------------------------------------------------
// Wiring helpers
// ------------------------------------------------------------

const testSecret = "test-secret"

type authFixture struct {
	svc      *AuthService
	verifier *fakeVerifier
	tokens   *session.TokenStore
	activity *fakeActivity
	users    *directory.Store
	resets   *cache.InMemory[string]
}

func newAuthFixture(accessTTL time.Duration) *authFixture {
	f := &authFixture{
		verifier: &fakeVerifier{
			sess: &domain.UpstreamSession{
				Token:     "up-token-1",
				UserID:    "u1",
				Email:     "alice@acme.test",
				Name:      "Alice",
				CompanyID: "c1",
			},
		},
		tokens:   session.NewTokenStore(0),
		activity: newFakeActivity(),
		users:    directory.NewStore(),
		resets:   cache.New[string](time.Minute),
	}
	f.svc = NewAuthService(
		f.verifier,
		f.users,
		f.tokens,
		f.activity,
		f.resets,
		observability.NewMetrics(),
		zap.NewNop(),
		testSecret,
		accessTTL,
		24*time.Hour,
		24*time.Hour,
	)
	return f
}

func buyer(companyID string) domain.Identity {
	return domain.Identity{UserID: "u1", Email: "alice@acme.test", CompanyID: companyID, Role: domain.RoleBuyer}
}

func admin(companyID string) domain.Identity {
	return domain.Identity{UserID: "adm", Email: "root@acme.test", CompanyID: companyID, Role: domain.RoleAdmin}
}
