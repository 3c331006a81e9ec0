package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
	"github.com/boddenberg/buyer-portal-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var companyTracer = otel.Tracer("service/company")

// AccessTokenMinter re-mints an access token with changed claims.
// Implemented by AuthService; the company switch flow is the only
// caller.
type AccessTokenMinter interface {
	MintAccessToken(id domain.Identity) (string, error)
}

// CompanyService exposes the company hierarchy and implements company
// switching. Accessible sets are memoized because the hierarchy changes
// rarely but is consulted on every switch.
type CompanyService struct {
	directory port.CompanyDirectory
	tokens    port.TokenStore
	orders    port.OrdersFetcher
	quotes    port.QuotesFetcher
	invoices  port.InvoicesFetcher
	minter    AccessTokenMinter
	cache     port.Cache[[]domain.Company]
	metrics   *observability.Metrics
	logger    *zap.Logger

	accessTTLSeconds int
}

// NewCompanyService creates a new company service.
func NewCompanyService(
	directory port.CompanyDirectory,
	tokens port.TokenStore,
	orders port.OrdersFetcher,
	quotes port.QuotesFetcher,
	invoices port.InvoicesFetcher,
	minter AccessTokenMinter,
	cache port.Cache[[]domain.Company],
	metrics *observability.Metrics,
	logger *zap.Logger,
	accessTTLSeconds int,
) *CompanyService {
	return &CompanyService{
		directory:        directory,
		tokens:           tokens,
		orders:           orders,
		quotes:           quotes,
		invoices:         invoices,
		minter:           minter,
		cache:            cache,
		metrics:          metrics,
		logger:           logger,
		accessTTLSeconds: accessTTLSeconds,
	}
}

// ============================================================
// Hierarchy & accessible set
// ============================================================

// Get returns the caller's active company record.
func (s *CompanyService) Get(ctx context.Context, caller domain.Identity) (*domain.Company, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.Get")
	defer span.End()

	if caller.CompanyID == "" {
		return nil, &domain.ErrNotFound{Resource: "company", ID: "(none)"}
	}
	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.directory.GetCompany(ctx, token, caller.CompanyID)
}

// AccessibleSet returns the companies the caller may switch into:
// the company itself, its parent and the parent's other children when
// a parent exists, otherwise the company alone.
func (s *CompanyService) AccessibleSet(ctx context.Context, caller domain.Identity) ([]domain.Company, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.AccessibleSet")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", caller.CompanyID))

	if caller.CompanyID == "" {
		return []domain.Company{}, nil
	}

	cacheKey := "accessible:" + normalizeID(caller.CompanyID)
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("company")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("company")

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}

	company, err := s.directory.GetCompany(ctx, token, caller.CompanyID)
	if err != nil {
		s.metrics.IncrUpstreamError("companies.get")
		return nil, err
	}

	var set []domain.Company
	if company.ParentCompanyID.IsZero() {
		set = []domain.Company{*company}
	} else {
		// Visibility is computed relative to the parent: the parent
		// plus all of its children, the caller's company among them.
		parent, err := s.directory.GetCompany(ctx, token, company.ParentCompanyID.String())
		if err != nil {
			s.metrics.IncrUpstreamError("companies.get")
			return nil, err
		}
		siblings, err := s.directory.ListSubsidiaries(ctx, token, parent.ID.String())
		if err != nil {
			s.metrics.IncrUpstreamError("companies.subsidiaries")
			return nil, err
		}
		set = append([]domain.Company{*parent}, siblings...)
	}

	s.cache.Set(cacheKey, set)
	return set, nil
}

// CanAccess reports whether targetCompanyID is in the caller's
// accessible set. Privileged roles may switch anywhere.
func (s *CompanyService) CanAccess(ctx context.Context, caller domain.Identity, targetCompanyID string) (bool, error) {
	if caller.Role.Privileged() {
		return true, nil
	}
	set, err := s.AccessibleSet(ctx, caller)
	if err != nil {
		return false, err
	}
	target := normalizeID(targetCompanyID)
	for _, c := range set {
		if normalizeID(c.ID.String()) == target {
			return true, nil
		}
	}
	return false, nil
}

// ============================================================
// Company switch — POST /v1/company/switch
// ============================================================

// SwitchCompany re-mints an access token with the target company as the
// active companyId claim. The user's stored record is untouched: the
// switch lives only in the token, and the home company returns on the
// next login.
func (s *CompanyService) SwitchCompany(ctx context.Context, caller domain.Identity, targetCompanyID string) (*domain.SwitchCompanyResponse, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.SwitchCompany")
	defer span.End()
	span.SetAttributes(attribute.String("company.target", targetCompanyID))

	if targetCompanyID == "" {
		return nil, &domain.ErrValidation{Field: "companyId", Message: "companyId is required"}
	}

	ok, err := s.CanAccess(ctx, caller, targetCompanyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.IncrTenantDenial("company")
		s.logger.Warn("company switch denied",
			zap.String("user_id", caller.UserID),
			zap.String("target_company_id", targetCompanyID),
		)
		return nil, &domain.ErrAuthorization{
			Code:    domain.CodeTenantForbidden,
			Message: "company is not in your accessible set",
		}
	}

	switched := caller
	switched.CompanyID = normalizeID(targetCompanyID)
	accessToken, err := s.minter.MintAccessToken(switched)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("active company switched",
		zap.String("user_id", caller.UserID),
		zap.String("company_id", switched.CompanyID),
	)

	return &domain.SwitchCompanyResponse{
		AccessToken: accessToken,
		ExpiresIn:   s.accessTTLSeconds,
		CompanyID:   switched.CompanyID,
	}, nil
}

// ============================================================
// Roster & dashboard
// ============================================================

// ListUsers returns the caller's company roster, tenant-filtered in
// case upstream returns rows from other companies.
func (s *CompanyService) ListUsers(ctx context.Context, caller domain.Identity) ([]domain.CompanyUser, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.ListUsers")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}
	rows, err := s.directory.ListCompanyUsers(ctx, token, caller.CompanyID)
	if err != nil {
		s.metrics.IncrUpstreamError("companies.users")
		return nil, err
	}
	return FilterTenant(caller, domain.KindCompanyUser, rows), nil
}

// Dashboard aggregates order, quote and invoice counts for the caller's
// active company. The three upstream reads run concurrently; one
// failure fails the aggregate.
func (s *CompanyService) Dashboard(ctx context.Context, caller domain.Identity) (*domain.CompanyDashboard, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.Dashboard")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}

	var (
		orders   []domain.Order
		quotes   []domain.Quote
		invoices []domain.Invoice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.orders.ListOrders(gctx, token, domain.ListQuery{})
		if err != nil {
			s.metrics.IncrUpstreamError("orders.list")
			return err
		}
		orders = FilterTenant(caller, domain.KindOrder, rows)
		return nil
	})
	g.Go(func() error {
		rows, err := s.quotes.ListQuotes(gctx, token, domain.ListQuery{})
		if err != nil {
			s.metrics.IncrUpstreamError("quotes.list")
			return err
		}
		quotes = FilterTenant(caller, domain.KindQuote, rows)
		return nil
	})
	g.Go(func() error {
		rows, err := s.invoices.ListInvoices(gctx, token, domain.ListQuery{})
		if err != nil {
			s.metrics.IncrUpstreamError("invoices.list")
			return err
		}
		invoices = FilterTenant(caller, domain.KindInvoice, rows)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var open float64
	for _, inv := range invoices {
		open += inv.OpenAmount
	}

	return &domain.CompanyDashboard{
		CompanyID:    caller.CompanyID,
		OrderCount:   len(orders),
		QuoteCount:   len(quotes),
		InvoiceCount: len(invoices),
		OpenInvoices: open,
	}, nil
}
