package service

import (
	"context"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
	"github.com/boddenberg/buyer-portal-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var invoicesTracer = otel.Tracer("service/invoices")

// InvoicesService proxies invoice reads with tenant filtering.
type InvoicesService struct {
	tokens  port.TokenStore
	fetcher port.InvoicesFetcher
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewInvoicesService creates a new invoices service.
func NewInvoicesService(tokens port.TokenStore, fetcher port.InvoicesFetcher, metrics *observability.Metrics, logger *zap.Logger) *InvoicesService {
	return &InvoicesService{tokens: tokens, fetcher: fetcher, metrics: metrics, logger: logger}
}

func (s *InvoicesService) List(ctx context.Context, caller domain.Identity, q domain.ListQuery) ([]domain.Invoice, error) {
	ctx, span := invoicesTracer.Start(ctx, "InvoicesService.List")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.fetcher.ListInvoices(ctx, token, q)
	if err != nil {
		s.metrics.IncrUpstreamError("invoices.list")
		return nil, err
	}
	return FilterTenant(caller, domain.KindInvoice, rows), nil
}

func (s *InvoicesService) Get(ctx context.Context, caller domain.Identity, invoiceID string) (*domain.Invoice, error) {
	ctx, span := invoicesTracer.Start(ctx, "InvoicesService.Get")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.fetcher.GetInvoice(ctx, token, invoiceID)
	if err != nil {
		s.metrics.IncrUpstreamError("invoices.get")
		return nil, err
	}
	if !OwnsResource(caller, domain.KindInvoice, *invoice) {
		s.metrics.IncrTenantDenial("invoice")
		s.logger.Warn("cross-tenant invoice access denied",
			zap.String("user_id", caller.UserID),
			zap.String("invoice_id", invoiceID),
		)
		return nil, &domain.ErrAuthorization{
			Code:    domain.CodeTenantForbidden,
			Message: "invoice belongs to another company",
		}
	}
	return invoice, nil
}
