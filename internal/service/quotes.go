package service

import (
	"context"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
	"github.com/boddenberg/buyer-portal-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var quotesTracer = otel.Tracer("service/quotes")

// QuotesService proxies quote reads with tenant filtering.
type QuotesService struct {
	tokens  port.TokenStore
	fetcher port.QuotesFetcher
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewQuotesService creates a new quotes service.
func NewQuotesService(tokens port.TokenStore, fetcher port.QuotesFetcher, metrics *observability.Metrics, logger *zap.Logger) *QuotesService {
	return &QuotesService{tokens: tokens, fetcher: fetcher, metrics: metrics, logger: logger}
}

func (s *QuotesService) List(ctx context.Context, caller domain.Identity, q domain.ListQuery) ([]domain.Quote, error) {
	ctx, span := quotesTracer.Start(ctx, "QuotesService.List")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.fetcher.ListQuotes(ctx, token, q)
	if err != nil {
		s.metrics.IncrUpstreamError("quotes.list")
		return nil, err
	}
	return FilterTenant(caller, domain.KindQuote, rows), nil
}

func (s *QuotesService) Get(ctx context.Context, caller domain.Identity, quoteID string) (*domain.Quote, error) {
	ctx, span := quotesTracer.Start(ctx, "QuotesService.Get")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}

	quote, err := s.fetcher.GetQuote(ctx, token, quoteID)
	if err != nil {
		s.metrics.IncrUpstreamError("quotes.get")
		return nil, err
	}
	if !OwnsResource(caller, domain.KindQuote, *quote) {
		s.metrics.IncrTenantDenial("quote")
		s.logger.Warn("cross-tenant quote access denied",
			zap.String("user_id", caller.UserID),
			zap.String("quote_id", quoteID),
		)
		return nil, &domain.ErrAuthorization{
			Code:    domain.CodeTenantForbidden,
			Message: "quote belongs to another company",
		}
	}
	return quote, nil
}
