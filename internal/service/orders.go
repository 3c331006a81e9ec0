package service

import (
	"context"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
	"github.com/boddenberg/buyer-portal-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var ordersTracer = otel.Tracer("service/orders")

// OrdersService proxies order reads to the upstream platform with the
// caller's stored token and re-filters the results by tenant.
type OrdersService struct {
	tokens  port.TokenStore
	fetcher port.OrdersFetcher
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewOrdersService creates a new orders service.
func NewOrdersService(tokens port.TokenStore, fetcher port.OrdersFetcher, metrics *observability.Metrics, logger *zap.Logger) *OrdersService {
	return &OrdersService{tokens: tokens, fetcher: fetcher, metrics: metrics, logger: logger}
}

// List returns the caller's company orders. Rows belonging to other
// tenants are dropped, never surfaced as errors.
func (s *OrdersService) List(ctx context.Context, caller domain.Identity, q domain.ListQuery) ([]domain.Order, error) {
	ctx, span := ordersTracer.Start(ctx, "OrdersService.List")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.fetcher.ListOrders(ctx, token, q)
	if err != nil {
		s.metrics.IncrUpstreamError("orders.list")
		return nil, err
	}
	return FilterTenant(caller, domain.KindOrder, rows), nil
}

// Get returns one order. A cross-tenant hit is a 403, not a 404: the
// resource exists, the caller is simply denied.
func (s *OrdersService) Get(ctx context.Context, caller domain.Identity, orderID string) (*domain.Order, error) {
	ctx, span := ordersTracer.Start(ctx, "OrdersService.Get")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}

	order, err := s.fetcher.GetOrder(ctx, token, orderID)
	if err != nil {
		s.metrics.IncrUpstreamError("orders.get")
		return nil, err
	}
	if !OwnsResource(caller, domain.KindOrder, *order) {
		s.metrics.IncrTenantDenial("order")
		s.logger.Warn("cross-tenant order access denied",
			zap.String("user_id", caller.UserID),
			zap.String("order_id", orderID),
		)
		return nil, &domain.ErrAuthorization{
			Code:    domain.CodeTenantForbidden,
			Message: "order belongs to another company",
		}
	}
	return order, nil
}
