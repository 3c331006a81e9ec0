package upstream

import (
	"context"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ListOrders fetches orders visible to the upstream token's account.
// Query parameters are forwarded verbatim; tenant filtering happens in
// the service layer, never here.
func (c *Client) ListOrders(ctx context.Context, upstreamToken string, q domain.ListQuery) ([]domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Upstream.ListOrders")
	defer span.End()

	body, err := c.get(ctx, "orders.list", listPath("/orders", q), upstreamToken)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return []domain.Order{}, nil
	}

	var rows []domain.Order
	if err := unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrUpstream{Operation: "orders.list", Err: err}
	}
	return rows, nil
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, upstreamToken, orderID string) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Upstream.GetOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	body, err := c.get(ctx, "orders.get", "/orders/"+orderID, upstreamToken)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "order", ID: orderID}
	}

	var order domain.Order
	if err := unmarshal(body, &order); err != nil {
		return nil, &domain.ErrUpstream{Operation: "orders.get", Err: err}
	}
	return &order, nil
}
