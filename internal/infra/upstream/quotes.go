package upstream

import (
	"context"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ListQuotes fetches quotes visible to the upstream token's account.
func (c *Client) ListQuotes(ctx context.Context, upstreamToken string, q domain.ListQuery) ([]domain.Quote, error) {
	ctx, span := tracer.Start(ctx, "Upstream.ListQuotes")
	defer span.End()

	body, err := c.get(ctx, "quotes.list", listPath("/quotes", q), upstreamToken)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return []domain.Quote{}, nil
	}

	var rows []domain.Quote
	if err := unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrUpstream{Operation: "quotes.list", Err: err}
	}
	return rows, nil
}

// GetQuote fetches a single quote by id.
func (c *Client) GetQuote(ctx context.Context, upstreamToken, quoteID string) (*domain.Quote, error) {
	ctx, span := tracer.Start(ctx, "Upstream.GetQuote")
	defer span.End()
	span.SetAttributes(attribute.String("quote.id", quoteID))

	body, err := c.get(ctx, "quotes.get", "/quotes/"+quoteID, upstreamToken)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "quote", ID: quoteID}
	}

	var quote domain.Quote
	if err := unmarshal(body, &quote); err != nil {
		return nil, &domain.ErrUpstream{Operation: "quotes.get", Err: err}
	}
	return &quote, nil
}
