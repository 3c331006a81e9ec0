package upstream

import (
	"context"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ListInvoices fetches invoices visible to the upstream token's account.
func (c *Client) ListInvoices(ctx context.Context, upstreamToken string, q domain.ListQuery) ([]domain.Invoice, error) {
	ctx, span := tracer.Start(ctx, "Upstream.ListInvoices")
	defer span.End()

	body, err := c.get(ctx, "invoices.list", listPath("/invoices", q), upstreamToken)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return []domain.Invoice{}, nil
	}

	var rows []domain.Invoice
	if err := unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrUpstream{Operation: "invoices.list", Err: err}
	}
	return rows, nil
}

// GetInvoice fetches a single invoice by id.
func (c *Client) GetInvoice(ctx context.Context, upstreamToken, invoiceID string) (*domain.Invoice, error) {
	ctx, span := tracer.Start(ctx, "Upstream.GetInvoice")
	defer span.End()
	span.SetAttributes(attribute.String("invoice.id", invoiceID))

	body, err := c.get(ctx, "invoices.get", "/invoices/"+invoiceID, upstreamToken)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "invoice", ID: invoiceID}
	}

	var invoice domain.Invoice
	if err := unmarshal(body, &invoice); err != nil {
		return nil, &domain.ErrUpstream{Operation: "invoices.get", Err: err}
	}
	return &invoice, nil
}
