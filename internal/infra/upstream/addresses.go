package upstream

import (
	"context"
	"net/http"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ListAddresses fetches the addresses visible to the upstream token's
// account.
func (c *Client) ListAddresses(ctx context.Context, upstreamToken string, q domain.ListQuery) ([]domain.Address, error) {
	ctx, span := tracer.Start(ctx, "Upstream.ListAddresses")
	defer span.End()

	body, err := c.get(ctx, "addresses.list", listPath("/addresses", q), upstreamToken)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return []domain.Address{}, nil
	}

	var rows []domain.Address
	if err := unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrUpstream{Operation: "addresses.list", Err: err}
	}
	return rows, nil
}

// GetAddress fetches a single address by id.
func (c *Client) GetAddress(ctx context.Context, upstreamToken, addressID string) (*domain.Address, error) {
	ctx, span := tracer.Start(ctx, "Upstream.GetAddress")
	defer span.End()
	span.SetAttributes(attribute.String("address.id", addressID))

	body, err := c.get(ctx, "addresses.get", "/addresses/"+addressID, upstreamToken)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "address", ID: addressID}
	}

	var addr domain.Address
	if err := unmarshal(body, &addr); err != nil {
		return nil, &domain.ErrUpstream{Operation: "addresses.get", Err: err}
	}
	return &addr, nil
}

// CreateAddress creates a company address upstream.
func (c *Client) CreateAddress(ctx context.Context, upstreamToken string, a *domain.Address) (*domain.Address, error) {
	ctx, span := tracer.Start(ctx, "Upstream.CreateAddress")
	defer span.End()

	body, err := c.send(ctx, "addresses.create", http.MethodPost, "/addresses", upstreamToken, a)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return a, nil
	}

	var created domain.Address
	if err := unmarshal(body, &created); err != nil {
		return nil, &domain.ErrUpstream{Operation: "addresses.create", Err: err}
	}
	return &created, nil
}

// UpdateAddress updates a company address upstream.
func (c *Client) UpdateAddress(ctx context.Context, upstreamToken string, a *domain.Address) (*domain.Address, error) {
	ctx, span := tracer.Start(ctx, "Upstream.UpdateAddress")
	defer span.End()
	span.SetAttributes(attribute.String("address.id", a.ID.String()))

	body, err := c.send(ctx, "addresses.update", http.MethodPut, "/addresses/"+a.ID.String(), upstreamToken, a)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "address", ID: a.ID.String()}
	}

	var updated domain.Address
	if err := unmarshal(body, &updated); err != nil {
		return nil, &domain.ErrUpstream{Operation: "addresses.update", Err: err}
	}
	return &updated, nil
}

// DeleteAddress deletes a company address upstream.
func (c *Client) DeleteAddress(ctx context.Context, upstreamToken, addressID string) error {
	ctx, span := tracer.Start(ctx, "Upstream.DeleteAddress")
	defer span.End()
	span.SetAttributes(attribute.String("address.id", addressID))

	_, err := c.send(ctx, "addresses.delete", http.MethodDelete, "/addresses/"+addressID, upstreamToken, nil)
	if err != nil {
		return asSessionExpired(err)
	}
	return nil
}
