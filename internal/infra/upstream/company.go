package upstream

import (
	"context"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// GetCompany fetches one company record.
func (c *Client) GetCompany(ctx context.Context, upstreamToken, companyID string) (*domain.Company, error) {
	ctx, span := tracer.Start(ctx, "Upstream.GetCompany")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	body, err := c.get(ctx, "companies.get", "/companies/"+companyID, upstreamToken)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "company", ID: companyID}
	}

	var company domain.Company
	if err := unmarshal(body, &company); err != nil {
		return nil, &domain.ErrUpstream{Operation: "companies.get", Err: err}
	}
	return &company, nil
}

// ListSubsidiaries fetches the direct children of a company.
func (c *Client) ListSubsidiaries(ctx context.Context, upstreamToken, companyID string) ([]domain.Company, error) {
	ctx, span := tracer.Start(ctx, "Upstream.ListSubsidiaries")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	body, err := c.get(ctx, "companies.subsidiaries", "/companies/"+companyID+"/subsidiaries", upstreamToken)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return []domain.Company{}, nil
	}

	var rows []domain.Company
	if err := unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrUpstream{Operation: "companies.subsidiaries", Err: err}
	}
	return rows, nil
}

// ListCompanyUsers fetches the user roster of a company.
func (c *Client) ListCompanyUsers(ctx context.Context, upstreamToken, companyID string) ([]domain.CompanyUser, error) {
	ctx, span := tracer.Start(ctx, "Upstream.ListCompanyUsers")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	body, err := c.get(ctx, "companies.users", "/companies/"+companyID+"/users", upstreamToken)
	if err != nil {
		return nil, asSessionExpired(err)
	}
	if body == nil {
		return []domain.CompanyUser{}, nil
	}

	var rows []domain.CompanyUser
	if err := unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrUpstream{Operation: "companies.users", Err: err}
	}
	return rows, nil
}
