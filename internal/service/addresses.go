package service

import (
	"context"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
	"github.com/boddenberg/buyer-portal-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var addressesTracer = otel.Tracer("service/addresses")

// AddressesService manages company addresses through the upstream
// platform. Mutations verify ownership of the existing record before
// they are forwarded.
type AddressesService struct {
	tokens  port.TokenStore
	book    port.AddressBook
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAddressesService creates a new addresses service.
func NewAddressesService(tokens port.TokenStore, book port.AddressBook, metrics *observability.Metrics, logger *zap.Logger) *AddressesService {
	return &AddressesService{tokens: tokens, book: book, metrics: metrics, logger: logger}
}

func (s *AddressesService) List(ctx context.Context, caller domain.Identity, q domain.ListQuery) ([]domain.Address, error) {
	ctx, span := addressesTracer.Start(ctx, "AddressesService.List")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.book.ListAddresses(ctx, token, q)
	if err != nil {
		s.metrics.IncrUpstreamError("addresses.list")
		return nil, err
	}
	return FilterTenant(caller, domain.KindAddress, rows), nil
}

func (s *AddressesService) Get(ctx context.Context, caller domain.Identity, addressID string) (*domain.Address, error) {
	ctx, span := addressesTracer.Start(ctx, "AddressesService.Get")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.fetchOwned(ctx, caller, token, addressID)
}

// Create forces the new address into the caller's company. Privileged
// callers may create for another company by setting companyId.
func (s *AddressesService) Create(ctx context.Context, caller domain.Identity, a *domain.Address) (*domain.Address, error) {
	ctx, span := addressesTracer.Start(ctx, "AddressesService.Create")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}

	if a.Street == "" || a.City == "" || a.Country == "" {
		return nil, &domain.ErrValidation{Field: "addressLine1", Message: "street, city and country are required"}
	}
	if !caller.Role.Privileged() || a.CompanyID.IsZero() {
		a.CompanyID = domain.FlexID(caller.CompanyID)
	}

	created, err := s.book.CreateAddress(ctx, token, a)
	if err != nil {
		s.metrics.IncrUpstreamError("addresses.create")
		return nil, err
	}
	s.logger.Info("address created",
		zap.String("user_id", caller.UserID),
		zap.String("address_id", created.ID.String()),
	)
	return created, nil
}

// Update verifies ownership of the stored record before forwarding the
// mutation, so a forged companyId in the payload cannot reach a foreign
// address.
func (s *AddressesService) Update(ctx context.Context, caller domain.Identity, addressID string, a *domain.Address) (*domain.Address, error) {
	ctx, span := addressesTracer.Start(ctx, "AddressesService.Update")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return nil, err
	}

	existing, err := s.fetchOwned(ctx, caller, token, addressID)
	if err != nil {
		return nil, err
	}

	a.ID = existing.ID
	a.CompanyID = existing.CompanyID
	updated, err := s.book.UpdateAddress(ctx, token, a)
	if err != nil {
		s.metrics.IncrUpstreamError("addresses.update")
		return nil, err
	}
	return updated, nil
}

func (s *AddressesService) Delete(ctx context.Context, caller domain.Identity, addressID string) error {
	ctx, span := addressesTracer.Start(ctx, "AddressesService.Delete")
	defer span.End()

	token, err := resolveUpstreamToken(s.tokens, caller.UserID)
	if err != nil {
		return err
	}

	if _, err := s.fetchOwned(ctx, caller, token, addressID); err != nil {
		return err
	}

	if err := s.book.DeleteAddress(ctx, token, addressID); err != nil {
		s.metrics.IncrUpstreamError("addresses.delete")
		return err
	}
	s.logger.Info("address deleted",
		zap.String("user_id", caller.UserID),
		zap.String("address_id", addressID),
	)
	return nil
}

func (s *AddressesService) fetchOwned(ctx context.Context, caller domain.Identity, token, addressID string) (*domain.Address, error) {
	addr, err := s.book.GetAddress(ctx, token, addressID)
	if err != nil {
		s.metrics.IncrUpstreamError("addresses.get")
		return nil, err
	}
	if !OwnsResource(caller, domain.KindAddress, *addr) {
		s.metrics.IncrTenantDenial("address")
		s.logger.Warn("cross-tenant address access denied",
			zap.String("user_id", caller.UserID),
			zap.String("address_id", addressID),
		)
		return nil, &domain.ErrAuthorization{
			Code:    domain.CodeTenantForbidden,
			Message: "address belongs to another company",
		}
	}
	return addr, nil
}
