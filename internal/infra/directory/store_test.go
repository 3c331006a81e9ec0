package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
)

func newUser(id, email string) *domain.User {
	return &domain.User{
		ID:        id,
		Email:     email,
		Role:      domain.RoleBuyer,
		CompanyID: "c1",
		Status:    domain.UserActive,
	}
}

func TestStore_CreateAndLookup(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Create(ctx, newUser("u1", "alice@acme.test")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	byID, err := s.GetByID(ctx, "u1")
	if err != nil || byID == nil {
		t.Fatalf("GetByID: %v %v", byID, err)
	}

	// Email lookup is case-insensitive.
	byEmail, err := s.GetByEmail(ctx, "ALICE@acme.test")
	if err != nil || byEmail == nil || byEmail.ID != "u1" {
		t.Fatalf("GetByEmail: %v %v", byEmail, err)
	}
}

func TestStore_DuplicateEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	s.Create(ctx, newUser("u1", "alice@acme.test"))
	err := s.Create(ctx, newUser("u2", "Alice@acme.test"))

	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestStore_UpdateReindexesEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	s.Create(ctx, newUser("u1", "alice@acme.test"))

	u, _ := s.GetByID(ctx, "u1")
	u.Email = "alice@other.test"
	if err := s.Update(ctx, u); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if got, _ := s.GetByEmail(ctx, "alice@acme.test"); got != nil {
		t.Error("old email should no longer resolve")
	}
	if got, _ := s.GetByEmail(ctx, "alice@other.test"); got == nil {
		t.Error("new email should resolve")
	}
}

func TestStore_UpdateUnknownUser(t *testing.T) {
	s := NewStore()

	err := s.Update(context.Background(), newUser("ghost", "g@x.test"))
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AbsentIsNilNil(t *testing.T) {
	s := NewStore()

	u, err := s.GetByEmail(context.Background(), "nobody@x.test")
	if err != nil || u != nil {
		t.Fatalf("expected nil,nil for absent user, got %v %v", u, err)
	}
}
