// Package catalog exposes product browsing to everyone and the product
// console to admins. Authorization is checked here, before any request
// leaves the process; the API enforces it again server-side.
package catalog

import (
	"context"
	"errors"

	"github.com/Abhijith1905/csp-storefront/internal/domain"
)

// ErrForbidden means the current principal lacks the admin role.
var ErrForbidden = errors.New("forbidden: admin role required")

// Gateway is the catalog REST surface the service consumes.
type Gateway interface {
	List(ctx context.Context, query domain.ProductQuery) (domain.ProductPage, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	Update(ctx context.Context, id string, update domain.ProductUpdate) error
	Delete(ctx context.Context, id string) error
}

// PrincipalSource yields the current resolved principal.
type PrincipalSource func() domain.Principal

type Service struct {
	gateway   Gateway
	principal PrincipalSource
}

func NewService(gateway Gateway, principal PrincipalSource) *Service {
	return &Service{gateway: gateway, principal: principal}
}

func (s *Service) List(ctx context.Context, query domain.ProductQuery) (domain.ProductPage, error) {
	return s.gateway.List(ctx, query)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.gateway.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	if !s.principal().IsAdmin() {
		return domain.Product{}, ErrForbidden
	}
	return s.gateway.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, id string, update domain.ProductUpdate) error {
	if !s.principal().IsAdmin() {
		return ErrForbidden
	}
	return s.gateway.Update(ctx, id, update)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !s.principal().IsAdmin() {
		return ErrForbidden
	}
	return s.gateway.Delete(ctx, id)
}
