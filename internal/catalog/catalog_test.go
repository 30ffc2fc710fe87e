package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhijith1905/csp-storefront/internal/domain"
)

type mockGateway struct {
	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
	products    map[string]domain.Product
}

func newMockGateway() *mockGateway {
	return &mockGateway{products: make(map[string]domain.Product)}
}

func (m *mockGateway) List(context.Context, domain.ProductQuery) (domain.ProductPage, error) {
	m.listCalls++
	items := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		items = append(items, p)
	}
	return domain.ProductPage{Items: items, Total: len(items), Page: 1}, nil
}

func (m *mockGateway) Get(_ context.Context, id string) (domain.Product, error) {
	return m.products[id], nil
}

func (m *mockGateway) Create(_ context.Context, product domain.Product) (domain.Product, error) {
	m.createCalls++
	m.products[product.ID] = product
	return product, nil
}

func (m *mockGateway) Update(_ context.Context, id string, _ domain.ProductUpdate) error {
	m.updateCalls++
	return nil
}

func (m *mockGateway) Delete(_ context.Context, id string) error {
	m.deleteCalls++
	delete(m.products, id)
	return nil
}

func fixedPrincipal(p domain.Principal) PrincipalSource {
	return func() domain.Principal { return p }
}

func admin() domain.Principal {
	return domain.Principal{Kind: domain.PrincipalIdentified, SubjectID: "sub-1", Role: domain.RoleAdmin}
}

func customer() domain.Principal {
	return domain.Principal{Kind: domain.PrincipalIdentified, SubjectID: "sub-2", Role: domain.RoleCustomer}
}

func TestBrowse_OpenToEveryone(t *testing.T) {
	gw := newMockGateway()
	sut := NewService(gw, fixedPrincipal(domain.Anonymous()))

	_, err := sut.List(context.Background(), domain.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, gw.listCalls)
}

func TestConsole_RequiresAdmin(t *testing.T) {
	gw := newMockGateway()
	sut := NewService(gw, fixedPrincipal(customer()))

	_, err := sut.Create(context.Background(), domain.Product{ID: "p1"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, sut.Update(context.Background(), "p1", domain.ProductUpdate{}), ErrForbidden)
	assert.ErrorIs(t, sut.Delete(context.Background(), "p1"), ErrForbidden)
	assert.Zero(t, gw.createCalls)
	assert.Zero(t, gw.updateCalls)
	assert.Zero(t, gw.deleteCalls)
}

func TestConsole_AdminPassesThrough(t *testing.T) {
	gw := newMockGateway()
	sut := NewService(gw, fixedPrincipal(admin()))

	product := domain.Product{ID: "p1", Name: "Lamp", Price: decimal.RequireFromString("24.99")}
	created, err := sut.Create(context.Background(), product)
	require.NoError(t, err)
	assert.Equal(t, product, created)

	name := "Desk Lamp"
	require.NoError(t, sut.Update(context.Background(), "p1", domain.ProductUpdate{Name: &name}))
	require.NoError(t, sut.Delete(context.Background(), "p1"))
	assert.Equal(t, 1, gw.createCalls)
	assert.Equal(t, 1, gw.updateCalls)
	assert.Equal(t, 1, gw.deleteCalls)
}

func TestConsole_AnonymousForbidden(t *testing.T) {
	sut := NewService(newMockGateway(), fixedPrincipal(domain.Anonymous()))
	assert.ErrorIs(t, sut.Delete(context.Background(), "p1"), ErrForbidden)
}
