package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Abhijith1905/csp-storefront/internal/auth"
	"github.com/Abhijith1905/csp-storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestCart_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	sut := NewGuestCart(fs, "/data")

	lines := []domain.CartLine{{
		ProductID: "p1",
		Quantity:  2,
		UnitPrice: decimal.RequireFromString("10.50"),
		Product:   domain.ProductSnapshot{Name: "Widget", ImageURL: "https://cdn/p1.png"},
	}}
	require.NoError(t, sut.Save(context.Background(), lines))

	loaded, err := sut.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "p1", loaded[0].ProductID)
	assert.Equal(t, 2, loaded[0].Quantity)
	assert.True(t, loaded[0].UnitPrice.Equal(decimal.RequireFromString("10.50")))
	assert.Equal(t, "Widget", loaded[0].Product.Name)
}

func TestGuestCart_MissingFile_LoadsEmpty(t *testing.T) {
	sut := NewGuestCart(afero.NewMemMapFs(), "/data")
	lines, err := sut.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestGuestCart_SaveEmpty_Clears(t *testing.T) {
	fs := afero.NewMemMapFs()
	sut := NewGuestCart(fs, "/data")
	require.NoError(t, sut.Save(context.Background(), []domain.CartLine{{ProductID: "p1", Quantity: 1}}))

	require.NoError(t, sut.Save(context.Background(), nil))

	lines, err := sut.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestTokens_RoundTripAndClear(t *testing.T) {
	sut := NewTokens(afero.NewMemMapFs(), "/data")
	set := auth.TokenSet{AccessToken: "a", IDToken: "i", RefreshToken: "r"}

	require.NoError(t, sut.Save(context.Background(), set))
	loaded, err := sut.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, set, loaded)

	require.NoError(t, sut.Clear(context.Background()))
	loaded, err = sut.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.Empty())
}

func TestOrderHistory_AppendListAndPending(t *testing.T) {
	sut := NewOrderHistory(afero.NewMemMapFs(), "/data")
	ctx := context.Background()

	older := domain.Order{ID: "o1", Status: domain.OrderStatusSubmitted, CreatedAt: time.Now().Add(-time.Hour)}
	newer := domain.Order{ID: "o2", Status: domain.OrderStatusPendingLocal, CreatedAt: time.Now()}
	require.NoError(t, sut.Append(ctx, older))
	require.NoError(t, sut.Append(ctx, newer))

	orders, err := sut.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].ID, "newest first")

	pending, err := sut.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "o2", pending[0].ID)
}

func TestOrderHistory_AppendDuplicateID_Fails(t *testing.T) {
	sut := NewOrderHistory(afero.NewMemMapFs(), "/data")
	ctx := context.Background()
	require.NoError(t, sut.Append(ctx, domain.Order{ID: "o1", CreatedAt: time.Now()}))

	err := sut.Append(ctx, domain.Order{ID: "o1", CreatedAt: time.Now()})
	assert.Error(t, err)
}

func TestOrderHistory_MarkSubmitted(t *testing.T) {
	sut := NewOrderHistory(afero.NewMemMapFs(), "/data")
	ctx := context.Background()
	require.NoError(t, sut.Append(ctx, domain.Order{ID: "o1", Status: domain.OrderStatusPendingLocal, CreatedAt: time.Now()}))

	require.NoError(t, sut.MarkSubmitted(ctx, "o1", "remote-9"))
	// Marking again is a harmless no-op.
	require.NoError(t, sut.MarkSubmitted(ctx, "o1", "remote-other"))

	orders, err := sut.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusSubmitted, orders[0].Status)
	assert.Equal(t, "remote-9", orders[0].RemoteID)

	assert.Error(t, sut.MarkSubmitted(ctx, "missing", "x"))
}

func TestWishlist_RoundTrip(t *testing.T) {
	sut := NewWishlist(afero.NewMemMapFs(), "/data")
	ctx := context.Background()

	require.NoError(t, sut.Save(ctx, []string{"p1", "p2"}))
	ids, err := sut.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	require.NoError(t, sut.Save(ctx, nil))
	ids, err = sut.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
