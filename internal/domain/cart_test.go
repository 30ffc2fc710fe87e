package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id string, qty int, price string) CartLine {
	return CartLine{
		ProductID: id,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
		Product:   ProductSnapshot{Name: "product " + id},
	}
}

func TestAddLine_MergesQuantities(t *testing.T) {
	cart := NewCart(OriginGuest)
	cart.AddLine(line("p1", 2, "10.00"))
	cart.AddLine(line("p1", 3, "12.00"))

	require.Equal(t, 1, cart.Len())
	got, ok := cart.Line("p1")
	require.True(t, ok)
	assert.Equal(t, 5, got.Quantity)
	// The merged line keeps the price captured on first add.
	assert.True(t, got.UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestAddLine_IgnoresNonPositiveQuantity(t *testing.T) {
	cart := NewCart(OriginGuest)
	cart.AddLine(line("p1", 0, "10.00"))
	cart.AddLine(line("p2", -1, "10.00"))
	assert.Equal(t, 0, cart.Len())
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	cart := NewCart(OriginGuest)
	cart.AddLine(line("p1", 2, "10.00"))

	cart.SetQuantity("p1", 0)
	_, ok := cart.Line("p1")
	assert.False(t, ok)
}

func TestSetQuantity_NegativeTreatedAsZero(t *testing.T) {
	cart := NewCart(OriginGuest)
	cart.AddLine(line("p1", 2, "10.00"))

	cart.SetQuantity("p1", -5)
	assert.Equal(t, 0, cart.Len())
}

func TestSetQuantity_AbsentProductIsNoOp(t *testing.T) {
	cart := NewCart(OriginGuest)
	cart.SetQuantity("missing", 3)
	assert.Equal(t, 0, cart.Len())
}

func TestRemoveLine_Idempotent(t *testing.T) {
	cart := NewCart(OriginGuest)
	cart.AddLine(line("p1", 1, "5.00"))

	cart.RemoveLine("p1")
	once := cart.Lines()
	cart.RemoveLine("p1")
	twice := cart.Lines()

	assert.Equal(t, once, twice)
	assert.Empty(t, twice)
}

func TestReplace_DropsNonPositiveLines(t *testing.T) {
	cart := NewCart(OriginAccount)
	cart.AddLine(line("old", 1, "1.00"))

	cart.Replace([]CartLine{
		line("p1", 2, "3.00"),
		line("p2", 0, "4.00"),
	})

	require.Equal(t, 1, cart.Len())
	_, ok := cart.Line("old")
	assert.False(t, ok)
}

func TestSubtotalAndItemCount(t *testing.T) {
	cart := NewCart(OriginGuest)
	cart.AddLine(line("p1", 2, "10.50"))
	cart.AddLine(line("p2", 1, "4.99"))

	assert.True(t, cart.Subtotal().Equal(decimal.RequireFromString("25.99")))
	assert.Equal(t, 3, cart.ItemCount())
}

func TestLines_SortedByProductID(t *testing.T) {
	cart := NewCart(OriginGuest)
	cart.AddLine(line("b", 1, "1.00"))
	cart.AddLine(line("a", 1, "1.00"))
	cart.AddLine(line("c", 1, "1.00"))

	lines := cart.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "a", lines[0].ProductID)
	assert.Equal(t, "b", lines[1].ProductID)
	assert.Equal(t, "c", lines[2].ProductID)
}
