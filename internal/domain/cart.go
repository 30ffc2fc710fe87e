package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

type CartOrigin string

const (
	OriginGuest   CartOrigin = "GUEST"
	OriginAccount CartOrigin = "ACCOUNT"
)

// ProductSnapshot carries the display-only fields captured when a line was
// added, so rendering and checkout never need a second product fetch.
type ProductSnapshot struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// CartLine is one product entry in a cart. UnitPrice is a snapshot of the
// price at add time and is never re-fetched; silently changing a total the
// user has already seen is worse than a slightly stale price.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Product   ProductSnapshot `json:"product"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the line aggregate. Lines are keyed by product id, so a product
// can never appear twice. Quantities below 1 are never stored; a line set
// to zero is removed.
type Cart struct {
	Origin CartOrigin
	lines  map[string]CartLine
}

func NewCart(origin CartOrigin) *Cart {
	return &Cart{Origin: origin, lines: make(map[string]CartLine)}
}

// AddLine merges quantity into an existing line for the same product, or
// inserts a new one. Merging keeps the original unit price snapshot.
func (c *Cart) AddLine(line CartLine) {
	if line.Quantity < 1 {
		return
	}
	if existing, ok := c.lines[line.ProductID]; ok {
		existing.Quantity += line.Quantity
		c.lines[line.ProductID] = existing
		return
	}
	c.lines[line.ProductID] = line
}

// SetQuantity clamps negative input to zero; zero removes the line.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity < 0 {
		quantity = 0
	}
	line, ok := c.lines[productID]
	if !ok {
		return
	}
	if quantity == 0 {
		delete(c.lines, productID)
		return
	}
	line.Quantity = quantity
	c.lines[productID] = line
}

// RemoveLine is idempotent; removing an absent product is a no-op.
func (c *Cart) RemoveLine(productID string) {
	delete(c.lines, productID)
}

func (c *Cart) Clear() {
	c.lines = make(map[string]CartLine)
}

// Replace swaps the whole line set for an authoritative one, dropping any
// lines with a non-positive quantity.
func (c *Cart) Replace(lines []CartLine) {
	c.lines = make(map[string]CartLine, len(lines))
	for _, l := range lines {
		c.AddLine(l)
	}
}

func (c *Cart) Line(productID string) (CartLine, bool) {
	l, ok := c.lines[productID]
	return l, ok
}

func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns the line set ordered by product id for stable rendering.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}
