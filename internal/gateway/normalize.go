package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Abhijith1905/csp-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// The storefront API sits behind a gateway that sometimes double-encodes
// the payload as {"body": "<json string>"}. unwrapEnvelope returns the
// inner payload when that happens and the input untouched otherwise.
func unwrapEnvelope(data []byte) []byte {
	var env struct {
		Body json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &env); err != nil || len(env.Body) == 0 {
		return data
	}
	if env.Body[0] == '"' {
		var inner string
		if err := json.Unmarshal(env.Body, &inner); err == nil {
			return []byte(inner)
		}
		return data
	}
	return env.Body
}

// flexNumber decodes a JSON number whether it arrives as a number, a
// quoted string, or null.
type flexNumber struct {
	raw string
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	f.raw = n.String()
	return nil
}

func (f flexNumber) empty() bool { return f.raw == "" }

func (f flexNumber) decimal() (decimal.Decimal, error) {
	if f.raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(f.raw)
}

func (f flexNumber) int() (int, error) {
	if f.raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(f.raw)
	if err != nil {
		return 0, err
	}
	return int(d.IntPart()), nil
}

// flexString decodes an id that may arrive as a string or a bare number.
type flexString struct {
	raw string
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &f.raw)
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	f.raw = n.String()
	return nil
}

// wireProduct is the nested product object some endpoints attach to a
// cart item.
type wireProduct struct {
	Name     string     `json:"name"`
	Price    flexNumber `json:"price"`
	Quantity flexNumber `json:"quantity"`
	Image    string     `json:"image"`
	ImageURL string     `json:"imageUrl"`
}

// wireCartItem accepts every field spelling the API has been seen to
// use. This is the only place those fallback chains exist.
type wireCartItem struct {
	ProductID      flexString   `json:"productId"`
	ProductIDSnake flexString   `json:"product_id"`
	ID             flexString   `json:"id"`
	Quantity       flexNumber   `json:"quantity"`
	Price          flexNumber   `json:"price"`
	UnitPrice      flexNumber   `json:"unit_price"`
	Product        *wireProduct `json:"product"`
}

func (w wireCartItem) canonical() (domain.CartLine, error) {
	id := firstNonEmpty(w.ProductID.raw, w.ProductIDSnake.raw, w.ID.raw)
	if id == "" {
		return domain.CartLine{}, fmt.Errorf("cart item has no product id")
	}

	qty := w.Quantity
	if qty.empty() && w.Product != nil {
		qty = w.Product.Quantity
	}
	quantity, err := qty.int()
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("cart item %s: bad quantity: %w", id, err)
	}
	if quantity < 1 {
		quantity = 1
	}

	price := w.Price
	if price.empty() {
		price = w.UnitPrice
	}
	if price.empty() && w.Product != nil {
		price = w.Product.Price
	}
	unitPrice, err := price.decimal()
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("cart item %s: bad price: %w", id, err)
	}

	line := domain.CartLine{
		ProductID: id,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	if w.Product != nil {
		line.Product = domain.ProductSnapshot{
			Name:     w.Product.Name,
			ImageURL: firstNonEmpty(w.Product.ImageURL, w.Product.Image),
		}
	}
	return line, nil
}

func decodeCartLines(data []byte) ([]domain.CartLine, error) {
	data = unwrapEnvelope(data)
	var items []wireCartItem
	if err := json.Unmarshal(data, &items); err != nil {
		// Some responses wrap the list in {"items": [...]}.
		var wrapped struct {
			Items []wireCartItem `json:"items"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decode cart: %w", err)
		}
		items = wrapped.Items
	}

	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		line, err := item.canonical()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// wireProductDetail accepts the product catalog spellings.
type wireProductDetail struct {
	ID          flexString `json:"id"`
	ProductID   flexString `json:"productId"`
	IDSnake     flexString `json:"product_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Price       flexNumber `json:"price"`
	Image       string     `json:"image"`
	ImageURL    string     `json:"imageUrl"`
	Stock       flexNumber `json:"stock"`
}

func (w wireProductDetail) canonical() (domain.Product, error) {
	id := firstNonEmpty(w.ID.raw, w.ProductID.raw, w.IDSnake.raw)
	if id == "" {
		return domain.Product{}, fmt.Errorf("product has no id")
	}
	price, err := w.Price.decimal()
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: bad price: %w", id, err)
	}
	stock, err := w.Stock.int()
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: bad stock: %w", id, err)
	}
	return domain.Product{
		ID:          id,
		Name:        w.Name,
		Description: w.Description,
		Category:    w.Category,
		Price:       price,
		ImageURL:    firstNonEmpty(w.ImageURL, w.Image),
		Stock:       stock,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func formatInt(n int) string { return strconv.Itoa(n) }
