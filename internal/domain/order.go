package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	// OrderStatusSubmitted means the remote order API confirmed the order.
	OrderStatusSubmitted OrderStatus = "SUBMITTED"
	// OrderStatusPendingLocal means remote submission failed and the order
	// exists only in local history until the retry poller lands it.
	OrderStatusPendingLocal OrderStatus = "PENDING_LOCAL"
)

type OrderLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Totals keeps full precision; rounding happens only at the presentation
// edge so intermediate arithmetic never compounds rounding error.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Display returns the four amounts rounded to cents, as strings.
func (t Totals) Display() (subtotal, shipping, tax, grand string) {
	return t.Subtotal.StringFixed(2), t.Shipping.StringFixed(2),
		t.Tax.StringFixed(2), t.GrandTotal.StringFixed(2)
}

// Order is an immutable checkout result; history is append-only.
type Order struct {
	ID             string      `json:"id"`
	RemoteID       string      `json:"remote_id,omitempty"`
	OwnerSubjectID string      `json:"owner_subject_id,omitempty"`
	OwnerEmail     string      `json:"owner_email,omitempty"`
	Lines          []OrderLine `json:"lines"`
	Totals         Totals      `json:"totals"`
	Status         OrderStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
}
