package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abhijith1905/csp-storefront/internal/domain"
)

// OrderGateway submits finished orders to the remote order API.
type OrderGateway struct {
	client *Client
}

func NewOrderGateway(client *Client) *OrderGateway {
	return &OrderGateway{client: client}
}

type orderLinePayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type orderPayload struct {
	Items     []orderLinePayload `json:"items"`
	Subtotal  string             `json:"subtotal"`
	Shipping  string             `json:"shipping"`
	Tax       string             `json:"tax"`
	Total     string             `json:"total"`
	UserID    string             `json:"userId,omitempty"`
	UserEmail string             `json:"userEmail,omitempty"`
	Date      string             `json:"date"`
}

// Submit posts the order and returns the remote order id. Payment details
// never leave the client, so they are absent from the payload.
func (g *OrderGateway) Submit(ctx context.Context, order domain.Order) (string, error) {
	payload := orderPayload{
		Items:     make([]orderLinePayload, 0, len(order.Lines)),
		UserID:    order.OwnerSubjectID,
		UserEmail: order.OwnerEmail,
		Date:      order.CreatedAt.UTC().Format(time.RFC3339),
	}
	payload.Subtotal, payload.Shipping, payload.Tax, payload.Total = order.Totals.Display()
	for _, line := range order.Lines {
		payload.Items = append(payload.Items, orderLinePayload{
			ProductID: line.ProductID,
			Name:      line.ProductName,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice.String(),
		})
	}

	resp, err := g.client.request(ctx).SetBody(payload).Post("/order/add")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiError("submit order", resp)
	}

	var result struct {
		OrderID flexString `json:"orderId"`
	}
	if err := json.Unmarshal(unwrapEnvelope(resp.Body()), &result); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if result.OrderID.raw == "" {
		return "", fmt.Errorf("order response missing orderId")
	}
	return result.OrderID.raw, nil
}
