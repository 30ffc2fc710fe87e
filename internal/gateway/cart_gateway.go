package gateway

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/Abhijith1905/csp-storefront/internal/domain"
)

// CartGateway talks to the remote cart resource. Reads go through a
// circuit breaker so a degraded backend fails fast instead of stalling
// every reconcile.
type CartGateway struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[[]domain.CartLine]
}

func NewCartGateway(client *Client) *CartGateway {
	settings := gobreaker.Settings{
		Name:    "cart-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			client.logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &CartGateway{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]domain.CartLine](settings),
	}
}

// cartItemPayload is the shape POST /cart accepts.
type cartItemPayload struct {
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     string           `json:"price"`
	Product   *cartProductBody `json:"product,omitempty"`
}

type cartProductBody struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (g *CartGateway) GetCart(ctx context.Context) ([]domain.CartLine, error) {
	return g.breaker.Execute(func() ([]domain.CartLine, error) {
		resp, err := g.client.request(ctx).Get("/cart")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, apiError("get cart", resp)
		}
		return decodeCartLines(resp.Body())
	})
}

func (g *CartGateway) AddItem(ctx context.Context, line domain.CartLine) error {
	payload := cartItemPayload{
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		Price:     line.UnitPrice.String(),
	}
	if line.Product.Name != "" || line.Product.ImageURL != "" {
		payload.Product = &cartProductBody{
			Name:  line.Product.Name,
			Image: line.Product.ImageURL,
		}
	}
	resp, err := g.client.request(ctx).SetBody(payload).Post("/cart")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError("add cart item", resp)
	}
	return nil
}

func (g *CartGateway) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	body := map[string]int{"quantity": quantity}
	resp, err := g.client.request(ctx).SetBody(body).Put("/cart/" + productID)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError("update cart quantity", resp)
	}
	return nil
}

// RemoveItem treats a 404 as success so retried deletes stay idempotent.
func (g *CartGateway) RemoveItem(ctx context.Context, productID string) error {
	resp, err := g.client.request(ctx).Delete("/cart/" + productID)
	if err != nil {
		return err
	}
	if resp.IsError() && !isNotFound(resp) {
		return apiError("remove cart item", resp)
	}
	return nil
}

func (g *CartGateway) Clear(ctx context.Context) error {
	resp, err := g.client.request(ctx).Delete("/cart")
	if err != nil {
		return err
	}
	if resp.IsError() && !isNotFound(resp) {
		return apiError("clear cart", resp)
	}
	return nil
}
