package gateway

import (
	"context"
	"encoding/json"
	"fmt"
)

// WishlistGateway is the remote wishlist client. The wishlist is a set of
// product ids; the API may return full items but only the ids are kept.
type WishlistGateway struct {
	client *Client
}

func NewWishlistGateway(client *Client) *WishlistGateway {
	return &WishlistGateway{client: client}
}

func (g *WishlistGateway) Get(ctx context.Context) ([]string, error) {
	resp, err := g.client.request(ctx).Get("/wishlist")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError("get wishlist", resp)
	}

	data := unwrapEnvelope(resp.Body())
	var items []wireCartItem
	if err := json.Unmarshal(data, &items); err != nil {
		var wrapped struct {
			Items []wireCartItem `json:"items"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decode wishlist: %w", err)
		}
		items = wrapped.Items
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		id := firstNonEmpty(item.ProductID.raw, item.ProductIDSnake.raw, item.ID.raw)
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (g *WishlistGateway) Add(ctx context.Context, productID string) error {
	body := map[string]string{"productId": productID}
	resp, err := g.client.request(ctx).SetBody(body).Post("/wishlist")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError("add wishlist item", resp)
	}
	return nil
}

// Remove treats a 404 as success, matching the cart delete semantics.
func (g *WishlistGateway) Remove(ctx context.Context, productID string) error {
	resp, err := g.client.request(ctx).Delete("/wishlist/" + productID)
	if err != nil {
		return err
	}
	if resp.IsError() && !isNotFound(resp) {
		return apiError("remove wishlist item", resp)
	}
	return nil
}
