package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abhijith1905/csp-storefront/internal/domain"
)

// ProductGateway is the catalog REST client. Listing and lookup are
// public; create, update and delete require an authenticated call and the
// API enforces the admin group server-side as well.
type ProductGateway struct {
	client *Client
}

func NewProductGateway(client *Client) *ProductGateway {
	return &ProductGateway{client: client}
}

func (g *ProductGateway) List(ctx context.Context, query domain.ProductQuery) (domain.ProductPage, error) {
	req := g.client.request(ctx)
	if query.Search != "" {
		req.SetQueryParam("search", query.Search)
	}
	if query.Category != "" {
		req.SetQueryParam("category", query.Category)
	}
	if query.Page > 0 {
		req.SetQueryParam("page", formatInt(query.Page))
	}
	if query.PageSize > 0 {
		req.SetQueryParam("limit", formatInt(query.PageSize))
	}

	resp, err := req.Get("/products")
	if err != nil {
		return domain.ProductPage{}, err
	}
	if resp.IsError() {
		return domain.ProductPage{}, apiError("list products", resp)
	}

	data := unwrapEnvelope(resp.Body())
	var raw struct {
		Products []wireProductDetail `json:"products"`
		Items    []wireProductDetail `json:"items"`
		Total    flexNumber          `json:"total"`
		Page     flexNumber          `json:"page"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		// A bare array is also accepted.
		var list []wireProductDetail
		if err2 := json.Unmarshal(data, &list); err2 != nil {
			return domain.ProductPage{}, fmt.Errorf("decode products: %w", err)
		}
		raw.Products = list
	}
	items := raw.Products
	if len(items) == 0 {
		items = raw.Items
	}

	page := domain.ProductPage{Items: make([]domain.Product, 0, len(items))}
	for _, item := range items {
		product, err := item.canonical()
		if err != nil {
			return domain.ProductPage{}, err
		}
		page.Items = append(page.Items, product)
	}
	if page.Total, err = raw.Total.int(); err != nil {
		return domain.ProductPage{}, fmt.Errorf("decode products: bad total: %w", err)
	}
	if page.Total == 0 {
		page.Total = len(page.Items)
	}
	if page.Page, err = raw.Page.int(); err != nil {
		return domain.ProductPage{}, fmt.Errorf("decode products: bad page: %w", err)
	}
	return page, nil
}

func (g *ProductGateway) Get(ctx context.Context, id string) (domain.Product, error) {
	resp, err := g.client.request(ctx).Get("/products/" + id)
	if err != nil {
		return domain.Product{}, err
	}
	if isNotFound(resp) {
		return domain.Product{}, ErrProductNotFound
	}
	if resp.IsError() {
		return domain.Product{}, apiError("get product", resp)
	}
	var detail wireProductDetail
	if err := json.Unmarshal(unwrapEnvelope(resp.Body()), &detail); err != nil {
		return domain.Product{}, fmt.Errorf("decode product: %w", err)
	}
	return detail.canonical()
}

func (g *ProductGateway) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	body := map[string]any{
		"name":        product.Name,
		"description": product.Description,
		"category":    product.Category,
		"price":       product.Price.String(),
		"image":       product.ImageURL,
		"stock":       product.Stock,
	}
	resp, err := g.client.request(ctx).SetBody(body).Post("/products/add")
	if err != nil {
		return domain.Product{}, err
	}
	if resp.IsError() {
		return domain.Product{}, apiError("create product", resp)
	}
	var detail wireProductDetail
	if err := json.Unmarshal(unwrapEnvelope(resp.Body()), &detail); err != nil {
		return domain.Product{}, fmt.Errorf("decode created product: %w", err)
	}
	if created, err := detail.canonical(); err == nil {
		return created, nil
	}
	// Some deployments return only an ack; echo the input back.
	return product, nil
}

func (g *ProductGateway) Update(ctx context.Context, id string, update domain.ProductUpdate) error {
	body := map[string]any{}
	if update.Name != nil {
		body["name"] = *update.Name
	}
	if update.Description != nil {
		body["description"] = *update.Description
	}
	if update.Category != nil {
		body["category"] = *update.Category
	}
	if update.Price != nil {
		body["price"] = update.Price.String()
	}
	if update.ImageURL != nil {
		body["image"] = *update.ImageURL
	}
	if update.Stock != nil {
		body["stock"] = *update.Stock
	}
	if len(body) == 0 {
		return nil
	}

	resp, err := g.client.request(ctx).SetBody(body).Put("/products/" + id)
	if err != nil {
		return err
	}
	if isNotFound(resp) {
		return ErrProductNotFound
	}
	if resp.IsError() {
		return apiError("update product", resp)
	}
	return nil
}

func (g *ProductGateway) Delete(ctx context.Context, id string) error {
	resp, err := g.client.request(ctx).Delete("/products/" + id)
	if err != nil {
		return err
	}
	if isNotFound(resp) {
		return ErrProductNotFound
	}
	if resp.IsError() {
		return apiError("delete product", resp)
	}
	return nil
}
