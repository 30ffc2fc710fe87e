package facade

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Abhijith1905/csp-storefront/internal/catalog"
	"github.com/Abhijith1905/csp-storefront/internal/domain"
	"github.com/Abhijith1905/csp-storefront/internal/gateway"
)

type ProductHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

func NewProductHandler(catalogService *catalog.Service, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalogService, logger: logger}
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
	Stock       *int   `json:"stock"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := domain.ProductQuery{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		query.PageSize = size
	}

	result, err := h.catalog.List(r.Context(), query)
	if err != nil {
		respondError(w, h.logger, http.StatusBadGateway, "catalog_unavailable", "product listing failed")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		if errors.Is(err, gateway.ErrProductNotFound) {
			respondError(w, h.logger, http.StatusNotFound, "not_found", "unknown product")
			return
		}
		respondError(w, h.logger, http.StatusBadGateway, "catalog_unavailable", "product lookup failed")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Price == "" {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "name and price are required")
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_price", "price is not a number")
		return
	}

	product := domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       price,
		ImageURL:    req.ImageURL,
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	created, err := h.catalog.Create(r.Context(), product)
	if err != nil {
		h.respondCatalogError(w, err, "product create failed")
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, created)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	var update domain.ProductUpdate
	if req.Name != "" {
		update.Name = &req.Name
	}
	if req.Description != "" {
		update.Description = &req.Description
	}
	if req.Category != "" {
		update.Category = &req.Category
	}
	if req.ImageURL != "" {
		update.ImageURL = &req.ImageURL
	}
	if req.Stock != nil {
		update.Stock = req.Stock
	}
	if req.Price != "" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			respondError(w, h.logger, http.StatusBadRequest, "invalid_price", "price is not a number")
			return
		}
		update.Price = &price
	}

	if err := h.catalog.Update(r.Context(), chi.URLParam(r, "product_id"), update); err != nil {
		h.respondCatalogError(w, err, "product update failed")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "product_id")); err != nil {
		h.respondCatalogError(w, err, "product delete failed")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ProductHandler) respondCatalogError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, catalog.ErrForbidden):
		respondError(w, h.logger, http.StatusForbidden, "forbidden", "admin role required")
	case errors.Is(err, gateway.ErrProductNotFound):
		respondError(w, h.logger, http.StatusNotFound, "not_found", "unknown product")
	default:
		respondError(w, h.logger, http.StatusBadGateway, "catalog_unavailable", message)
	}
}
