package facade

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Abhijith1905/csp-storefront/internal/cart"
	"github.com/Abhijith1905/csp-storefront/internal/catalog"
	"github.com/Abhijith1905/csp-storefront/internal/gateway"
)

type CartHandler struct {
	store   *cart.Store
	catalog *catalog.Service
	logger  *zap.Logger
}

func NewCartHandler(store *cart.Store, catalogService *catalog.Service, logger *zap.Logger) *CartHandler {
	return &CartHandler{store: store, catalog: catalogService, logger: logger}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.store.Snapshot())
}

// AddItem prices the line from the catalog so clients cannot set their
// own prices.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity < 1 {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	product, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, gateway.ErrProductNotFound) {
			respondError(w, h.logger, http.StatusNotFound, "not_found", "unknown product")
			return
		}
		respondError(w, h.logger, http.StatusBadGateway, "catalog_unavailable", "product lookup failed")
		return
	}

	h.store.AddItem(r.Context(), product.ID, req.Quantity, product.Price, product.Snapshot())
	respondJSON(w, h.logger, http.StatusCreated, h.store.Snapshot())
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.store.SetQuantity(r.Context(), productID, req.Quantity)
	respondJSON(w, h.logger, http.StatusOK, h.store.Snapshot())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveItem(r.Context(), chi.URLParam(r, "product_id"))
	respondJSON(w, h.logger, http.StatusOK, h.store.Snapshot())
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(r.Context())
	respondJSON(w, h.logger, http.StatusOK, h.store.Snapshot())
}
