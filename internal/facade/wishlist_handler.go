package facade

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Abhijith1905/csp-storefront/internal/wishlist"
)

type WishlistHandler struct {
	store  *wishlist.Store
	logger *zap.Logger
}

func NewWishlistHandler(store *wishlist.Store, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{store: store, logger: logger}
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]any{"items": h.store.List()})
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	saved := h.store.Toggle(r.Context(), productID)
	respondJSON(w, h.logger, http.StatusOK, map[string]any{"product_id": productID, "saved": saved})
}
