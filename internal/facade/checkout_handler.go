package facade

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Abhijith1905/csp-storefront/internal/auth"
	"github.com/Abhijith1905/csp-storefront/internal/checkout"
	"github.com/Abhijith1905/csp-storefront/internal/domain"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
	session      *auth.Session
	logger       *zap.Logger
}

func NewCheckoutHandler(orchestrator *checkout.Orchestrator, session *auth.Session, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: orchestrator, session: session, logger: logger}
}

type checkoutRequest struct {
	CardNumber     string `json:"card_number"`
	Expiry         string `json:"expiry"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name"`
}

// Submit places the order. A remote outage is still a placed order: the
// response carries PENDING_LOCAL status and the retry poller finishes it.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	payment := domain.PaymentDetails{
		CardNumber:     req.CardNumber,
		Expiry:         req.Expiry,
		CVV:            req.CVV,
		CardholderName: req.CardholderName,
	}
	order, err := h.orchestrator.Submit(r.Context(), h.session.Principal(), payment)
	if err != nil {
		var invalid *checkout.InvalidPaymentError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, h.logger, http.StatusConflict, "empty_cart", "cart is empty")
		case errors.As(err, &invalid):
			respondJSON(w, h.logger, http.StatusBadRequest, map[string]any{
				"error":  "invalid payment details",
				"code":   "invalid_payment",
				"fields": invalid.Fields,
			})
		default:
			respondError(w, h.logger, http.StatusInternalServerError, "internal_error", "checkout failed")
		}
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, order)
}

func (h *CheckoutHandler) Orders(w http.ResponseWriter, r *http.Request) {
	principal := h.session.Principal()
	orders, err := h.orchestrator.Orders(r.Context(), principal.SubjectID)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, "internal_error", "order history unavailable")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, orders)
}
