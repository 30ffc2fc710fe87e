// Package facade is the local HTTP surface over the storefront state:
// session, cart, wishlist, catalog and checkout. It translates requests
// into store operations and domain errors into status codes; it holds no
// state of its own.
package facade

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("encode response failed", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, status int, code, message string) {
	respondJSON(w, logger, status, errorResponse{Error: message, Code: code})
}
