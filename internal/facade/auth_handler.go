package facade

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Abhijith1905/csp-storefront/internal/auth"
)

type AuthHandler struct {
	session *auth.Session
	logger  *zap.Logger
}

func NewAuthHandler(session *auth.Session, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{session: session, logger: logger}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type confirmRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) Principal(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.session.Principal())
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	principal, err := h.session.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, h.logger, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
			return
		}
		respondError(w, h.logger, http.StatusBadGateway, "identity_unavailable", "sign-in failed")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, principal)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.session.SignOut(r.Context())
	respondJSON(w, h.logger, http.StatusOK, h.session.Principal())
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	err := h.session.SignUp(r.Context(), auth.SignUpRequest{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		respondError(w, h.logger, http.StatusBadGateway, "identity_unavailable", "sign-up failed")
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, map[string]string{"status": "confirmation_required"})
}

func (h *AuthHandler) ConfirmSignUp(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.session.ConfirmSignUp(r.Context(), req.Email, req.Code); err != nil {
		respondError(w, h.logger, http.StatusBadGateway, "identity_unavailable", "confirmation failed")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "confirmed"})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.session.RefreshIfNeeded(r.Context()); err != nil {
		if errors.Is(err, auth.ErrSessionExpired) {
			respondError(w, h.logger, http.StatusUnauthorized, "session_expired", "session expired, sign in again")
			return
		}
		respondError(w, h.logger, http.StatusBadGateway, "identity_unavailable", "refresh failed")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, h.session.Principal())
}
