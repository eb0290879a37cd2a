package handler

import (
	"errors"
	"net/http"

	"github.com/kingtan/api-users/internal/model"
	"github.com/kingtan/api-users/internal/service"
)

// AuthHandler handles login requests.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleLogin handles POST /api/v1/auth/login requests. An unknown username
// and a wrong password both map to 401 so the response does not leak which
// accounts exist.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrBadCredentials):
			writeJSON(w, http.StatusUnauthorized, errorResponse("invalid username or password"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, model.TokenResponse{Token: token})
}
