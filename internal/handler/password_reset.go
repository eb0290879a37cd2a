package handler

import (
	"errors"
	"net/http"

	"github.com/kingtan/api-users/internal/service"
)

// PasswordResetHandler handles the password reset endpoints.
type PasswordResetHandler struct {
	service *service.PasswordResetService
}

// NewPasswordResetHandler creates a new PasswordResetHandler.
func NewPasswordResetHandler(svc *service.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{service: svc}
}

// HandleRequestReset handles POST /api/v1/auth/password/reset?email=...
func (h *PasswordResetHandler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("email is required"))
		return
	}

	if err := h.service.RequestReset(r.Context(), email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse("user not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, messageResponse("Password reset email sent"))
}

// HandleConfirmReset handles POST /api/v1/auth/password/reset/confirm?token=...&newPassword=...
func (h *PasswordResetHandler) HandleConfirmReset(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	newPassword := r.URL.Query().Get("newPassword")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("token is required"))
		return
	}

	if err := h.service.ConfirmReset(r.Context(), token, newPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			writeJSON(w, http.StatusNotFound, errorResponse("invalid reset token"))
		case errors.Is(err, service.ErrExpiredResetToken):
			writeJSON(w, http.StatusBadRequest, errorResponse("reset token expired"))
		case errors.Is(err, service.ErrPasswordRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, messageResponse("Password reset successful"))
}
