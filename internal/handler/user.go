package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kingtan/api-users/internal/middleware"
	"github.com/kingtan/api-users/internal/model"
	"github.com/kingtan/api-users/internal/service"
)

// AdminRole may manage any user record; everyone else may only touch their
// own.
const AdminRole = "ROLE_ADMIN"

// UserHandler handles user CRUD requests.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// HandleRegister handles POST /api/v1/users/register requests.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	dto, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameRequired),
			errors.Is(err, service.ErrEmailRequired),
			errors.Is(err, service.ErrEmailInvalid),
			errors.Is(err, service.ErrPasswordRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

// HandleGetUser handles GET /api/v1/users/{username} requests.
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	dto, err := h.service.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse("user not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

// HandleListUsers handles GET /api/v1/users requests.
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	dtos, err := h.service.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// HandleUpdateUser handles PUT /api/v1/users/{id} requests. Allowed for
// admins and for the user updating their own record.
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var dto model.UserDTO
	if !decodeBody(w, r, &dto) {
		return
	}

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	target, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse("user not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	if !principal.HasRole(AdminRole) && principal.Username != target.Username {
		writeJSON(w, http.StatusForbidden, errorResponse("may only update your own account"))
		return
	}

	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameRequired),
			errors.Is(err, service.ErrEmailRequired),
			errors.Is(err, service.ErrEmailInvalid):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrRoleNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse("user not found"))
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// HandleDeleteUser handles DELETE /api/v1/users/{id} requests.
func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse("user not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid user id"))
		return 0, false
	}
	return id, true
}
