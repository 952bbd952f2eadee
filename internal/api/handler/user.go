package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daap14/formadmin/internal/api/middleware"
	"github.com/daap14/formadmin/internal/api/response"
	"github.com/daap14/formadmin/internal/api/validation"
	"github.com/daap14/formadmin/internal/auth"
	"github.com/daap14/formadmin/internal/store"
)

type updateUserRequest struct {
	Role   *string `json:"role"`
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

type usersResponse struct {
	Users []store.User `json:"users"`
}

// UserHandler handles user administration endpoints.
type UserHandler struct {
	store       store.Store
	authService *auth.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(s store.Store, authService *auth.Service) *UserHandler {
	return &UserHandler{
		store:       s,
		authService: authService,
	}
}

// ListAll handles GET /api/users/all.
func (h *UserHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch users", requestID)
		return
	}

	response.JSON(w, http.StatusOK, usersResponse{Users: users})
}

// ListPending handles GET /api/users/pending.
func (h *UserHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if !middleware.GetSession(r.Context()).HasToken {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated", requestID)
		return
	}

	users, err := h.store.ListUsersByStatus(r.Context(), store.StatusPending)
	if err != nil {
		slog.Error("failed to list pending users", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", requestID)
		return
	}

	response.JSON(w, http.StatusOK, usersResponse{Users: users})
}

// Update handles PUT /api/users/{id}/role. Callers may never edit their own
// record or the principal administrator.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	var req updateUserRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	vreq := validation.UpdateUserRequest{Role: req.Role, Name: req.Name, Status: req.Status}
	if !vreq.HasAnyField() {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "At least one field (role, name or status) is required", requestID)
		return
	}
	if fieldErrors := validation.ValidateUpdateUserRequest(vreq); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	claims := middleware.GetSession(r.Context()).Claims()
	if claims == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized", requestID)
		return
	}

	if id == claims.ID {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "You cannot edit your own account", requestID)
		return
	}

	target, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to get user", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user", requestID)
		return
	}

	if h.authService.IsPrincipalAdmin(target.ID) {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "The principal administrator cannot be edited", requestID)
		return
	}

	if err := h.store.UpdateUser(r.Context(), id, vreq.ToUpdate()); err != nil {
		slog.Error("failed to update user", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user", requestID)
		return
	}

	slog.Info("user updated", "id", id, "by", claims.ID, "requestId", requestID)
	response.Success(w, http.StatusOK, "User updated successfully")
}

// Approve handles POST /api/users/{id}/approve. Any signed-in caller may
// approve; an unknown id is acknowledged.
func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	if !middleware.GetSession(r.Context()).HasToken {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated", requestID)
		return
	}

	if err := h.store.UpdateUserStatus(r.Context(), id, store.StatusActive); err != nil {
		slog.Error("failed to approve user", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", requestID)
		return
	}

	response.Success(w, http.StatusOK, "User approved")
}
