package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/daap14/formadmin/internal/api/middleware"
	"github.com/daap14/formadmin/internal/api/response"
	"github.com/daap14/formadmin/internal/api/validation"
	"github.com/daap14/formadmin/internal/store"
)

type renameFormRequest struct {
	Name *string `json:"name"`
}

type formsResponse struct {
	Forms []store.Form `json:"forms"`
}

// FormHandler handles form listing and rename endpoints.
type FormHandler struct {
	store store.Store
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(s store.Store) *FormHandler {
	return &FormHandler{store: s}
}

// List handles GET /api/forms.
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	forms, err := h.store.ListForms(r.Context())
	if err != nil {
		slog.Error("failed to list forms", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch forms", requestID)
		return
	}

	response.JSON(w, http.StatusOK, formsResponse{Forms: forms})
}

// Rename handles PUT /api/forms/{id}.
func (h *FormHandler) Rename(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	var req renameFormRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if fieldErrors := validation.ValidateRenameFormRequest(validation.RenameFormRequest{Name: req.Name}); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Form name is required", fieldErrors, requestID)
		return
	}

	if err := h.store.RenameForm(r.Context(), id, strings.TrimSpace(*req.Name)); err != nil {
		slog.Error("failed to rename form", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update form", requestID)
		return
	}

	response.Success(w, http.StatusOK, "Form updated successfully")
}
