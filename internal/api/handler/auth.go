package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/daap14/formadmin/internal/api/middleware"
	"github.com/daap14/formadmin/internal/api/response"
	"github.com/daap14/formadmin/internal/api/validation"
	"github.com/daap14/formadmin/internal/auth"
)

const registeredMessage = "Registration received. Wait for an administrator to approve your access."

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginResponse struct {
	User auth.Claims `json:"user"`
}

// AuthHandler handles login, registration, logout and identity endpoints.
type AuthHandler struct {
	authService *auth.Service
	emailDomain string
}

// NewAuthHandler creates a new AuthHandler. Registration is limited to emails
// ending in emailDomain.
func NewAuthHandler(authService *auth.Service, emailDomain string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		emailDomain: emailDomain,
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req loginRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required", fieldErrors, requestID)
		return
	}

	user, sess, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if msg, ok := loginFailureMessage(err); ok {
			slog.Info("login rejected", "reason", err.Error(), "requestId", requestID)
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", msg, requestID)
			return
		}
		slog.Error("login failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", requestID)
		return
	}

	if err := h.authService.Sessions().Write(w, sess); err != nil {
		slog.Error("failed to write session cookies", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", requestID)
		return
	}

	response.JSON(w, http.StatusOK, loginResponse{User: auth.Claims{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}})
}

func loginFailureMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return "User not found", true
	case errors.Is(err, auth.ErrPendingApproval):
		return "Your access has not been approved by an administrator yet.", true
	case errors.Is(err, auth.ErrUserBlocked):
		return "Your account has been blocked.", true
	case errors.Is(err, auth.ErrBadCredentials):
		return "Incorrect password", true
	}
	return "", false
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req registerRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateRegisterRequest(validation.RegisterRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email, password and name are required", fieldErrors, requestID)
		return
	}

	if !validation.ValidateEmailDomain(req.Email, h.emailDomain) {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"Use an email with the "+h.emailDomain+" domain",
			[]validation.FieldError{{Field: "email", Message: "email must end with " + h.emailDomain}},
			requestID)
		return
	}

	if _, err := h.authService.Register(r.Context(), req.Email, req.Name, req.Password); err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			response.Err(w, http.StatusBadRequest, "DUPLICATE_EMAIL", "Email already registered", requestID)
			return
		}
		slog.Error("failed to register user", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register user", requestID)
		return
	}

	response.Success(w, http.StatusCreated, registeredMessage)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.Sessions().Clear(w)
	response.Success(w, http.StatusOK, "")
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetSession(r.Context()).Claims()
	if claims == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated", middleware.GetRequestID(r.Context()))
		return
	}
	response.JSON(w, http.StatusOK, claims)
}
