package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error is the body of every error response. Message is a display string the
// client shows as-is.
type Error struct {
	Message   string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// Result acknowledges a mutation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Success writes {"success":true} with an optional message.
func Success(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Result{Success: true, Message: message})
}

// Err writes an error JSON response.
func Err(w http.ResponseWriter, status int, code string, message string, requestID string) {
	JSON(w, status, Error{
		Message:   message,
		Code:      code,
		RequestID: requestID,
	})
}

// ErrWithDetails writes an error JSON response with additional details.
func ErrWithDetails(w http.ResponseWriter, status int, code string, message string, details any, requestID string) {
	JSON(w, status, Error{
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Details:   details,
	})
}
