package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"radius-admin/internal/service"
	"radius-admin/internal/session"
	"radius-admin/internal/util"
)

// Response is the uniform JSON envelope for every API reply.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		util.Error("Failed to encode response", zap.Error(err))
	}
}

func respondSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	respondWithJSON(w, status, Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondError(w http.ResponseWriter, err error) {
	respondWithJSON(w, statusCode(err), Response{
		Success: false,
		Error:   publicMessage(err),
	})
}

// statusCode maps service errors onto HTTP statuses.
func statusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForgeryTokenMismatch):
		return http.StatusForbidden
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStoreUnavailable),
		errors.Is(err, service.ErrSearchUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps error text generic for auth-adjacent failures so
// responses don't distinguish unknown accounts from wrong passwords.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed):
		return "invalid credentials"
	case errors.Is(err, service.ErrRateLimited):
		return "too many attempts, try again later"
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, session.ErrUnauthenticated):
		return "authentication required"
	case errors.Is(err, service.ErrForgeryTokenMismatch):
		return "request rejected"
	case errors.Is(err, service.ErrStoreUnavailable):
		return "service temporarily unavailable"
	case errors.Is(err, service.ErrSearchUnavailable):
		return "search is not configured"
	default:
		return err.Error()
	}
}
